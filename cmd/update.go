/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/spf13/cobra"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a task",
	Long: `Update the fields of a task. Only the flags you pass are changed.

Completed tasks are locked: only --summary and --file may change them.
--dep replaces the whole dependency list; use --clear-deps to remove all.

Examples:
  tasklane update 3f2a... --name "Write SQL migrations"
  tasklane update 3f2a... --dep 9c1e... --dep 77ab...
  tasklane update 3f2a... --summary "Shipped in v1.2"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

var (
	updateName        string
	updateDescription string
	updateNotes       string
	updateDeps        []string
	updateClearDeps   bool
	updateFiles       []string
	updateGuide       string
	updateVerify      string
	updateSummary     string
	updateAgent       string
)

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updateName, "name", "", "new name")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "new description")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "new notes")
	updateCmd.Flags().StringSliceVar(&updateDeps, "dep", nil, "replacement dependency ID (repeatable)")
	updateCmd.Flags().BoolVar(&updateClearDeps, "clear-deps", false, "remove all dependencies")
	updateCmd.Flags().StringSliceVar(&updateFiles, "file", nil, "replacement related file as path[:TYPE[:description]] (repeatable)")
	updateCmd.Flags().StringVar(&updateGuide, "guide", "", "new implementation guide")
	updateCmd.Flags().StringVar(&updateVerify, "verify", "", "new verification criteria")
	updateCmd.Flags().StringVar(&updateSummary, "summary", "", "new completion summary")
	updateCmd.Flags().StringVar(&updateAgent, "agent", "", "new assigned agent")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	patch, err := buildPatch(cmd)
	if err != nil {
		return err
	}

	repo, s, err := openRepository()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	id, err := resolveID(repo, args[0])
	if err != nil {
		return err
	}
	res, err := repo.Update(id, patch)
	if err != nil {
		return friendlyError(fmt.Errorf("update task: %w", err))
	}
	if err := reportResult(cmd, res); err != nil {
		return err
	}
	if !isJSON() && !isQuiet() {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", res.Message)
	}
	return nil
}

// buildPatch turns the flags that were set into a patch.
func buildPatch(cmd *cobra.Command) (task.Patch, error) {
	var patch task.Patch
	flags := cmd.Flags()
	str := func(name string, value string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v := value
		return &v
	}

	patch.Name = str("name", updateName)
	patch.Description = str("description", updateDescription)
	patch.Notes = str("notes", updateNotes)
	patch.ImplementationGuide = str("guide", updateGuide)
	patch.VerificationCriteria = str("verify", updateVerify)
	patch.Summary = str("summary", updateSummary)
	patch.Agent = str("agent", updateAgent)

	switch {
	case updateClearDeps && flags.Changed("dep"):
		return patch, fmt.Errorf("--dep and --clear-deps cannot be combined")
	case updateClearDeps:
		deps := []string{}
		patch.Dependencies = &deps
	case flags.Changed("dep"):
		deps := append([]string{}, updateDeps...)
		patch.Dependencies = &deps
	}

	if flags.Changed("file") {
		files, err := parseRelatedFiles(updateFiles)
		if err != nil {
			return patch, err
		}
		patch.RelatedFiles = &files
	}

	if patch == (task.Patch{}) {
		return patch, fmt.Errorf("nothing to update: pass at least one field flag")
	}
	return patch, nil
}
