/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/spf13/cobra"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new task",
	Long: `Add a new pending task.

Dependencies are task IDs; IDs that do not name an existing task are ignored.
Related files use the form path[:TYPE[:description]] where TYPE is one of
TO_MODIFY, REFERENCE, CREATE, DEPENDENCY, OTHER.

Examples:
  tasklane add "Write migrations" -d "Create the initial schema"
  tasklane add "Seed data" -d "Load fixtures" --dep 3f2a...
  tasklane add "Add index" -d "Speed up lookups" --file db/schema.sql:TO_MODIFY`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDescription string
	addNotes       string
	addDeps        []string
	addFiles       []string
	addGuide       string
	addVerify      string
	addAgent       string
)

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "task description (required)")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
	addCmd.Flags().StringSliceVar(&addDeps, "dep", nil, "ID of a task this task depends on (repeatable)")
	addCmd.Flags().StringSliceVar(&addFiles, "file", nil, "related file as path[:TYPE[:description]] (repeatable)")
	addCmd.Flags().StringVar(&addGuide, "guide", "", "implementation guide")
	addCmd.Flags().StringVar(&addVerify, "verify", "", "verification criteria")
	addCmd.Flags().StringVar(&addAgent, "agent", "", "assigned agent")
	_ = addCmd.MarkFlagRequired("description")
}

func runAdd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return fmt.Errorf("task name cannot be empty")
	}
	files, err := parseRelatedFiles(addFiles)
	if err != nil {
		return err
	}

	repo, s, err := openRepository()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	created, err := repo.Create(task.CreateParams{
		Name:                 name,
		Description:          addDescription,
		Notes:                addNotes,
		Dependencies:         addDeps,
		RelatedFiles:         files,
		ImplementationGuide:  addGuide,
		VerificationCriteria: addVerify,
		Agent:                addAgent,
	})
	if err != nil {
		return friendlyError(fmt.Errorf("add task: %w", err))
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), taskToResponse(*created))
	}
	if dropped := len(uniqueTokens(addDeps)) - len(created.Dependencies); dropped > 0 && !isQuiet() {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Ignored %d unknown dependency id(s)\n", dropped)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added task %q (%s)\n", created.Name, created.ID)
	return nil
}

func uniqueTokens(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
