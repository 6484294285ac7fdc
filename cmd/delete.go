/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Delete a task. Completed tasks and tasks that other tasks depend on are
never deleted; the command lists the dependents instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, s, err := openRepository()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		id, err := resolveID(repo, args[0])
		if err != nil {
			return err
		}

		if !deleteForce {
			t, err := repo.GetByID(id)
			if err != nil {
				return friendlyError(err)
			}
			if t != nil && !confirmOrAbort(cmd, fmt.Sprintf("Delete task %q? (y/N): ", t.Name)) {
				return ErrAborted
			}
		}

		res, err := repo.Delete(id)
		if err != nil {
			return friendlyError(fmt.Errorf("delete task: %w", err))
		}
		if !res.Success {
			return reportResult(cmd, res)
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), deletedResponse{Status: "deleted", ID: res.Task.ID, Name: res.Task.Name})
		}
		if !isQuiet() {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %q\n", res.Task.Name)
		}
		return nil
	},
}

var deleteForce bool

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")
}
