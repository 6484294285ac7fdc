/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/josephgoksu/tasklane/models"
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Set the status of a task",
	Long: `Set the status of a task to pending, in_progress or completed.
The aliases todo, doing and done are accepted.

Examples:
  tasklane status 3f2a... in_progress
  tasklane status 3f2a... done`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := models.ParseStatus(args[1])
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

		res, err := repo.SetStatus(id, status)
		if err != nil {
			return friendlyError(fmt.Errorf("set status: %w", err))
		}
		if err := reportResult(cmd, res); err != nil {
			return err
		}
		if !isJSON() && !isQuiet() {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %q is now %s\n", res.Task.Name, res.Task.Status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
