/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// completeCmd represents the complete command
var completeCmd = &cobra.Command{
	Use:     "complete <id>",
	Aliases: []string{"done"},
	Short:   "Mark a task as completed",
	Args:    cobra.ExactArgs(1),
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

		res, err := repo.Complete(id, completeSummary)
		if err != nil {
			return friendlyError(fmt.Errorf("complete task: %w", err))
		}
		if err := reportResult(cmd, res); err != nil {
			return err
		}
		if !isJSON() && !isQuiet() {
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Completed %q\n", res.Task.Name)
		}
		return nil
	},
}

var completeSummary string

func init() {
	rootCmd.AddCommand(completeCmd)
	completeCmd.Flags().StringVarP(&completeSummary, "summary", "m", "", "what was done")
}
