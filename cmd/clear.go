/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	mcppresenter "github.com/josephgoksu/tasklane/internal/mcp"
	"github.com/spf13/cobra"
)

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every task",
	Long: `Remove every task from the collection. Completed tasks are first written to a
timestamped archive snapshot, which stays searchable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearForce && !confirmOrAbort(cmd, "Remove ALL tasks? Completed tasks are archived first. (y/N): ") {
			return ErrAborted
		}

		repo, s, err := openRepository()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		res, err := repo.ClearAll()
		if err != nil {
			return friendlyError(fmt.Errorf("clear tasks: %w", err))
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), clearToResponse(res))
		}
		fmt.Fprintln(cmd.OutOrStdout(), mcppresenter.FormatClear(res))
		return nil
	},
}

var clearForce bool

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "skip confirmation")
}
