/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	mcppresenter "github.com/josephgoksu/tasklane/internal/mcp"
	"github.com/spf13/cobra"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task in full",
	Args:  cobra.ExactArgs(1),
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

		t, err := repo.GetByID(id)
		if err != nil {
			return friendlyError(err)
		}
		if t == nil {
			return fmt.Errorf("task %s not found", id)
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), taskToResponse(*t))
		}
		fmt.Fprintln(cmd.OutOrStdout(), mcppresenter.FormatTask(t))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
