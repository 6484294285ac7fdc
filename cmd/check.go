/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	mcppresenter "github.com/josephgoksu/tasklane/internal/mcp"
	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/types"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <id>",
	Short: "Report whether a task can start",
	Long: `Report whether a task can start. A pending or in-progress task can start once
every dependency is completed; unknown dependency IDs count as blockers.`,
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

		tasks, err := repo.GetAll()
		if err != nil {
			return friendlyError(err)
		}
		check := task.CheckExecutable(tasks, id)
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), types.CheckTaskResponse{
				TaskID:     id,
				CanExecute: check.CanExecute,
				BlockedBy:  check.BlockedBy,
			})
		}
		names := make(map[string]string, len(tasks))
		for _, t := range tasks {
			names[t.ID] = t.Name
		}
		fmt.Fprintln(cmd.OutOrStdout(), mcppresenter.FormatCheck(id, check, names))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
