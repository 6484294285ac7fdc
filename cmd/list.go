/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/internal/ui"
	"github.com/josephgoksu/tasklane/models"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks in collection order.

Examples:
  tasklane list
  tasklane list --status in_progress
  tasklane list --topo      # dependencies before dependents`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listStatus string
	listTopo   bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status: pending, in_progress, completed")
	listCmd.Flags().BoolVar(&listTopo, "topo", false, "order tasks so dependencies come first")
}

func runList(cmd *cobra.Command, args []string) error {
	var status models.TaskStatus
	if listStatus != "" {
		parsed, err := models.ParseStatus(listStatus)
		if err != nil {
			return err
		}
		status = parsed
	}

	repo, s, err := openRepository()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	var tasks []models.Task
	if status != "" {
		tasks, err = repo.ListByStatus(status)
	} else {
		tasks, err = repo.GetAll()
	}
	if err != nil {
		return friendlyError(err)
	}

	if listTopo {
		sorted, err := task.TopologicalSort(tasks)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  Showing collection order: %v\n", err)
		} else {
			tasks = sorted
		}
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), tasksToResponse(tasks))
	}
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks found. Add one with: tasklane add <name> -d <description>")
		return nil
	}
	renderTaskTable(cmd.OutOrStdout(), tasks)
	return nil
}

func renderTaskTable(w io.Writer, tasks []models.Task) {
	table := &ui.Table{
		Headers:  []string{"ID", "STATUS", "NAME", "DEPS"},
		MaxWidth: ui.ColumnBudget(ui.TerminalWidth(), 4),
		Styles: map[int]func(string) lipgloss.Style{
			1: ui.StatusStyle,
		},
	}
	for _, t := range tasks {
		table.Rows = append(table.Rows, []string{ui.TruncateID(t.ID), string(t.Status), t.Name, strconv.Itoa(len(t.Dependencies))})
	}
	fmt.Fprint(w, table.Render())
}
