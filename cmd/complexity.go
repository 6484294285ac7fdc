/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	mcppresenter "github.com/josephgoksu/tasklane/internal/mcp"
	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/internal/ui"
	"github.com/josephgoksu/tasklane/types"
	"github.com/spf13/cobra"
)

// complexityCmd represents the complexity command
var complexityCmd = &cobra.Command{
	Use:   "complexity [id]",
	Short: "Assess task complexity",
	Long: `Assess the complexity of one task, or report on every task when no ID is given.

The level is the highest reached by description length, dependency count and
notes length.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runComplexity,
}

func init() {
	rootCmd.AddCommand(complexityCmd)
}

func runComplexity(cmd *cobra.Command, args []string) error {
	repo, s, err := openRepository()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if len(args) == 1 {
		id, err := resolveID(repo, args[0])
		if err != nil {
			return err
		}
		a, err := repo.AssessByID(id)
		if err != nil {
			return friendlyError(err)
		}
		if a == nil {
			return fmt.Errorf("task %s not found", id)
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), assessmentToResponse(*a))
		}
		fmt.Fprintln(cmd.OutOrStdout(), mcppresenter.FormatAssessment(a))
		return nil
	}

	tasks, err := repo.GetAll()
	if err != nil {
		return friendlyError(err)
	}
	report := types.ComplexityReport{
		GeneratedAtISO: time.Now().UTC().Format(time.RFC3339),
		Tasks:          make([]types.TaskComplexity, 0, len(tasks)),
	}
	for _, t := range tasks {
		tc := assessmentToResponse(task.Assess(t))
		report.Tasks = append(report.Tasks, tc)
		report.Stats.Add(tc.Level)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), report)
	}
	if len(report.Tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks to assess.")
		return nil
	}
	table := &ui.Table{
		Headers:  []string{"ID", "LEVEL", "DESC", "DEPS", "NOTES", "NAME"},
		MaxWidth: ui.ColumnBudget(ui.TerminalWidth(), 6),
		Styles: map[int]func(string) lipgloss.Style{
			1: ui.LevelStyle,
		},
	}
	for _, tc := range report.Tasks {
		table.Rows = append(table.Rows, []string{
			ui.TruncateID(tc.TaskID),
			tc.Level,
			strconv.Itoa(tc.Metrics.DescriptionLength),
			strconv.Itoa(tc.Metrics.DependencyCount),
			strconv.Itoa(tc.Metrics.NotesLength),
			tc.TaskName,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.StyleTitle.Render("Complexity report"))
	fmt.Fprint(cmd.OutOrStdout(), table.Render())
	st := report.Stats
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d task(s): %d low, %d medium, %d high, %d very high\n",
		st.Total, st.Low, st.Medium, st.High, st.VeryHigh)
	if st.VeryHigh > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s Consider splitting very high tasks: tasklane complexity <id>\n", ui.Icon("!", ui.StyleError))
	}
	return nil
}
