/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"strings"

	mcppresenter "github.com/josephgoksu/tasklane/internal/mcp"
	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/spf13/cobra"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <keywords...>",
	Short: "Search live and archived tasks",
	Long: `Search tasks by keywords or by ID. Every keyword must appear in the task's
name, description, notes, summary or implementation guide (case-insensitive).
Recent archive snapshots are searched too unless --live-only is set.

Examples:
  tasklane search migration schema
  tasklane search --id 3f2a...
  tasklane search api --page 2 --page-size 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchByID     bool
	searchPage     int
	searchPageSize int
	searchLiveOnly bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVar(&searchByID, "id", false, "treat the query as a task ID")
	searchCmd.Flags().IntVar(&searchPage, "page", 1, "page number")
	searchCmd.Flags().IntVar(&searchPageSize, "page-size", 0, "results per page (default from config, at most 20)")
	searchCmd.Flags().BoolVar(&searchLiveOnly, "live-only", false, "skip archive snapshots")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))

	repo, s, err := openRepository()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	res, err := newSearcher(repo, s).Search(cmd.Context(), task.SearchQuery{
		Query:        query,
		IsID:         searchByID,
		Page:         searchPage,
		PageSize:     searchPageSize,
		SkipArchived: searchLiveOnly,
	})
	if err != nil {
		return friendlyError(fmt.Errorf("search: %w", err))
	}
	if isJSON() {
		return printJSON(cmd.OutOrStdout(), searchToResponse(res))
	}
	fmt.Fprintln(cmd.OutOrStdout(), mcppresenter.FormatSearch(query, res))
	return nil
}
