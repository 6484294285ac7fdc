/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	mcppresenter "github.com/josephgoksu/tasklane/internal/mcp"
	"github.com/josephgoksu/tasklane/store"
	"github.com/spf13/cobra"
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect and prune archive snapshots",
	Long: `Archive snapshots hold completed tasks removed by 'clear' or by a
clearAllTasks plan. They are read-only and searchable.`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archive snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		paths, err := s.ListArchives()
		if err != nil {
			return fmt.Errorf("list archives: %w", err)
		}
		entries := make([]archiveEntry, 0, len(paths))
		for _, p := range paths {
			e := archiveEntry{Path: p}
			if ts, ok := store.ArchiveTime(filepath.Base(p)); ok {
				e.ArchivedAt = formatTime(ts)
			}
			entries = append(entries, e)
		}

		if isJSON() {
			return printJSON(cmd.OutOrStdout(), entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No archive snapshots.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", e.ArchivedAt, e.Path)
		}
		return nil
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print the tasks in one archive snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := GetStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		path := args[0]
		if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
			path = filepath.Join(s.ArchiveDir(), path)
		}
		snap, err := s.ReadArchive(path)
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), tasksToResponse(snap.Tasks))
		}
		fmt.Fprintln(cmd.OutOrStdout(), mcppresenter.FormatTaskList(snap.Tasks))
		return nil
	},
}

var archivePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete old archive snapshots",
	Long: `Delete archive snapshots older than a given age and/or beyond the newest N.

Examples:
  tasklane archive purge --older-than 90d
  tasklane archive purge --keep-last 10 --dry-run`,
	Args: cobra.NoArgs,
	RunE: runArchivePurge,
}

var (
	purgeOlderThan string
	purgeKeepLast  int
	purgeDryRun    bool
)

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveListCmd, archiveShowCmd, archivePurgeCmd)

	archivePurgeCmd.Flags().StringVar(&purgeOlderThan, "older-than", "", "delete snapshots older than this age, e.g. 720h or 30d")
	archivePurgeCmd.Flags().IntVar(&purgeKeepLast, "keep-last", 0, "always keep the newest N snapshots")
	archivePurgeCmd.Flags().BoolVar(&purgeDryRun, "dry-run", false, "report what would be deleted without deleting")
}

func runArchivePurge(cmd *cobra.Command, args []string) error {
	opts := store.PurgeOptions{DryRun: purgeDryRun, KeepLast: purgeKeepLast}
	if purgeOlderThan != "" {
		age, err := parseAge(purgeOlderThan)
		if err != nil {
			return err
		}
		opts.OlderThan = &age
	}
	if opts.OlderThan == nil && opts.KeepLast <= 0 {
		return fmt.Errorf("pass --older-than and/or --keep-last")
	}

	s, err := GetStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	res, err := s.PurgeArchives(opts)
	if err != nil {
		return fmt.Errorf("purge archives: %w", err)
	}
	if isJSON() {
		return printJSON(cmd.OutOrStdout(), res)
	}

	verb := "Deleted"
	if res.DryRun {
		verb = "Would delete"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d of %d snapshot(s), %d bytes\n", verb, res.FilesDeleted, res.FilesConsidered, res.BytesFreed)
	if isVerbose() || res.DryRun {
		for _, p := range res.Deleted {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
		}
	}
	return nil
}

// parseAge extends time.ParseDuration with a day suffix ("30d").
func parseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid age %q", s)
	}
	return d, nil
}
