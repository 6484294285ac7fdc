/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/josephgoksu/tasklane/internal/git"
	"github.com/josephgoksu/tasklane/internal/ui"
	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the revision log of the task file",
	Long: `Show recent entries of the git revision log kept in the data directory.
Every successful write records one entry labelled with the change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := git.NewClient(GetConfig().Data.Dir)
		if !client.IsGitInstalled() {
			return git.ErrGitNotInstalled
		}
		if !client.IsRepository() {
			if !isJSON() {
				fmt.Fprintln(cmd.OutOrStdout(), "No revision log yet.")
				return nil
			}
			return printJSON(cmd.OutOrStdout(), []revisionResponse{})
		}

		revs, err := client.Log(historyLimit)
		if err != nil {
			return err
		}
		out := make([]revisionResponse, len(revs))
		for i, r := range revs {
			out[i] = revisionResponse{Hash: r.Hash, Timestamp: formatTime(r.Timestamp), Message: r.Message}
		}
		if isJSON() {
			return printJSON(cmd.OutOrStdout(), out)
		}
		if len(out) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No revisions recorded.")
			return nil
		}
		for _, r := range out {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", ui.TruncateID(r.Hash), r.Timestamp, r.Message)
		}
		dirty, err := client.IsDirty()
		if err != nil {
			LogError("check data directory state", err)
		} else if dirty {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠️  The data directory has changes not yet in the log (edited by hand?)")
		}
		return nil
	},
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
}
