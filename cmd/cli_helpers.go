package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/josephgoksu/tasklane/internal/config"
	"github.com/josephgoksu/tasklane/internal/git"
	"github.com/josephgoksu/tasklane/internal/logger"
	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/internal/util"
	"github.com/josephgoksu/tasklane/models"
	"github.com/josephgoksu/tasklane/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func isJSON() bool {
	return viper.GetBool("json")
}

func isQuiet() bool {
	return viper.GetBool("quiet")
}

func isVerbose() bool {
	return viper.GetBool("verbose")
}

func printJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func confirmOrAbort(cmd *cobra.Command, prompt string) bool {
	if isJSON() {
		return true
	}
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	if response != "y" && response != "yes" {
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return false
	}
	return true
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}

// revisionLog returns the git client for the data directory, or nil when
// versioning is disabled or git is unavailable.
func revisionLog(dataDir string) *git.Client {
	if !GetConfig().Versioning.Enabled {
		return nil
	}
	client := git.NewClient(dataDir)
	if !client.IsGitInstalled() {
		slog.Warn("git not found, revision log disabled")
		return nil
	}
	return client
}

// GetStore initializes and returns the task store using the global config.
func GetStore() (*store.FileTaskStore, error) {
	cfg := GetConfig()
	opts := store.Options{
		DataFile:   config.DataFilePath(cfg.Data.Dir, config.DataFileName(cfg.Data.File, cfg.Data.Format)),
		Format:     cfg.Data.Format,
		ArchiveDir: cfg.Data.ArchiveDir,
	}
	if client := revisionLog(cfg.Data.Dir); client != nil {
		opts.RevisionLog = client
	}

	s, err := store.NewFileTaskStore(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store at %s: %w", opts.DataFile, err)
	}
	logger.SetDataFile(opts.DataFile)
	return s, nil
}

// openRepository builds the repository over a fresh store. Callers must close the store.
func openRepository() (*task.Repository, *store.FileTaskStore, error) {
	s, err := GetStore()
	if err != nil {
		return nil, nil, err
	}
	repo := task.NewRepository(s, task.WithCycleCheck(GetConfig().Tasks.CycleCheck))
	return repo, s, nil
}

// newSearcher wires the in-process archive scanner into a searcher.
func newSearcher(repo *task.Repository, s *store.FileTaskStore) *task.Searcher {
	cfg := GetConfig()
	return task.NewSearcher(repo, s, store.NewArchiveScanner(s.Fs()),
		task.WithMaxArchiveFiles(cfg.Search.MaxArchiveFiles),
		task.WithDefaultPageSize(cfg.Search.PageSize),
	)
}

// resolveID expands a short ID prefix such as the one printed by list. An
// unmatched argument is returned as is so the repository reports it missing.
func resolveID(repo *task.Repository, arg string) (string, error) {
	id, err := util.ResolveTaskID(repo, arg)
	if errors.Is(err, util.ErrNotFound) {
		return strings.TrimSpace(arg), nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// parseRelatedFile reads "path:TYPE[:description]". The type defaults to OTHER.
func parseRelatedFile(s string) (models.RelatedFile, error) {
	parts := strings.SplitN(s, ":", 3)
	rf := models.RelatedFile{Path: strings.TrimSpace(parts[0]), Type: models.FileOther}
	if rf.Path == "" {
		return rf, fmt.Errorf("related file %q: path is empty", s)
	}
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		rf.Type = models.RelatedFileType(strings.ToUpper(strings.TrimSpace(parts[1])))
	}
	if len(parts) > 2 {
		rf.Description = strings.TrimSpace(parts[2])
	}
	if err := models.ValidateStruct(rf); err != nil {
		return rf, fmt.Errorf("related file %q: %w", s, err)
	}
	return rf, nil
}

func parseRelatedFiles(values []string) ([]models.RelatedFile, error) {
	var files []models.RelatedFile
	for _, v := range values {
		rf, err := parseRelatedFile(v)
		if err != nil {
			return nil, err
		}
		files = append(files, rf)
	}
	return files, nil
}

// reportResult prints a refused mutation and turns it into a command error.
func reportResult(cmd *cobra.Command, res task.Result) error {
	if isJSON() {
		if err := printJSON(cmd.OutOrStdout(), resultToResponse(res)); err != nil {
			return err
		}
	}
	if res.Success {
		return nil
	}
	if !isJSON() && len(res.Blockers) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "Blocked by:")
		for _, b := range res.Blockers {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s (%s)\n", b.Name, b.ID)
		}
	}
	return fmt.Errorf("%s", res.Message)
}
