/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	mcppresenter "github.com/josephgoksu/tasklane/internal/mcp"
	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Merge a batch of task specs into the collection",
	Long: `Merge a batch of task specs read from a JSON, YAML or TOML file.

Dependencies in a spec may name another task, in the batch or in the collection,
by name or by ID. Unresolvable dependencies are dropped and reported.

Modes:
  append         keep every existing task and add the specs
  overwrite      keep completed tasks only, then add the specs
  selective      update unfinished tasks with the same name, add the rest
  clearAllTasks  archive completed tasks and replace the collection

The file holds either a list of specs or an object:
  updateMode: selective
  globalAnalysisResult: "..."
  tasks:
    - name: Write migrations
      description: Create the initial schema

Examples:
  tasklane plan --file plan.yaml
  tasklane plan --file plan.toml --mode overwrite
  cat plan.json | tasklane plan --file - --format json`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

var (
	planFile     string
	planFormat   string
	planMode     string
	planAnalysis string
)

// planDocument is the on-disk shape of a batch.
type planDocument struct {
	UpdateMode           string      `json:"updateMode" yaml:"updateMode" toml:"updateMode"`
	GlobalAnalysisResult string      `json:"globalAnalysisResult" yaml:"globalAnalysisResult" toml:"globalAnalysisResult"`
	Tasks                []task.Spec `json:"tasks" yaml:"tasks" toml:"tasks"`
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planFile, "file", "f", "", "spec file, or - for stdin (required)")
	planCmd.Flags().StringVar(&planFormat, "format", "", "json, yaml or toml (default from the file extension)")
	planCmd.Flags().StringVar(&planMode, "mode", "", "merge mode, overrides the file's updateMode (default append)")
	planCmd.Flags().StringVar(&planAnalysis, "analysis", "", "analysis text attached to every task in the batch")
	_ = planCmd.MarkFlagRequired("file")
}

func runPlan(cmd *cobra.Command, args []string) error {
	data, err := readPlanInput(cmd.InOrStdin(), planFile)
	if err != nil {
		return err
	}
	format := planFormat
	if format == "" {
		format = formatFromPath(planFile)
	}
	doc, err := decodePlan(data, format)
	if err != nil {
		return fmt.Errorf("parse %s: %w", planFile, err)
	}
	if len(doc.Tasks) == 0 {
		return fmt.Errorf("%s contains no tasks", planFile)
	}

	modeName := doc.UpdateMode
	if cmd.Flags().Changed("mode") {
		modeName = planMode
	}
	mode, err := task.ParseMode(modeName)
	if err != nil {
		return err
	}
	analysis := doc.GlobalAnalysisResult
	if cmd.Flags().Changed("analysis") {
		analysis = planAnalysis
	}

	if mode == task.ModeClearAll && !confirmOrAbort(cmd, "This replaces every task in the collection. Continue? (y/N): ") {
		return ErrAborted
	}

	repo, s, err := openRepository()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	res, err := repo.BatchMerge(doc.Tasks, mode, analysis)
	if err != nil {
		return friendlyError(fmt.Errorf("merge tasks: %w", err))
	}
	if isJSON() {
		return printJSON(cmd.OutOrStdout(), batchToResponse(res))
	}
	fmt.Fprintln(cmd.OutOrStdout(), mcppresenter.FormatBatch(mode, res))
	return nil
}

func readPlanInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return data, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

// decodePlan accepts either a bare list of specs or a planDocument.
// TOML has no top-level arrays, so it only accepts the document form.
func decodePlan(data []byte, format string) (planDocument, error) {
	var doc planDocument
	switch strings.ToLower(format) {
	case "json":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			err := json.Unmarshal(trimmed, &doc.Tasks)
			return doc, err
		}
		err := json.Unmarshal(trimmed, &doc)
		return doc, err
	case "yaml", "yml":
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return doc, err
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			err := node.Decode(&doc.Tasks)
			return doc, err
		}
		err := node.Decode(&doc)
		return doc, err
	case "toml":
		_, err := toml.Decode(string(data), &doc)
		return doc, err
	default:
		return doc, fmt.Errorf("unsupported format %q: must be json, yaml or toml", format)
	}
}
