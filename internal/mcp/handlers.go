package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/models"
)

// === Task Tool Handler ===

// HandleTaskTool is the unified handler for the agent work loop.
// It routes to the appropriate repository operation based on the action parameter.
func HandleTaskTool(ctx context.Context, repo *task.Repository, params TaskToolParams) (*TaskToolResult, error) {
	if !params.Action.IsValid() {
		valid := make([]string, 0, len(ValidTaskActions()))
		for _, a := range ValidTaskActions() {
			valid = append(valid, string(a))
		}
		return &TaskToolResult{
			Action: string(params.Action),
			Error:  fmt.Sprintf("invalid action %q, must be one of: %s", params.Action, strings.Join(valid, ", ")),
		}, nil
	}

	switch params.Action {
	case TaskActionNext:
		return handleTaskNext(ctx, repo, params)
	case TaskActionStart:
		return handleTaskStart(ctx, repo, params)
	case TaskActionComplete:
		return handleTaskComplete(ctx, repo, params)
	case TaskActionCheck:
		return handleTaskCheck(ctx, repo, params)
	default:
		return &TaskToolResult{
			Action: string(params.Action),
			Error:  fmt.Sprintf("unsupported action: %s", params.Action),
		}, nil
	}
}

// NextExecutable returns the first pending task whose dependencies are all completed,
// in dependency order. When the graph has a cycle the collection order is used.
func NextExecutable(tasks []models.Task) (*models.Task, int) {
	ordered, err := task.TopologicalSort(tasks)
	if err != nil {
		ordered = tasks
	}

	blocked := 0
	for i := range ordered {
		t := ordered[i]
		if t.Status != models.StatusPending {
			continue
		}
		if task.CheckExecutable(tasks, t.ID).CanExecute {
			return &t, blocked
		}
		blocked++
	}
	return nil, blocked
}

// handleTaskNext implements the 'next' action - find the next executable task.
func handleTaskNext(_ context.Context, repo *task.Repository, params TaskToolParams) (*TaskToolResult, error) {
	tasks, err := repo.GetAll()
	if err != nil {
		return nil, err
	}

	next, blocked := NextExecutable(tasks)
	if next == nil {
		msg := "No pending tasks."
		if blocked > 0 {
			msg = fmt.Sprintf("No executable tasks. %d pending task(s) are waiting on dependencies.", blocked)
		}
		return &TaskToolResult{Action: "next", Content: msg}, nil
	}

	if !params.AutoStart {
		return &TaskToolResult{
			Action:  "next",
			TaskID:  next.ID,
			Content: FormatTask(next) + "\n\n> **Hint**: call the task tool with action `start` to begin.",
		}, nil
	}

	res, err := repo.SetStatus(next.ID, models.StatusInProgress)
	if err != nil {
		return nil, err
	}
	return &TaskToolResult{Action: "next", TaskID: next.ID, Content: FormatResult(res)}, nil
}

// handleTaskStart implements the 'start' action - move a ready task to in_progress.
func handleTaskStart(_ context.Context, repo *task.Repository, params TaskToolParams) (*TaskToolResult, error) {
	taskID := strings.TrimSpace(params.TaskID)
	if taskID == "" {
		return &TaskToolResult{
			Action:  "start",
			Error:   "task_id is required for start action",
			Content: FormatValidationError("task_id", "required for start action"),
		}, nil
	}

	tasks, err := repo.GetAll()
	if err != nil {
		return nil, err
	}
	check := task.CheckExecutable(tasks, taskID)
	if len(check.BlockedBy) > 0 {
		return &TaskToolResult{
			Action:  "start",
			TaskID:  taskID,
			Error:   "task is blocked by unfinished dependencies",
			Content: FormatCheck(taskID, check, taskNames(tasks)),
		}, nil
	}

	res, err := repo.SetStatus(taskID, models.StatusInProgress)
	if err != nil {
		return nil, err
	}
	out := &TaskToolResult{Action: "start", TaskID: taskID, Content: FormatResult(res)}
	if !res.Success {
		out.Error = res.Message
	}
	return out, nil
}

// handleTaskComplete implements the 'complete' action - mark a task as done.
func handleTaskComplete(_ context.Context, repo *task.Repository, params TaskToolParams) (*TaskToolResult, error) {
	taskID := strings.TrimSpace(params.TaskID)
	if taskID == "" {
		return &TaskToolResult{
			Action:  "complete",
			Error:   "task_id is required for complete action",
			Content: FormatValidationError("task_id", "required for complete action"),
		}, nil
	}

	res, err := repo.Complete(taskID, params.Summary)
	if err != nil {
		return nil, err
	}
	out := &TaskToolResult{Action: "complete", TaskID: taskID, Content: FormatResult(res)}
	if !res.Success {
		out.Error = res.Message
	}
	return out, nil
}

// handleTaskCheck implements the 'check' action - report what blocks a task.
func handleTaskCheck(_ context.Context, repo *task.Repository, params TaskToolParams) (*TaskToolResult, error) {
	taskID := strings.TrimSpace(params.TaskID)
	if taskID == "" {
		return &TaskToolResult{
			Action:  "check",
			Error:   "task_id is required for check action",
			Content: FormatValidationError("task_id", "required for check action"),
		}, nil
	}

	tasks, err := repo.GetAll()
	if err != nil {
		return nil, err
	}
	check := task.CheckExecutable(tasks, taskID)
	return &TaskToolResult{
		Action:  "check",
		TaskID:  taskID,
		Content: FormatCheck(taskID, check, taskNames(tasks)),
	}, nil
}

func taskNames(tasks []models.Task) map[string]string {
	names := make(map[string]string, len(tasks))
	for _, t := range tasks {
		names[t.ID] = t.Name
	}
	return names
}
