/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"strings"

	mcppresenter "github.com/josephgoksu/tasklane/internal/mcp"
	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/models"
	"github.com/josephgoksu/tasklane/types"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerMCPTools(server *mcp.Server, repo *task.Repository, searcher *task.Searcher) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks in collection order, optionally filtered by status (pending, in_progress, completed).",
	}, listTasksHandler(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_task",
		Description: "Get every field of one task by ID.",
	}, getTaskHandler(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_task",
		Description: "Create a pending task. Dependency IDs that do not name an existing task are ignored.",
	}, createTaskHandler(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_task",
		Description: "Update fields of a task. Only provided fields change. Completed tasks accept only summary and relatedFiles.",
	}, updateTaskHandler(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_task_status",
		Description: "Set a task's status to pending, in_progress or completed.",
	}, setTaskStatusHandler(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task completed and record a summary of what was done.",
	}, completeTaskHandler(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task. Refused for completed tasks and for tasks other tasks depend on; the dependents are listed.",
	}, deleteTaskHandler(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_all_tasks",
		Description: "Remove every task after archiving the completed ones. Requires confirm=true.",
	}, clearAllTasksHandler(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "split_tasks",
		Description: "Merge a batch of task specs. Modes: append, overwrite (keep completed), selective (update by name), clearAllTasks. Dependencies may be task names or IDs; unresolvable ones are dropped and reported.",
	}, splitTasksHandler(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_tasks",
		Description: "Search live and archived tasks by keywords (all must match) or by ID, with pagination.",
	}, searchTasksHandler(searcher))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_complexity",
		Description: "Assess a task's complexity from description length, dependency count and notes length, with recommendations.",
	}, analyzeComplexityHandler(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_task",
		Description: "Report whether a task can start and which dependencies block it.",
	}, checkTaskHandler(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "task",
		Description: "Work loop: action=next finds the next ready task (auto_start to begin it), start begins a ready task, complete finishes it with a summary, check reports blockers.",
	}, taskWorkflowHandler(repo))
}

func textContent(text string) []mcp.Content {
	return []mcp.Content{&mcp.TextContent{Text: text}}
}

// mutationResult turns an engine result into a tool result, or an error when refused.
func mutationResult(res task.Result, taskID string) (*mcp.CallToolResultFor[types.TaskResultResponse], error) {
	if !res.Success {
		return nil, resultError(res, taskID)
	}
	return &mcp.CallToolResultFor[types.TaskResultResponse]{
		Content:           textContent(mcppresenter.FormatResult(res)),
		StructuredContent: resultToResponse(res),
	}, nil
}

// listTasksHandler lists tasks with optional status filtering
func listTasksHandler(repo *task.Repository) mcp.ToolHandlerFor[types.ListTasksParams, types.TaskListResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.ListTasksParams]) (*mcp.CallToolResultFor[types.TaskListResponse], error) {
		args := params.Arguments
		logToolCall("list_tasks", args)

		var (
			tasks []models.Task
			err   error
		)
		if strings.TrimSpace(args.Status) == "" {
			tasks, err = repo.GetAll()
		} else {
			status, perr := models.ParseStatus(args.Status)
			if perr != nil {
				return nil, NewMCPError(types.ErrCodeInvalidInput, perr.Error(), map[string]interface{}{
					"field":        "status",
					"value":        args.Status,
					"valid_values": []string{"pending", "in_progress", "completed"},
				})
			}
			tasks, err = repo.ListByStatus(status)
		}
		if err != nil {
			return nil, WrapStoreError(err, "list", "")
		}

		return &mcp.CallToolResultFor[types.TaskListResponse]{
			Content:           textContent(mcppresenter.FormatTaskList(tasks)),
			StructuredContent: tasksToResponse(tasks),
		}, nil
	}
}

// getTaskHandler returns one task
func getTaskHandler(repo *task.Repository) mcp.ToolHandlerFor[types.GetTaskParams, types.TaskResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.GetTaskParams]) (*mcp.CallToolResultFor[types.TaskResponse], error) {
		args := params.Arguments
		logToolCall("get_task", args)
		if err := requireID(args.ID); err != nil {
			return nil, err
		}

		t, err := repo.GetByID(args.ID)
		if err != nil {
			return nil, WrapStoreError(err, "get", args.ID)
		}
		if t == nil {
			return nil, NewMCPError(types.ErrCodeNotFound, fmt.Sprintf("Task %s not found", args.ID), map[string]interface{}{
				"task_id": args.ID,
			})
		}
		return &mcp.CallToolResultFor[types.TaskResponse]{
			Content:           textContent(mcppresenter.FormatTask(t)),
			StructuredContent: taskToResponse(*t),
		}, nil
	}
}

// createTaskHandler creates a new task
func createTaskHandler(repo *task.Repository) mcp.ToolHandlerFor[types.CreateTaskParams, types.TaskResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.CreateTaskParams]) (*mcp.CallToolResultFor[types.TaskResponse], error) {
		args := params.Arguments
		logToolCall("create_task", args)

		if strings.TrimSpace(args.Name) == "" || strings.TrimSpace(args.Description) == "" {
			return nil, NewMCPError(types.ErrCodeInvalidInput, "Task name and description are required", map[string]interface{}{
				"fields": []string{"name", "description"},
			})
		}

		created, err := repo.Create(task.CreateParams{
			Name:                 args.Name,
			Description:          args.Description,
			Notes:                args.Notes,
			Dependencies:         args.Dependencies,
			RelatedFiles:         relatedFilesFromParams(args.RelatedFiles),
			ImplementationGuide:  args.ImplementationGuide,
			VerificationCriteria: args.VerificationCriteria,
			Agent:                args.Agent,
		})
		if err != nil {
			return nil, WrapStoreError(err, "create", "")
		}

		logInfo("created task", "id", created.ID)
		return &mcp.CallToolResultFor[types.TaskResponse]{
			Content:           textContent(fmt.Sprintf("Created task %q with ID: %s\n\n%s", created.Name, created.ID, mcppresenter.FormatTask(created))),
			StructuredContent: taskToResponse(*created),
		}, nil
	}
}

// updateTaskHandler applies a partial update
func updateTaskHandler(repo *task.Repository) mcp.ToolHandlerFor[types.UpdateTaskParams, types.TaskResultResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.UpdateTaskParams]) (*mcp.CallToolResultFor[types.TaskResultResponse], error) {
		args := params.Arguments
		logToolCall("update_task", args)
		if err := requireID(args.ID); err != nil {
			return nil, err
		}

		patch := task.Patch{
			Name:                 args.Name,
			Description:          args.Description,
			Notes:                args.Notes,
			Dependencies:         args.Dependencies,
			ImplementationGuide:  args.ImplementationGuide,
			VerificationCriteria: args.VerificationCriteria,
			Summary:              args.Summary,
			Agent:                args.Agent,
		}
		if args.RelatedFiles != nil {
			files := relatedFilesFromParams(*args.RelatedFiles)
			if files == nil {
				files = []models.RelatedFile{}
			}
			patch.RelatedFiles = &files
		}
		if patch == (task.Patch{}) {
			return nil, NewMCPError(types.ErrCodeInvalidInput, "No fields to update", map[string]interface{}{
				"task_id": args.ID,
			})
		}

		res, err := repo.Update(args.ID, patch)
		if err != nil {
			return nil, WrapStoreError(err, "update", args.ID)
		}
		return mutationResult(res, args.ID)
	}
}

// setTaskStatusHandler moves a task between statuses
func setTaskStatusHandler(repo *task.Repository) mcp.ToolHandlerFor[types.SetTaskStatusParams, types.TaskResultResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.SetTaskStatusParams]) (*mcp.CallToolResultFor[types.TaskResultResponse], error) {
		args := params.Arguments
		logToolCall("set_task_status", args)
		if err := requireID(args.ID); err != nil {
			return nil, err
		}
		status, err := models.ParseStatus(args.Status)
		if err != nil {
			return nil, NewMCPError(types.ErrCodeInvalidInput, err.Error(), map[string]interface{}{
				"field":        "status",
				"value":        args.Status,
				"valid_values": []string{"pending", "in_progress", "completed"},
			})
		}

		res, err := repo.SetStatus(args.ID, status)
		if err != nil {
			return nil, WrapStoreError(err, "set status", args.ID)
		}
		return mutationResult(res, args.ID)
	}
}

// completeTaskHandler marks a task completed
func completeTaskHandler(repo *task.Repository) mcp.ToolHandlerFor[types.CompleteTaskParams, types.TaskResultResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.CompleteTaskParams]) (*mcp.CallToolResultFor[types.TaskResultResponse], error) {
		args := params.Arguments
		logToolCall("complete_task", args)
		if err := requireID(args.ID); err != nil {
			return nil, err
		}

		res, err := repo.Complete(args.ID, args.Summary)
		if err != nil {
			return nil, WrapStoreError(err, "complete", args.ID)
		}
		return mutationResult(res, args.ID)
	}
}

// deleteTaskHandler removes a task when nothing depends on it
func deleteTaskHandler(repo *task.Repository) mcp.ToolHandlerFor[types.DeleteTaskParams, types.TaskResultResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.DeleteTaskParams]) (*mcp.CallToolResultFor[types.TaskResultResponse], error) {
		args := params.Arguments
		logToolCall("delete_task", args)
		if err := requireID(args.ID); err != nil {
			return nil, err
		}

		res, err := repo.Delete(args.ID)
		if err != nil {
			return nil, WrapStoreError(err, "delete", args.ID)
		}
		return mutationResult(res, args.ID)
	}
}

// clearAllTasksHandler empties the collection
func clearAllTasksHandler(repo *task.Repository) mcp.ToolHandlerFor[types.ClearAllTasksParams, types.ClearTasksResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.ClearAllTasksParams]) (*mcp.CallToolResultFor[types.ClearTasksResponse], error) {
		args := params.Arguments
		logToolCall("clear_all_tasks", args)
		if !args.Confirm {
			return nil, NewMCPError(types.ErrCodeNotConfirmed, "Set confirm=true to clear every task", nil)
		}

		res, err := repo.ClearAll()
		if err != nil {
			return nil, WrapStoreError(err, "clear", "")
		}
		logInfo("cleared tasks", "removed", res.Removed, "archived", res.Archived)
		return &mcp.CallToolResultFor[types.ClearTasksResponse]{
			Content:           textContent(mcppresenter.FormatClear(res)),
			StructuredContent: clearToResponse(res),
		}, nil
	}
}

// splitTasksHandler merges a batch of specs
func splitTasksHandler(repo *task.Repository) mcp.ToolHandlerFor[types.SplitTasksParams, types.SplitTasksResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.SplitTasksParams]) (*mcp.CallToolResultFor[types.SplitTasksResponse], error) {
		args := params.Arguments
		logToolCall("split_tasks", args)

		mode, err := task.ParseMode(args.UpdateMode)
		if err != nil {
			return nil, NewMCPError(types.ErrCodeInvalidInput, err.Error(), map[string]interface{}{
				"field": "updateMode",
				"value": args.UpdateMode,
			})
		}
		if len(args.Tasks) == 0 {
			return nil, NewMCPError(types.ErrCodeInvalidInput, "At least one task is required", map[string]interface{}{
				"field": "tasks",
			})
		}

		specs := make([]task.Spec, len(args.Tasks))
		for i, p := range args.Tasks {
			specs[i] = specFromParam(p)
		}
		res, err := repo.BatchMerge(specs, mode, args.GlobalAnalysisResult)
		if err != nil {
			return nil, WrapStoreError(err, "split", "")
		}
		logInfo("merged task batch", "mode", mode, "tasks", len(res.Tasks), "dropped", len(res.Warnings))
		return &mcp.CallToolResultFor[types.SplitTasksResponse]{
			Content:           textContent(mcppresenter.FormatBatch(mode, res)),
			StructuredContent: batchToResponse(res),
		}, nil
	}
}

// searchTasksHandler searches live and archived tasks
func searchTasksHandler(searcher *task.Searcher) mcp.ToolHandlerFor[types.SearchTasksParams, types.SearchTasksResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.SearchTasksParams]) (*mcp.CallToolResultFor[types.SearchTasksResponse], error) {
		args := params.Arguments
		logToolCall("search_tasks", args)
		if strings.TrimSpace(args.Query) == "" {
			return nil, NewMCPError(types.ErrCodeInvalidInput, "Query is required", map[string]interface{}{
				"field": "query",
			})
		}

		res, err := searcher.Search(ctx, task.SearchQuery{
			Query:        args.Query,
			IsID:         args.IsID,
			Page:         args.Page,
			PageSize:     args.PageSize,
			SkipArchived: args.SkipArchived,
		})
		if err != nil {
			return nil, WrapStoreError(err, "search", "")
		}
		return &mcp.CallToolResultFor[types.SearchTasksResponse]{
			Content:           textContent(mcppresenter.FormatSearch(args.Query, res)),
			StructuredContent: searchToResponse(res),
		}, nil
	}
}

// analyzeComplexityHandler scores one task
func analyzeComplexityHandler(repo *task.Repository) mcp.ToolHandlerFor[types.AnalyzeComplexityParams, types.TaskComplexity] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.AnalyzeComplexityParams]) (*mcp.CallToolResultFor[types.TaskComplexity], error) {
		args := params.Arguments
		logToolCall("analyze_complexity", args)
		if err := requireID(args.ID); err != nil {
			return nil, err
		}

		a, err := repo.AssessByID(args.ID)
		if err != nil {
			return nil, WrapStoreError(err, "analyze", args.ID)
		}
		if a == nil {
			return nil, NewMCPError(types.ErrCodeNotFound, fmt.Sprintf("Task %s not found", args.ID), map[string]interface{}{
				"task_id": args.ID,
			})
		}
		return &mcp.CallToolResultFor[types.TaskComplexity]{
			Content:           textContent(mcppresenter.FormatAssessment(a)),
			StructuredContent: assessmentToResponse(*a),
		}, nil
	}
}

// checkTaskHandler reports what blocks a task
func checkTaskHandler(repo *task.Repository) mcp.ToolHandlerFor[types.CheckTaskParams, types.CheckTaskResponse] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[types.CheckTaskParams]) (*mcp.CallToolResultFor[types.CheckTaskResponse], error) {
		args := params.Arguments
		logToolCall("check_task", args)
		if err := requireID(args.ID); err != nil {
			return nil, err
		}

		tasks, err := repo.GetAll()
		if err != nil {
			return nil, WrapStoreError(err, "check", args.ID)
		}
		check := task.CheckExecutable(tasks, args.ID)
		names := make(map[string]string, len(tasks))
		for _, t := range tasks {
			names[t.ID] = t.Name
		}
		return &mcp.CallToolResultFor[types.CheckTaskResponse]{
			Content: textContent(mcppresenter.FormatCheck(args.ID, check, names)),
			StructuredContent: types.CheckTaskResponse{
				TaskID:     args.ID,
				CanExecute: check.CanExecute,
				BlockedBy:  check.BlockedBy,
			},
		}, nil
	}
}

// taskWorkflowHandler serves the unified next/start/complete/check tool
func taskWorkflowHandler(repo *task.Repository) mcp.ToolHandlerFor[mcppresenter.TaskToolParams, mcppresenter.TaskToolResult] {
	return func(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[mcppresenter.TaskToolParams]) (*mcp.CallToolResultFor[mcppresenter.TaskToolResult], error) {
		args := params.Arguments
		logToolCall("task", args)

		res, err := mcppresenter.HandleTaskTool(ctx, repo, args)
		if err != nil {
			logError(err)
			return nil, WrapStoreError(err, string(args.Action), args.TaskID)
		}
		text := res.Content
		if text == "" && res.Error != "" {
			text = mcppresenter.FormatError(res.Error)
		}
		return &mcp.CallToolResultFor[mcppresenter.TaskToolResult]{
			Content:           textContent(text),
			StructuredContent: *res,
			IsError:           res.Error != "",
		}, nil
	}
}
