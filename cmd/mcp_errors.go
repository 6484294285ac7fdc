/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/store"
	"github.com/josephgoksu/tasklane/types"
)

// MCPError is the structured error returned by tool handlers.
type MCPError = types.MCPError

// NewMCPError is an alias for types.NewMCPError
var NewMCPError = types.NewMCPError

// requireID rejects a blank id argument.
func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return NewMCPError(types.ErrCodeInvalidInput, "Task id is required", map[string]interface{}{
			"field": "id",
		})
	}
	return nil
}

// WrapStoreError maps engine failures to MCP error codes.
func WrapStoreError(err error, operation string, taskID string) error {
	if err == nil {
		return nil
	}
	details := map[string]interface{}{
		"operation": operation,
	}
	if taskID != "" {
		details["task_id"] = taskID
	}

	switch {
	case errors.Is(err, task.ErrDependencyCycle):
		return NewMCPError(types.ErrCodeCycle, err.Error(), details)
	case errors.Is(err, task.ErrInvalidTask):
		return NewMCPError(types.ErrCodeValidationFail, err.Error(), details)
	case errors.Is(err, store.ErrVersionConflict):
		return NewMCPError(types.ErrCodeConflict, "Tasks were modified by another writer, retry the call", details)
	}

	details["original_error"] = err.Error()
	return NewMCPError(types.ErrCodeStoreFailure, fmt.Sprintf("%s operation failed: %v", operation, err), details)
}

// resultError describes a refused mutation.
func resultError(res task.Result, taskID string) error {
	code := types.ErrCodeForbidden
	if res.Reason == task.ReasonNotFound {
		code = types.ErrCodeNotFound
	}
	details := map[string]interface{}{"task_id": taskID}
	if len(res.Blockers) > 0 {
		ids := make([]string, len(res.Blockers))
		for i, b := range res.Blockers {
			ids[i] = b.ID
		}
		details["blockers"] = ids
	}
	return NewMCPError(code, res.Message, details)
}
