package mcp

// === Action Constants ===

// TaskAction defines the valid actions for the unified task tool.
type TaskAction string

const (
	TaskActionNext     TaskAction = "next"
	TaskActionStart    TaskAction = "start"
	TaskActionComplete TaskAction = "complete"
	TaskActionCheck    TaskAction = "check"
)

// ValidTaskActions returns all valid task actions.
func ValidTaskActions() []TaskAction {
	return []TaskAction{TaskActionNext, TaskActionStart, TaskActionComplete, TaskActionCheck}
}

// IsValid checks if the action is a valid task action.
func (a TaskAction) IsValid() bool {
	switch a {
	case TaskActionNext, TaskActionStart, TaskActionComplete, TaskActionCheck:
		return true
	}
	return false
}

// === Unified Tool Parameters ===

// TaskToolParams defines the parameters for the unified task tool.
type TaskToolParams struct {
	// Action specifies which operation to perform.
	// Required. One of: next, start, complete, check
	Action TaskAction `json:"action" jsonschema:"One of next, start, complete, check (required)"`

	// TaskID is the task identifier.
	// Required for: start, complete, check
	TaskID string `json:"task_id,omitempty" jsonschema:"Task ID. Required for start, complete and check"`

	// Summary describes what was accomplished.
	// Optional for: complete
	Summary string `json:"summary,omitempty" jsonschema:"What was accomplished. Used by complete"`

	// AutoStart moves the next task to in_progress.
	// Optional for: next (default: false)
	AutoStart bool `json:"auto_start,omitempty" jsonschema:"Move the next task to in_progress. Used by next"`
}

// TaskToolResult represents the response from the unified task tool.
type TaskToolResult struct {
	Action  string `json:"action"`
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
	TaskID  string `json:"task_id,omitempty"`
}
