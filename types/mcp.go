/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

// MCP Tool Parameter Types

// RelatedFileParam describes a file attached to a task
type RelatedFileParam struct {
	Path        string `json:"path" jsonschema:"File path relative to the project root (required)"`
	Type        string `json:"type" jsonschema:"One of TO_MODIFY, REFERENCE, CREATE, DEPENDENCY, OTHER"`
	Description string `json:"description,omitempty" jsonschema:"Why the file matters for the task"`
	LineStart   int    `json:"lineStart,omitempty" jsonschema:"First relevant line"`
	LineEnd     int    `json:"lineEnd,omitempty" jsonschema:"Last relevant line"`
}

// ListTasksParams for listing tasks
type ListTasksParams struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: pending, in_progress, completed. Empty lists every task"`
}

// GetTaskParams for retrieving a specific task
type GetTaskParams struct {
	ID string `json:"id" jsonschema:"Task ID to retrieve (required)"`
}

// CreateTaskParams for creating a new task
type CreateTaskParams struct {
	Name                 string             `json:"name" jsonschema:"Task name (required)"`
	Description          string             `json:"description" jsonschema:"Task description (required)"`
	Notes                string             `json:"notes,omitempty" jsonschema:"Free-form notes"`
	Dependencies         []string           `json:"dependencies,omitempty" jsonschema:"IDs of tasks this task depends on"`
	RelatedFiles         []RelatedFileParam `json:"relatedFiles,omitempty" jsonschema:"Files related to the task"`
	ImplementationGuide  string             `json:"implementationGuide,omitempty" jsonschema:"How to implement the task"`
	VerificationCriteria string             `json:"verificationCriteria,omitempty" jsonschema:"How to verify the task is done"`
	Agent                string             `json:"agent,omitempty" jsonschema:"Agent assigned to the task"`
}

// UpdateTaskParams for updating an existing task. Omitted fields are left unchanged.
type UpdateTaskParams struct {
	ID                   string              `json:"id" jsonschema:"Task ID to update (required)"`
	Name                 *string             `json:"name,omitempty" jsonschema:"New task name"`
	Description          *string             `json:"description,omitempty" jsonschema:"New task description"`
	Notes                *string             `json:"notes,omitempty" jsonschema:"New notes"`
	Dependencies         *[]string           `json:"dependencies,omitempty" jsonschema:"Replacement dependency list"`
	RelatedFiles         *[]RelatedFileParam `json:"relatedFiles,omitempty" jsonschema:"Replacement related files. Allowed on completed tasks"`
	ImplementationGuide  *string             `json:"implementationGuide,omitempty" jsonschema:"New implementation guide"`
	VerificationCriteria *string             `json:"verificationCriteria,omitempty" jsonschema:"New verification criteria"`
	Summary              *string             `json:"summary,omitempty" jsonschema:"New completion summary. Allowed on completed tasks"`
	Agent                *string             `json:"agent,omitempty" jsonschema:"New assigned agent"`
}

// SetTaskStatusParams for moving a task between statuses
type SetTaskStatusParams struct {
	ID     string `json:"id" jsonschema:"Task ID (required)"`
	Status string `json:"status" jsonschema:"New status: pending, in_progress, completed (required)"`
}

// CompleteTaskParams for marking a task as completed
type CompleteTaskParams struct {
	ID      string `json:"id" jsonschema:"Task ID to complete (required)"`
	Summary string `json:"summary,omitempty" jsonschema:"What was done"`
}

// DeleteTaskParams for deleting a task
type DeleteTaskParams struct {
	ID string `json:"id" jsonschema:"Task ID to delete (required)"`
}

// ClearAllTasksParams for removing every task
type ClearAllTasksParams struct {
	Confirm bool `json:"confirm" jsonschema:"Must be true to clear the collection"`
}

// TaskSpecParam is one task in a split_tasks request
type TaskSpecParam struct {
	Name                 string             `json:"name" jsonschema:"Task name (required)"`
	Description          string             `json:"description" jsonschema:"Task description (required)"`
	Notes                string             `json:"notes,omitempty" jsonschema:"Free-form notes"`
	Dependencies         []string           `json:"dependencies,omitempty" jsonschema:"Task names or IDs this task depends on"`
	RelatedFiles         []RelatedFileParam `json:"relatedFiles,omitempty" jsonschema:"Files related to the task"`
	ImplementationGuide  string             `json:"implementationGuide,omitempty" jsonschema:"How to implement the task"`
	VerificationCriteria string             `json:"verificationCriteria,omitempty" jsonschema:"How to verify the task is done"`
	Agent                string             `json:"agent,omitempty" jsonschema:"Agent assigned to the task"`
}

// SplitTasksParams for merging a batch of task specs into the collection
type SplitTasksParams struct {
	UpdateMode           string          `json:"updateMode,omitempty" jsonschema:"append, overwrite, selective or clearAllTasks. Defaults to append"`
	Tasks                []TaskSpecParam `json:"tasks" jsonschema:"Tasks to merge (required)"`
	GlobalAnalysisResult string          `json:"globalAnalysisResult,omitempty" jsonschema:"Analysis text attached to every task in the batch"`
}

// SearchTasksParams for searching live and archived tasks
type SearchTasksParams struct {
	Query        string `json:"query" jsonschema:"Keywords separated by spaces, or a task ID when isId is set (required)"`
	IsID         bool   `json:"isId,omitempty" jsonschema:"Treat query as a task ID"`
	Page         int    `json:"page,omitempty" jsonschema:"Page number starting at 1"`
	PageSize     int    `json:"pageSize,omitempty" jsonschema:"Results per page, at most 20"`
	SkipArchived bool   `json:"skipArchived,omitempty" jsonschema:"Search live tasks only"`
}

// AnalyzeComplexityParams for assessing a task
type AnalyzeComplexityParams struct {
	ID string `json:"id" jsonschema:"Task ID to assess (required)"`
}

// CheckTaskParams for checking whether a task can start
type CheckTaskParams struct {
	ID string `json:"id" jsonschema:"Task ID to check (required)"`
}

// MCP Response Types

// RelatedFileResponse mirrors a task's related file
type RelatedFileResponse struct {
	Path        string `json:"path"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	LineStart   int    `json:"lineStart,omitempty"`
	LineEnd     int    `json:"lineEnd,omitempty"`
}

// TaskResponse for task operations
type TaskResponse struct {
	ID                   string                `json:"id"`
	Name                 string                `json:"name"`
	Description          string                `json:"description"`
	Notes                string                `json:"notes,omitempty"`
	Status               string                `json:"status"`
	Dependencies         []string              `json:"dependencies"`
	RelatedFiles         []RelatedFileResponse `json:"relatedFiles,omitempty"`
	ImplementationGuide  string                `json:"implementationGuide,omitempty"`
	VerificationCriteria string                `json:"verificationCriteria,omitempty"`
	Summary              string                `json:"summary,omitempty"`
	Agent                string                `json:"agent,omitempty"`
	AnalysisResult       string                `json:"analysisResult,omitempty"`
	CreatedAt            string                `json:"createdAt"`
	UpdatedAt            string                `json:"updatedAt"`
	CompletedAt          *string               `json:"completedAt,omitempty"`
	Archived             bool                  `json:"archived,omitempty"`
}

// TaskListResponse for list operations
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

// BlockerResponse names a task that prevents an operation
type BlockerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskResultResponse for mutations that can be refused
type TaskResultResponse struct {
	Success  bool              `json:"success"`
	Reason   string            `json:"reason,omitempty"`
	Message  string            `json:"message"`
	Task     *TaskResponse     `json:"task,omitempty"`
	Blockers []BlockerResponse `json:"blockers,omitempty"`
}

// ClearTasksResponse for clear operations
type ClearTasksResponse struct {
	Removed     int    `json:"removed"`
	Archived    int    `json:"archived"`
	ArchivePath string `json:"archivePath,omitempty"`
}

// DroppedDependencyResponse reports a dependency token that did not resolve
type DroppedDependencyResponse struct {
	TaskName string `json:"taskName"`
	Token    string `json:"token"`
	Reason   string `json:"reason"`
}

// SplitTasksResponse for batch merges
type SplitTasksResponse struct {
	Tasks       []TaskResponse              `json:"tasks"`
	Warnings    []DroppedDependencyResponse `json:"warnings,omitempty"`
	ArchivePath string                      `json:"archivePath,omitempty"`
}

// PaginationResponse describes the returned page
type PaginationResponse struct {
	CurrentPage  int  `json:"currentPage"`
	PageSize     int  `json:"pageSize"`
	TotalPages   int  `json:"totalPages"`
	TotalResults int  `json:"totalResults"`
	HasMore      bool `json:"hasMore"`
}

// SearchTasksResponse for search operations
type SearchTasksResponse struct {
	Tasks      []TaskResponse     `json:"tasks"`
	Pagination PaginationResponse `json:"pagination"`
}

// CheckTaskResponse for executability checks
type CheckTaskResponse struct {
	TaskID     string   `json:"taskId"`
	CanExecute bool     `json:"canExecute"`
	BlockedBy  []string `json:"blockedBy,omitempty"`
}
