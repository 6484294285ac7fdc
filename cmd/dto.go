package cmd

import (
	"time"

	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/models"
	"github.com/josephgoksu/tasklane/types"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func taskToResponse(t models.Task) types.TaskResponse {
	resp := types.TaskResponse{
		ID:                   t.ID,
		Name:                 t.Name,
		Description:          t.Description,
		Notes:                t.Notes,
		Status:               string(t.Status),
		Dependencies:         t.Dependencies,
		ImplementationGuide:  t.ImplementationGuide,
		VerificationCriteria: t.VerificationCriteria,
		Summary:              t.Summary,
		Agent:                t.Agent,
		AnalysisResult:       t.AnalysisResult,
		CreatedAt:            formatTime(t.CreatedAt),
		UpdatedAt:            formatTime(t.UpdatedAt),
	}
	if resp.Dependencies == nil {
		resp.Dependencies = []string{}
	}
	for _, f := range t.RelatedFiles {
		resp.RelatedFiles = append(resp.RelatedFiles, types.RelatedFileResponse{
			Path:        f.Path,
			Type:        string(f.Type),
			Description: f.Description,
			LineStart:   f.LineStart,
			LineEnd:     f.LineEnd,
		})
	}
	if t.CompletedAt != nil {
		ts := formatTime(*t.CompletedAt)
		resp.CompletedAt = &ts
	}
	return resp
}

func tasksToResponse(tasks []models.Task) types.TaskListResponse {
	out := types.TaskListResponse{Tasks: make([]types.TaskResponse, len(tasks)), Count: len(tasks)}
	for i, t := range tasks {
		out.Tasks[i] = taskToResponse(t)
	}
	return out
}

func resultToResponse(res task.Result) types.TaskResultResponse {
	out := types.TaskResultResponse{
		Success: res.Success,
		Reason:  string(res.Reason),
		Message: res.Message,
	}
	if res.Task != nil {
		tr := taskToResponse(*res.Task)
		out.Task = &tr
	}
	for _, b := range res.Blockers {
		out.Blockers = append(out.Blockers, types.BlockerResponse{ID: b.ID, Name: b.Name})
	}
	return out
}

func batchToResponse(res task.BatchResult) types.SplitTasksResponse {
	out := types.SplitTasksResponse{
		Tasks:       tasksToResponse(res.Tasks).Tasks,
		ArchivePath: res.ArchivePath,
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, types.DroppedDependencyResponse{TaskName: w.TaskName, Token: w.Token, Reason: w.Reason})
	}
	return out
}

func searchToResponse(res task.SearchResult) types.SearchTasksResponse {
	out := types.SearchTasksResponse{
		Tasks: make([]types.TaskResponse, len(res.Hits)),
		Pagination: types.PaginationResponse{
			CurrentPage:  res.Pagination.CurrentPage,
			PageSize:     res.Pagination.PageSize,
			TotalPages:   res.Pagination.TotalPages,
			TotalResults: res.Pagination.TotalResults,
			HasMore:      res.Pagination.HasMore,
		},
	}
	for i, h := range res.Hits {
		out.Tasks[i] = taskToResponse(h.Task)
		out.Tasks[i].Archived = h.Archived
	}
	return out
}

func assessmentToResponse(a task.Assessment) types.TaskComplexity {
	return types.TaskComplexity{
		TaskID:   a.TaskID,
		TaskName: a.TaskName,
		Status:   a.Status,
		Level:    a.Level.String(),
		Metrics: types.ComplexityMetrics{
			DescriptionLength: a.Metrics.DescriptionLength,
			DependencyCount:   a.Metrics.DependencyCount,
			NotesLength:       a.Metrics.NotesLength,
			HasNotes:          a.Metrics.HasNotes,
		},
		Recommendations: a.Recommendations,
	}
}

func clearToResponse(res task.ClearResult) types.ClearTasksResponse {
	return types.ClearTasksResponse{Removed: res.Removed, Archived: res.Archived, ArchivePath: res.ArchivePath}
}

func specFromParam(p types.TaskSpecParam) task.Spec {
	return task.Spec{
		Name:                 p.Name,
		Description:          p.Description,
		Notes:                p.Notes,
		Dependencies:         p.Dependencies,
		RelatedFiles:         relatedFilesFromParams(p.RelatedFiles),
		ImplementationGuide:  p.ImplementationGuide,
		VerificationCriteria: p.VerificationCriteria,
		Agent:                p.Agent,
	}
}

func relatedFilesFromParams(params []types.RelatedFileParam) []models.RelatedFile {
	if params == nil {
		return nil
	}
	files := make([]models.RelatedFile, len(params))
	for i, p := range params {
		files[i] = models.RelatedFile{
			Path:        p.Path,
			Type:        models.RelatedFileType(p.Type),
			Description: p.Description,
			LineStart:   p.LineStart,
			LineEnd:     p.LineEnd,
		}
	}
	return files
}

type deletedResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
}

type archiveEntry struct {
	Path       string `json:"path"`
	ArchivedAt string `json:"archivedAt,omitempty"`
}

type revisionResponse struct {
	Hash      string `json:"hash"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}
