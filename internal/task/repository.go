// Package task implements the task lifecycle engine: CRUD with completion locking,
// dependency gating, batch reconciliation, complexity scoring, and search.
package task

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/josephgoksu/tasklane/models"
	"github.com/josephgoksu/tasklane/store"
)

var (
	// ErrInvalidTask is returned when a create or batch input fails validation.
	ErrInvalidTask = errors.New("invalid task")
	// ErrDependencyCycle is returned by mutators when cycle checking is enabled and
	// the change would make the dependency graph cyclic.
	ErrDependencyCycle = errors.New("dependency cycle")
)

// Reason classifies an unsuccessful Result.
type Reason string

const (
	ReasonNotFound  Reason = "not_found"
	ReasonForbidden Reason = "forbidden"
)

// Blocker identifies a task that prevents an operation.
type Blocker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Result is the outcome of a mutation that can be refused without an infrastructure failure.
type Result struct {
	Success  bool         `json:"success"`
	Reason   Reason       `json:"reason,omitempty"`
	Message  string       `json:"message"`
	Task     *models.Task `json:"task,omitempty"`
	Blockers []Blocker    `json:"blockers,omitempty"`
}

func notFound(id string) Result {
	return Result{Reason: ReasonNotFound, Message: fmt.Sprintf("task not found: %s", id)}
}

// CreateParams holds the fields of a new task.
type CreateParams struct {
	Name                 string
	Description          string
	Notes                string
	Dependencies         []string
	RelatedFiles         []models.RelatedFile
	ImplementationGuide  string
	VerificationCriteria string
	Agent                string
	AnalysisResult       string
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name                 *string
	Description          *string
	Notes                *string
	Status               *models.TaskStatus
	Dependencies         *[]string
	RelatedFiles         *[]models.RelatedFile
	ImplementationGuide  *string
	VerificationCriteria *string
	Summary              *string
	Agent                *string
	AnalysisResult       *string
}

// touchesLocked reports whether the patch changes a field that is frozen once a task is completed.
func (p Patch) touchesLocked() bool {
	return p.Name != nil || p.Description != nil || p.Notes != nil || p.Status != nil ||
		p.Dependencies != nil || p.ImplementationGuide != nil || p.VerificationCriteria != nil ||
		p.Agent != nil || p.AnalysisResult != nil
}

// ClearResult reports the outcome of ClearAll.
type ClearResult struct {
	Removed     int    `json:"removed"`
	Archived    int    `json:"archived"`
	ArchivePath string `json:"archivePath,omitempty"`
}

// Option configures a Repository.
type Option func(*Repository)

// WithCycleCheck rejects mutations that would introduce a dependency cycle.
func WithCycleCheck(enabled bool) Option {
	return func(r *Repository) { r.cycleCheck = enabled }
}

// WithClock overrides the time source used for task timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// Repository provides CRUD and status transitions over a TaskStore.
// Every mutating call is a whole-document read-modify-write serialised by mu.
type Repository struct {
	store      store.TaskStore
	mu         sync.Mutex
	cycleCheck bool
	now        func() time.Time
}

// NewRepository creates a repository backed by s.
func NewRepository(s store.TaskStore, opts ...Option) *Repository {
	r := &Repository{store: s, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) timestamp() time.Time {
	return r.now().UTC()
}

// GetAll returns every task in document order.
func (r *Repository) GetAll() ([]models.Task, error) {
	doc, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return doc.Tasks, nil
}

// GetByID returns the task with id, or nil if there is none.
func (r *Repository) GetByID(id string) (*models.Task, error) {
	tasks, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	if i := indexOf(tasks, id); i >= 0 {
		t := tasks[i]
		return &t, nil
	}
	return nil, nil
}

// FindIDsByPrefix returns the ids of tasks whose id starts with prefix, ignoring case.
func (r *Repository) FindIDsByPrefix(prefix string) ([]string, error) {
	tasks, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var ids []string
	for _, t := range tasks {
		if strings.HasPrefix(strings.ToLower(t.ID), prefix) {
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

// ListByStatus returns the tasks in the given status.
func (r *Repository) ListByStatus(status models.TaskStatus) ([]models.Task, error) {
	tasks, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	var out []models.Task
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

// Create adds a new pending task. Dependency ids that do not name an existing task are dropped.
func (r *Repository) Create(p CreateParams) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	t := models.NewTask(strings.TrimSpace(p.Name), strings.TrimSpace(p.Description), r.timestamp())
	t.Notes = p.Notes
	t.RelatedFiles = p.RelatedFiles
	t.ImplementationGuide = p.ImplementationGuide
	t.VerificationCriteria = p.VerificationCriteria
	t.Agent = p.Agent
	t.AnalysisResult = p.AnalysisResult
	t.Dependencies = resolveIDs(doc.Tasks, p.Dependencies)
	if err := models.ValidateStruct(t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	doc.Tasks = append(doc.Tasks, t)
	if _, err := r.store.Save(doc, "Add task: "+t.Name); err != nil {
		return nil, fmt.Errorf("save tasks: %w", err)
	}
	return &t, nil
}

// Update merges patch into the task with id. Completed tasks accept only summary and related files.
func (r *Repository) Update(id string, patch Patch) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateLocked(id, patch)
}

func (r *Repository) updateLocked(id string, patch Patch) (Result, error) {
	doc, err := r.store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("load tasks: %w", err)
	}
	i := indexOf(doc.Tasks, id)
	if i < 0 {
		return notFound(id), nil
	}
	t := doc.Tasks[i].Clone()
	if t.IsCompleted() && patch.touchesLocked() {
		return Result{
			Reason:  ReasonForbidden,
			Message: fmt.Sprintf("task %q is completed; only summary and related files can be changed", t.Name),
			Task:    &t,
		}, nil
	}

	now := r.timestamp()
	if patch.Name != nil {
		t.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Notes != nil {
		t.Notes = *patch.Notes
	}
	if patch.Dependencies != nil {
		t.Dependencies = resolveIDs(doc.Tasks, *patch.Dependencies)
	}
	if patch.RelatedFiles != nil {
		t.RelatedFiles = slices.Clone(*patch.RelatedFiles)
	}
	if patch.ImplementationGuide != nil {
		t.ImplementationGuide = *patch.ImplementationGuide
	}
	if patch.VerificationCriteria != nil {
		t.VerificationCriteria = *patch.VerificationCriteria
	}
	if patch.Summary != nil {
		t.Summary = *patch.Summary
	}
	if patch.Agent != nil {
		t.Agent = *patch.Agent
	}
	if patch.AnalysisResult != nil {
		t.AnalysisResult = *patch.AnalysisResult
	}
	if patch.Status != nil && *patch.Status != t.Status {
		t.Status = *patch.Status
		if t.Status == models.StatusCompleted {
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
	}
	t.UpdatedAt = now

	if err := models.ValidateStruct(t); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	doc.Tasks[i] = t
	if r.cycleCheck && patch.Dependencies != nil {
		if err := VerifyDAG(doc.Tasks); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrDependencyCycle, err)
		}
	}

	if _, err := r.store.Save(doc, "Update task: "+t.Name); err != nil {
		return Result{}, fmt.Errorf("save tasks: %w", err)
	}
	return Result{Success: true, Message: fmt.Sprintf("task %q updated", t.Name), Task: &t}, nil
}

// SetStatus moves a task to status, stamping completedAt on completion.
func (r *Repository) SetStatus(id string, status models.TaskStatus) (Result, error) {
	return r.Update(id, Patch{Status: &status})
}

// Complete marks a task completed and records its summary.
func (r *Repository) Complete(id, summary string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := models.StatusCompleted
	res, err := r.updateLocked(id, Patch{Status: &status})
	if err != nil || !res.Success || strings.TrimSpace(summary) == "" {
		return res, err
	}
	return r.updateLocked(id, Patch{Summary: &summary})
}

// UpdateSummary replaces a task's summary. Allowed on completed tasks.
func (r *Repository) UpdateSummary(id, summary string) (Result, error) {
	return r.Update(id, Patch{Summary: &summary})
}

// UpdateRelatedFiles replaces a task's related files. Allowed on completed tasks.
func (r *Repository) UpdateRelatedFiles(id string, files []models.RelatedFile) (Result, error) {
	return r.Update(id, Patch{RelatedFiles: &files})
}

// Delete removes a task unless it is completed or another task depends on it.
func (r *Repository) Delete(id string) (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("load tasks: %w", err)
	}
	i := indexOf(doc.Tasks, id)
	if i < 0 {
		return notFound(id), nil
	}
	target := doc.Tasks[i]
	if target.IsCompleted() {
		return Result{
			Reason:  ReasonForbidden,
			Message: fmt.Sprintf("task %q is completed and cannot be deleted", target.Name),
			Task:    &target,
		}, nil
	}

	var blockers []Blocker
	for _, t := range doc.Tasks {
		if t.ID != target.ID && slices.Contains(t.Dependencies, target.ID) {
			blockers = append(blockers, Blocker{ID: t.ID, Name: t.Name})
		}
	}
	if len(blockers) > 0 {
		names := make([]string, len(blockers))
		for j, b := range blockers {
			names[j] = fmt.Sprintf("%q (%s)", b.Name, b.ID)
		}
		return Result{
			Reason:   ReasonForbidden,
			Message:  fmt.Sprintf("task %q is a dependency of: %s", target.Name, strings.Join(names, ", ")),
			Task:     &target,
			Blockers: blockers,
		}, nil
	}

	doc.Tasks = slices.Delete(doc.Tasks, i, i+1)
	if _, err := r.store.Save(doc, "Delete task: "+target.Name); err != nil {
		return Result{}, fmt.Errorf("save tasks: %w", err)
	}
	return Result{Success: true, Message: fmt.Sprintf("task %q deleted", target.Name), Task: &target}, nil
}

// ClearAll snapshots completed tasks into the archive and empties the collection.
func (r *Repository) ClearAll() (ClearResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.store.Load()
	if err != nil {
		return ClearResult{}, fmt.Errorf("load tasks: %w", err)
	}
	res := ClearResult{Removed: len(doc.Tasks)}
	res.ArchivePath, res.Archived = r.archiveCompleted(doc.Tasks)

	doc.Tasks = []models.Task{}
	if _, err := r.store.Save(doc, "Clear all tasks"); err != nil {
		r.discardArchive(res.ArchivePath)
		return ClearResult{}, fmt.Errorf("save tasks: %w", err)
	}
	return res, nil
}

// archiveCompleted writes a snapshot of the completed tasks, if any. Failures are logged.
func (r *Repository) archiveCompleted(tasks []models.Task) (string, int) {
	var done []models.Task
	for _, t := range tasks {
		if t.IsCompleted() {
			done = append(done, t)
		}
	}
	if len(done) == 0 {
		return "", 0
	}
	path, err := r.store.Archive(done)
	if err != nil {
		slog.Warn("failed to archive completed tasks", "count", len(done), "error", err)
		return "", 0
	}
	slog.Debug("archived completed tasks", "count", len(done), "path", path)
	return path, len(done)
}

// discardArchive removes a snapshot whose clearing write failed, so the tasks are not archived twice.
func (r *Repository) discardArchive(path string) {
	if path == "" {
		return
	}
	if err := r.store.RemoveArchive(path); err != nil {
		slog.Warn("failed to remove archive after failed save", "path", path, "error", err)
	}
}

func indexOf(tasks []models.Task, id string) int {
	id = strings.TrimSpace(id)
	for i := range tasks {
		if strings.EqualFold(tasks[i].ID, id) {
			return i
		}
	}
	return -1
}

// resolveIDs keeps the ids that name a task in tasks, without duplicates.
func resolveIDs(tasks []models.Task, ids []string) []string {
	out := []string{}
	for _, id := range ids {
		i := indexOf(tasks, id)
		if i < 0 {
			continue
		}
		if resolved := tasks[i].ID; !slices.Contains(out, resolved) {
			out = append(out, resolved)
		}
	}
	return out
}
