package task

import (
	"fmt"
	"slices"
	"strings"

	"github.com/josephgoksu/tasklane/models"
)

// Mode selects how a batch of specs is reconciled with the existing collection.
type Mode string

const (
	// ModeAppend keeps every existing task and adds each spec as a new task.
	ModeAppend Mode = "append"
	// ModeOverwrite keeps only completed tasks and adds each spec as a new task.
	ModeOverwrite Mode = "overwrite"
	// ModeSelective updates unfinished tasks that share a spec's name and adds the rest.
	ModeSelective Mode = "selective"
	// ModeClearAll archives completed tasks, then replaces the collection with the specs.
	ModeClearAll Mode = "clearAllTasks"
)

// Modes lists the accepted batch modes.
var Modes = []Mode{ModeAppend, ModeOverwrite, ModeSelective, ModeClearAll}

// ParseMode accepts a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ModeAppend, nil
	}
	for _, m := range Modes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid mode %q: must be one of append, overwrite, selective, clearAllTasks", s)
}

// Spec is an externally supplied task description. Dependencies may be task ids or task names.
type Spec struct {
	Name                 string               `json:"name" yaml:"name" toml:"name" validate:"required"`
	Description          string               `json:"description" yaml:"description" toml:"description" validate:"required"`
	Notes                string               `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`
	Dependencies         []string             `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty"`
	RelatedFiles         []models.RelatedFile `json:"relatedFiles,omitempty" yaml:"relatedFiles,omitempty" toml:"relatedFiles,omitempty" validate:"dive"`
	ImplementationGuide  string               `json:"implementationGuide,omitempty" yaml:"implementationGuide,omitempty" toml:"implementationGuide,omitempty"`
	VerificationCriteria string               `json:"verificationCriteria,omitempty" yaml:"verificationCriteria,omitempty" toml:"verificationCriteria,omitempty"`
	Agent                string               `json:"agent,omitempty" yaml:"agent,omitempty" toml:"agent,omitempty"`
}

// DroppedDependency records a dependency token that could not be linked.
type DroppedDependency struct {
	TaskName string `json:"taskName"`
	Token    string `json:"token"`
	Reason   string `json:"reason"`
}

// BatchResult is the outcome of BatchMerge.
type BatchResult struct {
	// Tasks holds only the created and updated tasks, in spec order.
	Tasks []models.Task `json:"tasks"`
	// Warnings lists dependency tokens that were dropped.
	Warnings []DroppedDependency `json:"warnings,omitempty"`
	// ArchivePath is set when clearAllTasks archived completed tasks.
	ArchivePath string `json:"archivePath,omitempty"`
}

// BatchMerge reconciles specs with the collection under mode and persists kept ∪ new.
// analysis, when non-empty, is stored on every created or updated task.
// Unresolvable dependency tokens are dropped and reported in Warnings.
func (r *Repository) BatchMerge(specs []Spec, mode Mode, analysis string) (BatchResult, error) {
	if !slices.Contains(Modes, mode) {
		return BatchResult{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidTask, mode)
	}
	for i, s := range specs {
		if err := models.ValidateStruct(s); err != nil {
			return BatchResult{}, fmt.Errorf("%w: spec %d (%s): %v", ErrInvalidTask, i+1, s.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.store.Load()
	if err != nil {
		return BatchResult{}, fmt.Errorf("load tasks: %w", err)
	}
	original := doc.Tasks

	var res BatchResult
	var kept []models.Task
	switch mode {
	case ModeAppend, ModeSelective:
		kept = slices.Clone(original)
	case ModeOverwrite:
		for _, t := range original {
			if t.IsCompleted() {
				kept = append(kept, t)
			}
		}
	}

	nameToID := make(map[string]string, len(kept)+len(specs))
	for _, t := range kept {
		nameToID[t.Name] = t.ID
	}

	now := r.timestamp()
	produced := make([]models.Task, len(specs))
	for i, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if mode == ModeSelective {
			if j := findUnfinishedByName(kept, name); j >= 0 {
				t := kept[j].Clone()
				applySpec(&t, spec, analysis)
				t.UpdatedAt = now
				produced[i] = t
				kept = slices.Delete(kept, j, j+1)
				continue
			}
		}
		t := models.NewTask(name, strings.TrimSpace(spec.Description), now)
		applySpec(&t, spec, analysis)
		produced[i] = t
		nameToID[name] = t.ID
	}

	known := make(map[string]string, len(kept)+len(produced))
	for _, t := range kept {
		known[strings.ToLower(t.ID)] = t.ID
	}
	for _, t := range produced {
		known[strings.ToLower(t.ID)] = t.ID
	}

	for i, spec := range specs {
		deps := []string{}
		for _, raw := range spec.Dependencies {
			token := strings.TrimSpace(raw)
			if token == "" {
				continue
			}
			var id string
			var ok bool
			if models.LooksLikeID(token) {
				if id, ok = known[strings.ToLower(token)]; !ok {
					res.Warnings = append(res.Warnings, DroppedDependency{TaskName: produced[i].Name, Token: token, Reason: "no task with this id"})
					continue
				}
			} else {
				if id, ok = nameToID[token]; !ok {
					res.Warnings = append(res.Warnings, DroppedDependency{TaskName: produced[i].Name, Token: token, Reason: "no task with this name"})
					continue
				}
			}
			if !slices.Contains(deps, id) {
				deps = append(deps, id)
			}
		}
		produced[i].Dependencies = deps
		if err := models.ValidateStruct(produced[i]); err != nil {
			return BatchResult{}, fmt.Errorf("%w: %s: %v", ErrInvalidTask, produced[i].Name, err)
		}
	}

	if mode == ModeOverwrite {
		pruneDependencies(kept, known)
	}

	doc.Tasks = append(kept, produced...)
	if r.cycleCheck {
		if err := VerifyDAG(doc.Tasks); err != nil {
			return BatchResult{}, fmt.Errorf("%w: %v", ErrDependencyCycle, err)
		}
	}

	if mode == ModeClearAll {
		res.ArchivePath, _ = r.archiveCompleted(original)
	}
	label := fmt.Sprintf("Batch %s: %d task(s)", mode, len(produced))
	if _, err := r.store.Save(doc, label); err != nil {
		r.discardArchive(res.ArchivePath)
		return BatchResult{}, fmt.Errorf("save tasks: %w", err)
	}
	res.Tasks = produced
	return res, nil
}

// pruneDependencies drops dependency ids of tasks that no longer name a task in known.
func pruneDependencies(tasks []models.Task, known map[string]string) {
	for i := range tasks {
		deps := []string{}
		for _, id := range tasks[i].Dependencies {
			if full, ok := known[strings.ToLower(id)]; ok {
				deps = append(deps, full)
			}
		}
		if len(deps) != len(tasks[i].Dependencies) {
			tasks[i] = tasks[i].Clone()
			tasks[i].Dependencies = deps
		}
	}
}

// findUnfinishedByName returns the index of the first non-completed task named name.
func findUnfinishedByName(tasks []models.Task, name string) int {
	for i, t := range tasks {
		if t.Name == name && !t.IsCompleted() {
			return i
		}
	}
	return -1
}

// applySpec overwrites the content fields of t from spec.
func applySpec(t *models.Task, spec Spec, analysis string) {
	t.Name = strings.TrimSpace(spec.Name)
	t.Description = strings.TrimSpace(spec.Description)
	t.Notes = spec.Notes
	t.RelatedFiles = slices.Clone(spec.RelatedFiles)
	t.ImplementationGuide = spec.ImplementationGuide
	t.VerificationCriteria = spec.VerificationCriteria
	t.Agent = spec.Agent
	if analysis != "" {
		t.AnalysisResult = analysis
	}
}
