package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TaskStatus represents the possible statuses of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// ParseStatus normalizes user input into a TaskStatus.
func ParseStatus(s string) (TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "todo":
		return StatusPending, nil
	case "in_progress", "in-progress", "inprogress", "doing":
		return StatusInProgress, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("invalid status %q: must be one of pending, in_progress, completed", s)
}

// RelatedFileType classifies how a file relates to a task.
type RelatedFileType string

const (
	FileToModify   RelatedFileType = "TO_MODIFY"
	FileReference  RelatedFileType = "REFERENCE"
	FileCreate     RelatedFileType = "CREATE"
	FileDependency RelatedFileType = "DEPENDENCY"
	FileOther      RelatedFileType = "OTHER"
)

// RelatedFile is a file reference attached to a task.
type RelatedFile struct {
	Path        string          `json:"path" yaml:"path" toml:"path" validate:"required"`
	Type        RelatedFileType `json:"type" yaml:"type" toml:"type" validate:"required,oneof=TO_MODIFY REFERENCE CREATE DEPENDENCY OTHER"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	LineStart   int             `json:"lineStart,omitempty" yaml:"lineStart,omitempty" toml:"lineStart,omitempty" validate:"gte=0"`
	LineEnd     int             `json:"lineEnd,omitempty" yaml:"lineEnd,omitempty" toml:"lineEnd,omitempty" validate:"gte=0"`
}

// Task represents a unit of trackable work.
type Task struct {
	ID                   string        `json:"id" yaml:"id" toml:"id" validate:"required,uuid4"`
	Name                 string        `json:"name" yaml:"name" toml:"name" validate:"required"`
	Description          string        `json:"description" yaml:"description" toml:"description" validate:"required"`
	Notes                string        `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes,omitempty"`
	Status               TaskStatus    `json:"status" yaml:"status" toml:"status" validate:"required,oneof=pending in_progress completed"`
	Dependencies         []string      `json:"dependencies" yaml:"dependencies" toml:"dependencies"`
	RelatedFiles         []RelatedFile `json:"relatedFiles,omitempty" yaml:"relatedFiles,omitempty" toml:"relatedFiles,omitempty" validate:"dive"`
	ImplementationGuide  string        `json:"implementationGuide,omitempty" yaml:"implementationGuide,omitempty" toml:"implementationGuide,omitempty"`
	VerificationCriteria string        `json:"verificationCriteria,omitempty" yaml:"verificationCriteria,omitempty" toml:"verificationCriteria,omitempty"`
	Summary              string        `json:"summary,omitempty" yaml:"summary,omitempty" toml:"summary,omitempty"`
	Agent                string        `json:"agent,omitempty" yaml:"agent,omitempty" toml:"agent,omitempty"`
	AnalysisResult       string        `json:"analysisResult,omitempty" yaml:"analysisResult,omitempty" toml:"analysisResult,omitempty"`
	CreatedAt            time.Time     `json:"createdAt" yaml:"createdAt" toml:"createdAt" validate:"required"`
	UpdatedAt            time.Time     `json:"updatedAt" yaml:"updatedAt" toml:"updatedAt" validate:"required"`
	CompletedAt          *time.Time    `json:"completedAt,omitempty" yaml:"completedAt,omitempty" toml:"completedAt,omitempty"`
}

// IsCompleted reports whether the task has reached its terminal state.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Clone returns a deep copy so callers can mutate slices without aliasing the store's copy.
func (t Task) Clone() Task {
	c := t
	if t.Dependencies != nil {
		c.Dependencies = append([]string(nil), t.Dependencies...)
	}
	if t.RelatedFiles != nil {
		c.RelatedFiles = append([]RelatedFile(nil), t.RelatedFiles...)
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		c.CompletedAt = &ts
	}
	return c
}

// NewTask builds a Pending task with a fresh ID and equal timestamps.
func NewTask(name, description string, now time.Time) Task {
	return Task{
		ID:           NewID(),
		Name:         name,
		Description:  description,
		Status:       StatusPending,
		Dependencies: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewID returns a new task identifier.
func NewID() string {
	return uuid.NewString()
}

var idShape = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// LooksLikeID reports whether s has the shape of a task identifier.
// Dependency tokens with this shape are treated as ids, everything else as a task name.
func LooksLikeID(s string) bool {
	return idShape.MatchString(strings.TrimSpace(s))
}

// global validator instance
var validate = validator.New()

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var errorMessages []string
	for _, e := range validationErrors {
		errorMessages = append(errorMessages, fmt.Sprintf("field '%s' failed rule '%s'", e.StructNamespace(), e.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(errorMessages, "; "))
}
