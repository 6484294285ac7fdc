package task

import (
	"fmt"
	"unicode/utf8"

	"github.com/josephgoksu/tasklane/models"
)

// Level is an ordinal complexity tier.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
	LevelVeryHigh
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelVeryHigh:
		return "very_high"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// MarshalText renders the level by name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Thresholds are the Medium, High, and VeryHigh lower bounds of one metric.
type Thresholds struct {
	Medium   int
	High     int
	VeryHigh int
}

func (th Thresholds) level(v int) Level {
	switch {
	case v >= th.VeryHigh:
		return LevelVeryHigh
	case v >= th.High:
		return LevelHigh
	case v >= th.Medium:
		return LevelMedium
	}
	return LevelLow
}

var (
	DescriptionThresholds = Thresholds{Medium: 500, High: 1000, VeryHigh: 2000}
	DependencyThresholds  = Thresholds{Medium: 2, High: 5, VeryHigh: 10}
	NotesThresholds       = Thresholds{Medium: 200, High: 500, VeryHigh: 1000}
)

// Metrics are the raw size measurements of a task. Lengths count characters.
type Metrics struct {
	DescriptionLength int  `json:"descriptionLength"`
	DependencyCount   int  `json:"dependencyCount"`
	NotesLength       int  `json:"notesLength"`
	HasNotes          bool `json:"hasNotes"`
}

// Assessment is the complexity verdict for one task.
type Assessment struct {
	TaskID          string   `json:"taskId"`
	TaskName        string   `json:"taskName"`
	Status          string   `json:"status"`
	Level           Level    `json:"level"`
	Metrics         Metrics  `json:"metrics"`
	Recommendations []string `json:"recommendations"`
}

var levelRecommendations = map[Level][]string{
	LevelLow: {
		"Scope is small; implement directly.",
	},
	LevelMedium: {
		"Outline the implementation steps before starting.",
		"Confirm the dependencies are complete and their outputs are understood.",
	},
	LevelHigh: {
		"Split the work into two or more subtasks with clear boundaries.",
		"Define verification criteria before writing code.",
		"Review dependency outputs for interface mismatches early.",
	},
	LevelVeryHigh: {
		"Break this task into smaller tasks that can be completed and verified independently.",
		"Plan checkpoints and verify each stage before moving on.",
		"Record key decisions and risks in the notes as the work progresses.",
	},
}

// Assess scores a task. The overall level is the highest level reached by any metric.
// Extra recommendations are added for each metric at or above its High threshold.
func Assess(t models.Task) Assessment {
	m := Metrics{
		DescriptionLength: utf8.RuneCountInString(t.Description),
		DependencyCount:   len(t.Dependencies),
		NotesLength:       utf8.RuneCountInString(t.Notes),
	}
	m.HasNotes = m.NotesLength > 0

	level := max(
		DescriptionThresholds.level(m.DescriptionLength),
		DependencyThresholds.level(m.DependencyCount),
		NotesThresholds.level(m.NotesLength),
	)

	recs := append([]string(nil), levelRecommendations[level]...)
	if m.DescriptionLength >= DescriptionThresholds.High {
		recs = append(recs, "The description is long; structure it into sections and move step-by-step detail into the implementation guide.")
	}
	if m.DependencyCount >= DependencyThresholds.High {
		recs = append(recs, "The task has many dependencies; check whether some can be dropped or the task reordered.")
	}
	if m.NotesLength >= NotesThresholds.High {
		recs = append(recs, "The notes are extensive; condense them into the essentials needed to do the work.")
	}

	return Assessment{
		TaskID:          t.ID,
		TaskName:        t.Name,
		Status:          string(t.Status),
		Level:           level,
		Metrics:         m,
		Recommendations: recs,
	}
}

// AssessByID scores the task with id, or returns nil if there is none.
func (r *Repository) AssessByID(id string) (*Assessment, error) {
	t, err := r.GetByID(id)
	if err != nil || t == nil {
		return nil, err
	}
	a := Assess(*t)
	return &a, nil
}
