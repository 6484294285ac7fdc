package types

// ComplexityMetrics are the measured inputs of an assessment
type ComplexityMetrics struct {
	DescriptionLength int  `json:"descriptionLength"`
	DependencyCount   int  `json:"dependencyCount"`
	NotesLength       int  `json:"notesLength"`
	HasNotes          bool `json:"hasNotes"`
}

// TaskComplexity contains the assessment of a single task
type TaskComplexity struct {
	TaskID          string            `json:"taskId"`
	TaskName        string            `json:"taskName"`
	Status          string            `json:"status"`
	Level           string            `json:"level"`
	Metrics         ComplexityMetrics `json:"metrics"`
	Recommendations []string          `json:"recommendations"`
}

// ComplexityReport covers every task in the collection
type ComplexityReport struct {
	GeneratedAtISO string           `json:"generatedAtIso"`
	Tasks          []TaskComplexity `json:"tasks"`
	Stats          ComplexityStats  `json:"stats"`
}

// ComplexityStats counts tasks per level
type ComplexityStats struct {
	Total    int `json:"total"`
	Low      int `json:"low"`
	Medium   int `json:"medium"`
	High     int `json:"high"`
	VeryHigh int `json:"veryHigh"`
}

// Add counts one task at the given level name.
func (s *ComplexityStats) Add(level string) {
	s.Total++
	switch level {
	case "low":
		s.Low++
	case "medium":
		s.Medium++
	case "high":
		s.High++
	case "very_high":
		s.VeryHigh++
	}
}
