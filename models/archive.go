package models

import "time"

// TaskDocument is the whole-collection document persisted by the store.
// Version increases by one on every successful save.
type TaskDocument struct {
	Version   int64     `json:"version" yaml:"version" toml:"version"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt" toml:"updatedAt"`
	Tasks     []Task    `json:"tasks" yaml:"tasks" toml:"tasks" validate:"dive"`
}

// ArchiveSnapshot is an immutable export of completed tasks taken when the live
// collection is cleared.
type ArchiveSnapshot struct {
	ArchivedAt time.Time `json:"archivedAt"`
	Tasks      []Task    `json:"tasks"`
}
