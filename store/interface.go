package store

import "github.com/josephgoksu/tasklane/models"

// TaskStore defines the interface for task persistence.
// The whole collection is read and written as one document.
type TaskStore interface {
	// Load reads the full document. If the backing file does not exist it is
	// created with an empty collection.
	Load() (models.TaskDocument, error)

	// Save overwrites the document with doc.Tasks and returns the stored document
	// with its new version. doc.Version must equal the version currently on disk,
	// otherwise ErrVersionConflict is returned and nothing is written.
	// After the write succeeds a revision-log entry labelled changeLabel is
	// recorded on a best-effort basis; its failure is logged, never returned.
	Save(doc models.TaskDocument, changeLabel string) (models.TaskDocument, error)

	// Archive writes an immutable, timestamped snapshot of tasks into the
	// archive area and returns the snapshot path.
	Archive(tasks []models.Task) (string, error)

	// RemoveArchive deletes a snapshot written by Archive. It is used to roll
	// back a snapshot whose clearing write did not happen.
	RemoveArchive(path string) error

	// ArchiveDir returns the directory holding archive snapshots.
	ArchiveDir() string

	// ListArchives returns snapshot paths, most recently named first.
	ListArchives() ([]string, error)

	// ReadArchive reads one snapshot file.
	ReadArchive(path string) (models.ArchiveSnapshot, error)

	// Close releases any resources held by the store, such as file locks.
	Close() error
}

// RevisionLog is the audit-trail collaborator used by the store after each save.
type RevisionLog interface {
	EnsureInitialized() error
	StageAll() error
	Commit(message string) error
}
