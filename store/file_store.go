package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	"github.com/josephgoksu/tasklane/internal/git"
	"github.com/josephgoksu/tasklane/models"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v3"
)

const (
	defaultDataFile   = "tasks.json"
	defaultArchiveDir = "archive"
	formatJSON        = "json"
	formatYAML        = "yaml"
	formatTOML        = "toml"
	checksumSuffix    = ".checksum"
	lockSuffix        = ".lock"
)

var (
	// ErrVersionConflict is returned by Save when the document changed on disk
	// since the caller loaded it.
	ErrVersionConflict = errors.New("task document was modified by another writer")
	// ErrChecksumMismatch is returned by Load when the data file does not match its sidecar checksum.
	ErrChecksumMismatch = errors.New("checksum mismatch: data file is corrupt or was edited by hand")
)

// Options configures a FileTaskStore.
type Options struct {
	// Fs is the filesystem backing the store. Defaults to the OS filesystem.
	Fs afero.Fs
	// DataFile is the path of the task document.
	DataFile string
	// Format is one of json, yaml, toml. Defaults to json.
	Format string
	// ArchiveDir holds archive snapshots. Defaults to "archive" next to DataFile.
	ArchiveDir string
	// RevisionLog records an audit entry after each save. Nil disables versioning.
	RevisionLog RevisionLog
	// Now is the clock used for document and snapshot timestamps.
	Now func() time.Time
}

// FileTaskStore implements TaskStore using a single file holding the whole collection.
// It supports JSON, YAML, and TOML formats. Writes are atomic (temp file + rename),
// guarded by an in-process mutex and, on the OS filesystem, an inter-process file lock.
type FileTaskStore struct {
	fs         afero.Fs
	filePath   string
	format     string
	archiveDir string
	revlog     RevisionLog
	now        func() time.Time

	mu           sync.Mutex
	flk          *flock.Flock
	lastChecksum string
}

// NewFileTaskStore creates a store for the configured data file and ensures its directory exists.
func NewFileTaskStore(opts Options) (*FileTaskStore, error) {
	s := &FileTaskStore{
		fs:       opts.Fs,
		filePath: opts.DataFile,
		revlog:   opts.RevisionLog,
		now:      opts.Now,
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.now == nil {
		s.now = time.Now
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	switch format {
	case "":
		s.format = formatJSON
	case formatJSON, formatYAML, formatTOML:
		s.format = format
	case "yml":
		s.format = formatYAML
	default:
		return nil, fmt.Errorf("unsupported data format: %s. Supported formats are json, yaml, toml", opts.Format)
	}

	if s.filePath == "" {
		s.filePath = defaultDataFile
	}
	// A default file name follows the chosen format.
	if s.filePath == defaultDataFile && s.format != formatJSON {
		s.filePath = strings.TrimSuffix(s.filePath, filepath.Ext(s.filePath)) + "." + s.format
	}

	dir := filepath.Dir(s.filePath)
	if dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	s.archiveDir = opts.ArchiveDir
	if s.archiveDir == "" {
		s.archiveDir = filepath.Join(dir, defaultArchiveDir)
	} else if !filepath.IsAbs(s.archiveDir) {
		s.archiveDir = filepath.Join(dir, s.archiveDir)
	}

	// Locking a sidecar keeps the lock valid across the rename that replaces the data file.
	if _, ok := s.fs.(*afero.OsFs); ok {
		s.flk = flock.New(s.filePath + lockSuffix)
	}
	return s, nil
}

// FilePath returns the path of the task document.
func (s *FileTaskStore) FilePath() string {
	return s.filePath
}

// Fs returns the filesystem backing the store.
func (s *FileTaskStore) Fs() afero.Fs {
	return s.fs
}

// ArchiveDir returns the directory holding archive snapshots.
func (s *FileTaskStore) ArchiveDir() string {
	return s.archiveDir
}

// Load reads the full document, creating an empty one if the file does not exist.
func (s *FileTaskStore) Load() (models.TaskDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock()
	if err != nil {
		return models.TaskDocument{}, err
	}
	defer unlock()

	return s.loadInternal()
}

// Save writes doc as the new document if doc.Version matches the stored version.
func (s *FileTaskStore) Save(doc models.TaskDocument, changeLabel string) (models.TaskDocument, error) {
	saved, err := s.saveLocked(doc)
	if err != nil {
		return models.TaskDocument{}, err
	}
	s.recordRevision(changeLabel)
	return saved, nil
}

func (s *FileTaskStore) saveLocked(doc models.TaskDocument) (models.TaskDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock()
	if err != nil {
		return models.TaskDocument{}, err
	}
	defer unlock()

	current, err := s.loadInternal()
	if err != nil {
		return models.TaskDocument{}, err
	}
	if current.Version != doc.Version {
		return models.TaskDocument{}, fmt.Errorf("%w: loaded version %d, stored version %d", ErrVersionConflict, doc.Version, current.Version)
	}

	next := models.TaskDocument{
		Version:   current.Version + 1,
		UpdatedAt: s.now().UTC(),
		Tasks:     doc.Tasks,
	}
	if next.Tasks == nil {
		next.Tasks = []models.Task{}
	}
	if err := models.ValidateStruct(next); err != nil {
		return models.TaskDocument{}, fmt.Errorf("refusing to save invalid document: %w", err)
	}
	if err := s.writeInternal(next); err != nil {
		return models.TaskDocument{}, err
	}
	return next, nil
}

// recordRevision stages and commits the data directory. Failures never reach the caller.
func (s *FileTaskStore) recordRevision(label string) {
	if s.revlog == nil {
		return
	}
	if label == "" {
		label = "Update tasks"
	}
	if err := s.revlog.EnsureInitialized(); err != nil {
		slog.Warn("revision log unavailable", "error", err)
		return
	}
	if err := s.revlog.StageAll(); err != nil {
		slog.Warn("failed to stage task revision", "error", err)
		return
	}
	if err := s.revlog.Commit(label); err != nil {
		if errors.Is(err, git.ErrNothingToCommit) {
			slog.Debug("no task changes to record", "label", label)
			return
		}
		slog.Warn("failed to record task revision", "label", label, "error", err)
	}
}

// Close releases the inter-process lock if it is still held.
func (s *FileTaskStore) Close() error {
	if s.flk != nil && s.flk.Locked() {
		return s.flk.Unlock()
	}
	return nil
}

func (s *FileTaskStore) lock() (func(), error) {
	if s.flk == nil {
		return func() {}, nil
	}
	if err := s.flk.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock for %s: %w", s.filePath, err)
	}
	return func() { _ = s.flk.Unlock() }, nil
}

// calculateChecksum computes the SHA256 checksum of the given data.
func calculateChecksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func emptyDocument() models.TaskDocument {
	return models.TaskDocument{Tasks: []models.Task{}}
}

// loadInternal reads the document, verifies its checksum, and decodes it. Callers hold the locks.
func (s *FileTaskStore) loadInternal() (models.TaskDocument, error) {
	checksumPath := s.filePath + checksumSuffix

	data, err := afero.ReadFile(s.fs, s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			doc := emptyDocument()
			doc.UpdatedAt = s.now().UTC()
			if err := s.writeInternal(doc); err != nil {
				return models.TaskDocument{}, fmt.Errorf("failed to create data file %s: %w", s.filePath, err)
			}
			return doc, nil
		}
		return models.TaskDocument{}, fmt.Errorf("failed to read data file %s: %w", s.filePath, err)
	}

	expected, err := afero.ReadFile(s.fs, checksumPath)
	switch {
	case err == nil:
		actual := calculateChecksum(data)
		if want := strings.TrimSpace(string(expected)); want != actual {
			return models.TaskDocument{}, fmt.Errorf("%w: %s expected %s, got %s", ErrChecksumMismatch, s.filePath, want, actual)
		}
		s.lastChecksum = actual
	case errors.Is(err, fs.ErrNotExist):
		// Files written before checksums existed load as-is; the next save adds the sidecar.
	default:
		return models.TaskDocument{}, fmt.Errorf("error reading checksum file %s: %w", checksumPath, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return emptyDocument(), nil
	}

	doc, err := decodeDocument(data, s.format)
	if err != nil {
		return models.TaskDocument{}, fmt.Errorf("failed to decode %s: %w", s.filePath, err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []models.Task{}
	}
	for i := range doc.Tasks {
		if doc.Tasks[i].Dependencies == nil {
			doc.Tasks[i].Dependencies = []string{}
		}
	}
	return doc, nil
}

// writeInternal encodes doc and replaces the data file atomically, then refreshes the checksum.
func (s *FileTaskStore) writeInternal(doc models.TaskDocument) error {
	data, err := encodeDocument(doc, s.format)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	if err := writeFileAtomic(s.fs, s.filePath, data, 0o644); err != nil {
		return err
	}
	checksum := calculateChecksum(data)
	if err := writeFileAtomic(s.fs, s.filePath+checksumSuffix, []byte(checksum), 0o644); err != nil {
		return fmt.Errorf("failed to write checksum: %w", err)
	}
	s.lastChecksum = checksum
	return nil
}

func writeFileAtomic(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file %s: %w", tmp, err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func decodeDocument(data []byte, format string) (models.TaskDocument, error) {
	var doc models.TaskDocument
	switch format {
	case formatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("unmarshal JSON: %w", err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("unmarshal YAML: %w", err)
		}
	case formatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return doc, fmt.Errorf("unmarshal TOML: %w", err)
		}
	default:
		return doc, fmt.Errorf("unsupported data format for loading: %s", format)
	}
	return doc, nil
}

func encodeDocument(doc models.TaskDocument, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case formatYAML:
		return yaml.Marshal(doc)
	case formatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported data format for saving: %s", format)
	}
}
