package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/josephgoksu/tasklane/models"
	"github.com/spf13/afero"
)

const (
	archivePrefix = "tasks_"
	archiveSuffix = ".json"
	// archiveStampLayout sorts lexicographically in time order.
	archiveStampLayout = "2006-01-02T15-04-05.000Z"
	archiveFilePerm    = 0o444
)

// PurgeOptions controls archive retention.
type PurgeOptions struct {
	DryRun    bool
	OlderThan *time.Duration // e.g., 90*24h
	KeepLast  int            // keep at most this many snapshots, 0 to ignore
}

// PurgeResult reports what a purge removed (or would remove on a dry run).
type PurgeResult struct {
	DryRun          bool     `json:"dryRun"`
	FilesConsidered int      `json:"filesConsidered"`
	FilesDeleted    int      `json:"filesDeleted"`
	BytesFreed      int64    `json:"bytesFreed"`
	Deleted         []string `json:"deleted"`
}

// Archive writes a snapshot of tasks as archive/tasks_<UTC timestamp>.json.
// Snapshots are created read-only and never overwritten.
func (s *FileTaskStore) Archive(tasks []models.Task) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive dir %s: %w", s.archiveDir, err)
	}

	now := s.now().UTC()
	snap := models.ArchiveSnapshot{ArchivedAt: now, Tasks: tasks}
	if snap.Tasks == nil {
		snap.Tasks = []models.Task{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return "", fmt.Errorf("marshal archive: %w", err)
	}

	stamp := now.Format(archiveStampLayout)
	for attempt := 0; attempt < 100; attempt++ {
		name := archivePrefix + stamp + archiveSuffix
		if attempt > 0 {
			name = fmt.Sprintf("%s%s-%02d%s", archivePrefix, stamp, attempt, archiveSuffix)
		}
		path := filepath.Join(s.archiveDir, name)
		f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, archiveFilePerm)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return "", fmt.Errorf("create archive %s: %w", path, err)
		}
		_, werr := f.Write(buf.Bytes())
		cerr := f.Close()
		if werr != nil {
			return "", fmt.Errorf("write archive %s: %w", path, werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("close archive %s: %w", path, cerr)
		}
		return path, nil
	}
	return "", fmt.Errorf("create archive: too many snapshots at %s", stamp)
}

// RemoveArchive deletes one snapshot from the archive dir.
func (s *FileTaskStore) RemoveArchive(path string) error {
	if !IsArchiveName(filepath.Base(path)) || filepath.Clean(filepath.Dir(path)) != filepath.Clean(s.archiveDir) {
		return fmt.Errorf("remove archive %s: not a snapshot in %s", path, s.archiveDir)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("remove archive %s: %w", path, err)
	}
	return nil
}

// ListArchives returns snapshot paths, most recently named first.
func (s *FileTaskStore) ListArchives() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.archiveDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read archive dir %s: %w", s.archiveDir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsArchiveName(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(s.archiveDir, e.Name()))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	return paths, nil
}

// ReadArchive reads one snapshot. A bare JSON array of tasks is accepted as well.
func (s *FileTaskStore) ReadArchive(path string) (models.ArchiveSnapshot, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return models.ArchiveSnapshot{}, fmt.Errorf("read archive %s: %w", path, err)
	}
	return decodeArchive(data, path)
}

func decodeArchive(data []byte, path string) (models.ArchiveSnapshot, error) {
	var snap models.ArchiveSnapshot
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &snap.Tasks); err != nil {
			return models.ArchiveSnapshot{}, fmt.Errorf("parse archive %s: %w", path, err)
		}
		snap.ArchivedAt, _ = ArchiveTime(filepath.Base(path))
		return snap, nil
	}
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return models.ArchiveSnapshot{}, fmt.Errorf("parse archive %s: %w", path, err)
	}
	return snap, nil
}

// PurgeArchives deletes snapshots by age and count. Snapshot age comes from the file name.
func (s *FileTaskStore) PurgeArchives(opts PurgeOptions) (PurgeResult, error) {
	res := PurgeResult{DryRun: opts.DryRun}
	paths, err := s.ListArchives()
	if err != nil {
		return res, err
	}

	var cutoff time.Time
	if opts.OlderThan != nil {
		cutoff = s.now().UTC().Add(-*opts.OlderThan)
	}

	kept := 0
	for _, p := range paths {
		res.FilesConsidered++
		remove := false
		if opts.KeepLast > 0 && kept >= opts.KeepLast {
			remove = true
		}
		if !remove && opts.OlderThan != nil {
			if ts, ok := ArchiveTime(filepath.Base(p)); ok && ts.Before(cutoff) {
				remove = true
			}
		}
		if !remove {
			kept++
			continue
		}

		var size int64
		if fi, err := s.fs.Stat(p); err == nil {
			size = fi.Size()
		}
		if !opts.DryRun {
			if err := s.fs.Remove(p); err != nil {
				return res, fmt.Errorf("remove archive %s: %w", p, err)
			}
		}
		res.FilesDeleted++
		res.BytesFreed += size
		res.Deleted = append(res.Deleted, p)
	}
	return res, nil
}

// IsArchiveName reports whether name looks like a snapshot file.
func IsArchiveName(name string) bool {
	return strings.HasPrefix(name, archivePrefix) && strings.HasSuffix(name, archiveSuffix)
}

// ArchiveTime parses the timestamp embedded in a snapshot file name.
func ArchiveTime(name string) (time.Time, bool) {
	if !IsArchiveName(name) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, archivePrefix), archiveSuffix)
	if len(stamp) > len(archiveStampLayout) {
		stamp = stamp[:len(archiveStampLayout)]
	}
	ts, err := time.Parse(archiveStampLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
