package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"golang.org/x/text/cases"
)

// archiveGlob matches snapshot files at any depth below the archive dir.
const archiveGlob = "**/" + archivePrefix + "*" + archiveSuffix

// ArchiveMatch is one line of an archive file that matched a scan.
type ArchiveMatch struct {
	Path string
	Line int
	Text string
}

// String renders the match in file:line form.
func (m ArchiveMatch) String() string {
	return fmt.Sprintf("%s:%d", m.Path, m.Line)
}

// ArchiveScanner finds archive lines containing any of a set of terms.
// It is a coarse candidate filter; callers re-check the tasks they read.
type ArchiveScanner struct {
	fs afero.Fs
}

// NewArchiveScanner creates a scanner over fsys. A nil fsys means the OS filesystem.
func NewArchiveScanner(fsys afero.Fs) *ArchiveScanner {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &ArchiveScanner{fs: fsys}
}

// Scan returns every line of every snapshot under dir that contains at least one term,
// compared case-insensitively. A missing dir yields no matches.
func (a *ArchiveScanner) Scan(ctx context.Context, dir string, terms []string) ([]ArchiveMatch, error) {
	folder := cases.Fold()
	var needles []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t == "" {
			continue
		}
		needles = append(needles, folder.String(t))
		// Snapshots are JSON, so quotes and backslashes appear escaped on disk.
		if escaped := jsonEscape(t); escaped != t {
			needles = append(needles, folder.String(escaped))
		}
	}
	if len(needles) == 0 {
		return nil, nil
	}

	if ok, err := afero.DirExists(a.fs, dir); err != nil || !ok {
		return nil, nil
	}

	files, err := doublestar.Glob(afero.NewIOFS(afero.NewBasePathFs(a.fs, dir)), archiveGlob)
	if err != nil {
		return nil, fmt.Errorf("glob archives in %s: %w", dir, err)
	}

	var matches []ArchiveMatch
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, filepath.FromSlash(rel))
		found, err := a.scanFile(path, needles, folder)
		if err != nil {
			return nil, err
		}
		matches = append(matches, found...)
	}
	return matches, nil
}

func (a *ArchiveScanner) scanFile(path string, needles []string, folder cases.Caser) ([]ArchiveMatch, error) {
	f, err := a.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var matches []ArchiveMatch
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		folded := folder.String(text)
		for _, n := range needles {
			if strings.Contains(folded, n) {
				matches = append(matches, ArchiveMatch{Path: path, Line: line, Text: text})
				break
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan archive %s: %w", path, err)
	}
	return matches, nil
}

// jsonEscape returns s as it appears inside a JSON string written by Archive.
func jsonEscape(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return s
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	return strings.TrimSuffix(strings.TrimPrefix(out, `"`), `"`)
}
