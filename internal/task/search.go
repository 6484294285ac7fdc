package task

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/josephgoksu/tasklane/models"
	"github.com/josephgoksu/tasklane/store"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
)

const (
	DefaultPageSize        = 5
	MaxPageSize            = 20
	DefaultMaxArchiveFiles = 5
)

// ArchiveSearcher finds archive lines matching any of the given terms.
type ArchiveSearcher interface {
	Scan(ctx context.Context, dir string, terms []string) ([]store.ArchiveMatch, error)
}

// ArchiveReader loads archive snapshots.
type ArchiveReader interface {
	ArchiveDir() string
	ReadArchive(path string) (models.ArchiveSnapshot, error)
}

// SearchQuery describes a search request.
type SearchQuery struct {
	// Query is either a task id (when IsID is set) or whitespace-separated keywords, all of which must match.
	Query string
	IsID  bool
	// Page is 1-based. Out-of-range values are clamped.
	Page     int
	PageSize int
	// SkipArchived restricts the search to the live collection.
	SkipArchived bool
}

// Hit is one search result.
type Hit struct {
	models.Task
	Archived bool `json:"archived"`
}

// Pagination describes the page returned by Search.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	PageSize     int  `json:"pageSize"`
	TotalPages   int  `json:"totalPages"`
	TotalResults int  `json:"totalResults"`
	HasMore      bool `json:"hasMore"`
}

// SearchResult is one page of ranked hits.
type SearchResult struct {
	Hits       []Hit      `json:"hits"`
	Pagination Pagination `json:"pagination"`
}

// SearchOption configures a Searcher.
type SearchOption func(*Searcher)

// WithMaxArchiveFiles caps how many candidate archive files a search reads.
func WithMaxArchiveFiles(n int) SearchOption {
	return func(s *Searcher) {
		if n > 0 {
			s.maxArchiveFiles = n
		}
	}
}

// WithDefaultPageSize sets the page size used when a query does not specify one.
func WithDefaultPageSize(n int) SearchOption {
	return func(s *Searcher) {
		if n > 0 {
			s.defaultPageSize = n
		}
	}
}

// Searcher queries live and archived tasks.
type Searcher struct {
	repo            *Repository
	archives        ArchiveReader
	scanner         ArchiveSearcher
	maxArchiveFiles int
	defaultPageSize int
}

// NewSearcher creates a searcher. archives or scanner may be nil to search live tasks only.
func NewSearcher(repo *Repository, archives ArchiveReader, scanner ArchiveSearcher, opts ...SearchOption) *Searcher {
	s := &Searcher{
		repo:            repo,
		archives:        archives,
		scanner:         scanner,
		maxArchiveFiles: DefaultMaxArchiveFiles,
		defaultPageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// matcher is the search predicate shared by the live and archive tiers.
type matcher struct {
	id    string
	terms []string
	fold  cases.Caser
}

func newMatcher(q SearchQuery) matcher {
	m := matcher{fold: cases.Fold()}
	if q.IsID {
		m.id = strings.TrimSpace(q.Query)
		return m
	}
	for _, term := range strings.Fields(q.Query) {
		m.terms = append(m.terms, m.fold.String(term))
	}
	return m
}

func (m matcher) empty() bool {
	return m.id == "" && len(m.terms) == 0
}

// scanTerms are the strings handed to the archive scanner to pick candidate files.
func (m matcher) scanTerms() []string {
	if m.id != "" {
		return []string{m.id}
	}
	return m.terms
}

func (m matcher) match(t models.Task) bool {
	if m.id != "" {
		return strings.EqualFold(t.ID, m.id)
	}
	haystack := m.fold.String(strings.Join([]string{
		t.Name, t.Description, t.Notes, t.ImplementationGuide, t.Summary,
	}, "\n"))
	for _, term := range m.terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

// Search matches q against live tasks and the most recent candidate archives, then
// de-duplicates by id (live wins), ranks, and paginates. An empty query matches nothing.
func (s *Searcher) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	m := newMatcher(q)

	var hits []Hit
	if !m.empty() {
		tasks, err := s.repo.GetAll()
		if err != nil {
			return SearchResult{}, err
		}
		seen := make(map[string]bool)
		for _, t := range tasks {
			if m.match(t) {
				hits = append(hits, Hit{Task: t})
				seen[t.ID] = true
			}
		}

		if !q.SkipArchived {
			archived, err := s.searchArchives(ctx, m)
			if err != nil {
				return SearchResult{}, err
			}
			for _, t := range archived {
				if seen[t.ID] {
					continue
				}
				seen[t.ID] = true
				hits = append(hits, Hit{Task: t, Archived: true})
			}
		}
	}

	rankHits(hits)
	return paginate(hits, q.Page, s.pageSize(q.PageSize)), nil
}

func (s *Searcher) pageSize(requested int) int {
	size := requested
	if size <= 0 {
		size = s.defaultPageSize
	}
	return min(max(size, 1), MaxPageSize)
}

// searchArchives reads the newest candidate archive files in parallel and returns their matching
// tasks, newest file first. Unreadable archives are logged and skipped.
func (s *Searcher) searchArchives(ctx context.Context, m matcher) ([]models.Task, error) {
	if s.scanner == nil || s.archives == nil {
		return nil, nil
	}
	matches, err := s.scanner.Scan(ctx, s.archives.ArchiveDir(), m.scanTerms())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Warn("archive scan failed; searching live tasks only", "error", err)
		return nil, nil
	}

	candidates := candidateFiles(matches, s.maxArchiveFiles)
	if len(candidates) == 0 {
		return nil, nil
	}

	found := make([][]models.Task, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			snap, err := s.archives.ReadArchive(path)
			if err != nil {
				slog.Warn("skipping unreadable archive", "path", path, "error", err)
				return nil
			}
			// Each goroutine needs its own caser.
			local := m
			local.fold = cases.Fold()
			for _, t := range snap.Tasks {
				if local.match(t) {
					found[i] = append(found[i], t)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search archives: %w", err)
	}

	var out []models.Task
	for _, ts := range found {
		out = append(out, ts...)
	}
	return out, nil
}

// candidateFiles returns the distinct matched paths, sorted by file name descending, capped at limit.
func candidateFiles(matches []store.ArchiveMatch, limit int) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, m := range matches {
		if !seen[m.Path] {
			seen[m.Path] = true
			paths = append(paths, m.Path)
		}
	}
	sort.SliceStable(paths, func(i, j int) bool {
		bi, bj := filepath.Base(paths[i]), filepath.Base(paths[j])
		if bi != bj {
			return bi > bj
		}
		return paths[i] > paths[j]
	})
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}
	return paths
}

// rankHits orders completed tasks first (newest completion first), then the rest by newest update.
func rankHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		return rankBefore(hits[i].Task, hits[j].Task)
	})
}

func rankBefore(a, b models.Task) bool {
	switch {
	case a.CompletedAt != nil && b.CompletedAt == nil:
		return true
	case a.CompletedAt == nil && b.CompletedAt != nil:
		return false
	case a.CompletedAt != nil && b.CompletedAt != nil:
		return a.CompletedAt.After(*b.CompletedAt)
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}

func paginate(hits []Hit, page, pageSize int) SearchResult {
	total := len(hits)
	totalPages := (total + pageSize - 1) / pageSize
	page = min(max(page, 1), max(totalPages, 1))

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)
	pageHits := hits[start:end]
	if pageHits == nil {
		pageHits = []Hit{}
	}
	return SearchResult{
		Hits: pageHits,
		Pagination: Pagination{
			CurrentPage:  page,
			PageSize:     pageSize,
			TotalPages:   totalPages,
			TotalResults: total,
			HasMore:      page < totalPages,
		},
	}
}
