package task

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/josephgoksu/tasklane/models"
	"github.com/josephgoksu/tasklane/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC)
}

func taskAt(name, desc string, updated time.Time, completed *time.Time) models.Task {
	t := models.NewTask(name, desc, updated)
	if completed != nil {
		t.Status = models.StatusCompleted
		t.CompletedAt = completed
	}
	return t
}

func saveTasks(t *testing.T, s store.TaskStore, tasks ...models.Task) {
	t.Helper()
	doc, err := s.Load()
	require.NoError(t, err)
	doc.Tasks = append(doc.Tasks, tasks...)
	_, err = s.Save(doc, "seed")
	require.NoError(t, err)
}

func ptr(t time.Time) *time.Time { return &t }

func hitNames(res SearchResult) []string {
	names := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		names[i] = h.Name
	}
	return names
}

// fakeScanner returns fixed matches and records the terms it was asked for.
type fakeScanner struct {
	matches []store.ArchiveMatch
	err     error
	terms   []string
}

func (f *fakeScanner) Scan(_ context.Context, _ string, terms []string) ([]store.ArchiveMatch, error) {
	f.terms = terms
	return f.matches, f.err
}

func TestSearch_RankingOrder(t *testing.T) {
	r, s := newTestRepo(t)
	saveTasks(t, s,
		taskAt("C report", "report", day(5), nil),
		taskAt("B report", "report", day(1), ptr(day(1))),
		taskAt("A report", "report", day(2), ptr(day(2))),
		taskAt("D report", "report", day(3), nil),
	)

	res, err := NewSearcher(r, nil, nil).Search(context.Background(), SearchQuery{Query: "report", PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"A report", "B report", "C report", "D report"}, hitNames(res))
}

func TestSearch_PageClamping(t *testing.T) {
	r, s := newTestRepo(t)
	saveTasks(t, s,
		taskAt("one", "match", day(1), nil),
		taskAt("two", "match", day(2), nil),
		taskAt("three", "match", day(3), nil),
	)
	searcher := NewSearcher(r, nil, nil)

	res, err := searcher.Search(context.Background(), SearchQuery{Query: "match", Page: 99, PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, Pagination{CurrentPage: 1, PageSize: 5, TotalPages: 1, TotalResults: 3, HasMore: false}, res.Pagination)
	assert.Len(t, res.Hits, 3)

	res, err = searcher.Search(context.Background(), SearchQuery{Query: "match", Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.True(t, res.Pagination.HasMore)
	assert.Equal(t, 2, res.Pagination.TotalPages)

	res, err = searcher.Search(context.Background(), SearchQuery{Query: "match", Page: -3, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.CurrentPage)
	assert.Equal(t, MaxPageSize, res.Pagination.PageSize)

	res, err = searcher.Search(context.Background(), SearchQuery{Query: "nothing-matches"})
	require.NoError(t, err)
	assert.Equal(t, Pagination{CurrentPage: 1, PageSize: DefaultPageSize, TotalPages: 0, TotalResults: 0}, res.Pagination)
	assert.Empty(t, res.Hits)
}

func TestSearch_KeywordsAreCaseInsensitiveAND(t *testing.T) {
	r, s := newTestRepo(t)
	guide := taskAt("Cache layer", "Add caching", day(1), nil)
	guide.ImplementationGuide = "Use an LRU in front of the Database"
	summary := taskAt("Cleanup", "Remove dead code", day(2), ptr(day(2)))
	summary.Summary = "database code removed"
	saveTasks(t, s, guide, summary, taskAt("Other", "database only", day(3), nil))

	res, err := NewSearcher(r, nil, nil).Search(context.Background(), SearchQuery{Query: "DATABASE  code"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cleanup"}, hitNames(res))

	res, err = NewSearcher(r, nil, nil).Search(context.Background(), SearchQuery{Query: "lru database"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cache layer"}, hitNames(res))
}

func TestSearch_ByID(t *testing.T) {
	r, s := newTestRepo(t)
	target := taskAt("Target", "x", day(1), nil)
	saveTasks(t, s, target, taskAt("Other", target.ID, day(2), nil))

	res, err := NewSearcher(r, nil, nil).Search(context.Background(), SearchQuery{Query: target.ID, IsID: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Target"}, hitNames(res))
}

func TestSearch_ArchiveTier(t *testing.T) {
	r, s := newTestRepo(t)
	live := taskAt("Deploy pipeline", "live copy", day(1), ptr(day(1)))
	saveTasks(t, s, live)

	stale := live
	stale.Description = "archived copy"
	older := taskAt("Deploy docs", "deploy docs", day(4), ptr(day(4)))
	path, err := s.Archive([]models.Task{stale, older, taskAt("Unrelated", "x", day(1), ptr(day(1)))})
	require.NoError(t, err)

	searcher := NewSearcher(r, s, store.NewArchiveScanner(s.Fs()))
	res, err := searcher.Search(context.Background(), SearchQuery{Query: "deploy"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "Deploy docs", res.Hits[0].Name)
	assert.True(t, res.Hits[0].Archived)
	assert.Equal(t, "live copy", res.Hits[1].Description, "live record wins over archive")
	assert.False(t, res.Hits[1].Archived)

	res, err = searcher.Search(context.Background(), SearchQuery{Query: "deploy", SkipArchived: true})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 1)
	assert.NotEmpty(t, path)
}

func TestSearch_ReadsOnlyNewestArchiveFiles(t *testing.T) {
	r, s := newTestRepo(t)

	var matches []store.ArchiveMatch
	for i := 1; i <= 7; i++ {
		p, err := s.Archive([]models.Task{taskAt(fmt.Sprintf("Deploy %d", i), "deploy", day(i), ptr(day(i)))})
		require.NoError(t, err)
		matches = append(matches, store.ArchiveMatch{Path: p, Line: 3}, store.ArchiveMatch{Path: p, Line: 9})
	}

	scanner := &fakeScanner{matches: matches}
	searcher := NewSearcher(r, s, scanner, WithMaxArchiveFiles(5))
	res, err := searcher.Search(context.Background(), SearchQuery{Query: "Deploy", PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, []string{"deploy"}, scanner.terms)
	assert.Equal(t, []string{"Deploy 7", "Deploy 6", "Deploy 5", "Deploy 4", "Deploy 3"}, hitNames(res))
}

func TestSearch_ScannerFailureFallsBackToLive(t *testing.T) {
	r, s := newTestRepo(t)
	saveTasks(t, s, taskAt("Deploy", "live", day(1), nil))

	searcher := NewSearcher(r, s, &fakeScanner{err: errors.New("boom")})
	res, err := searcher.Search(context.Background(), SearchQuery{Query: "deploy"})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 1)
}

func TestSearch_EmptyQueryMatchesNothing(t *testing.T) {
	r, s := newTestRepo(t)
	saveTasks(t, s, taskAt("Deploy", "live", day(1), nil))

	res, err := NewSearcher(r, nil, nil).Search(context.Background(), SearchQuery{Query: "   "})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.Equal(t, 1, res.Pagination.CurrentPage)
}
