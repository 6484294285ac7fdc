package task

import (
	"errors"
	"testing"
	"time"

	"github.com/josephgoksu/tasklane/models"
	"github.com/josephgoksu/tasklane/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock advances one minute on every call so timestamps are strictly ordered.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestRepo(t *testing.T, opts ...Option) (*Repository, *store.FileTaskStore) {
	t.Helper()
	clock := &testClock{t: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
	s, err := store.NewFileTaskStore(store.Options{
		Fs:       afero.NewMemMapFs(),
		DataFile: "/data/tasks.json",
		Now:      clock.Now,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewRepository(s, append([]Option{WithClock(clock.Now)}, opts...)...), s
}

func mustCreate(t *testing.T, r *Repository, name string, deps ...string) models.Task {
	t.Helper()
	created, err := r.Create(CreateParams{Name: name, Description: name + " description", Dependencies: deps})
	require.NoError(t, err)
	require.NotNil(t, created)
	return *created
}

func mustComplete(t *testing.T, r *Repository, id string) models.Task {
	t.Helper()
	res, err := r.SetStatus(id, models.StatusCompleted)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	return *res.Task
}

func assertCompletedAtInvariant(t *testing.T, r *Repository) {
	t.Helper()
	tasks, err := r.GetAll()
	require.NoError(t, err)
	for _, task := range tasks {
		assert.Equal(t, task.Status == models.StatusCompleted, task.CompletedAt != nil,
			"task %q: status %s, completedAt %v", task.Name, task.Status, task.CompletedAt)
	}
}

func TestRepository_Create(t *testing.T) {
	r, _ := newTestRepo(t)

	base := mustCreate(t, r, "Set up schema")
	created := mustCreate(t, r, "Write migrations", base.ID, "6ba7b810-9dad-41d1-80b4-00c04fd430c8", base.ID)

	assert.Equal(t, models.StatusPending, created.Status)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))
	assert.Nil(t, created.CompletedAt)
	assert.Equal(t, []string{base.ID}, created.Dependencies, "dangling and duplicate ids are dropped")

	got, err := r.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.Name, got.Name)

	_, err = r.Create(CreateParams{Name: "  ", Description: "no name"})
	assert.True(t, errors.Is(err, ErrInvalidTask))
}

func TestRepository_GetByIDMissing(t *testing.T) {
	r, _ := newTestRepo(t)
	got, err := r.GetByID("6ba7b810-9dad-41d1-80b4-00c04fd430c8")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_UpdateNotFound(t *testing.T) {
	r, _ := newTestRepo(t)
	name := "x"
	res, err := r.Update("missing", Patch{Name: &name})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ReasonNotFound, res.Reason)
}

func TestRepository_UpdateBumpsUpdatedAt(t *testing.T) {
	r, _ := newTestRepo(t)
	created := mustCreate(t, r, "Draft")

	desc := "Refined description"
	res, err := r.Update(created.ID, Patch{Description: &desc})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, desc, res.Task.Description)
	assert.True(t, res.Task.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, res.Task.CreatedAt.Equal(created.CreatedAt))
}

func TestRepository_CompletedTaskIsLocked(t *testing.T) {
	r, _ := newTestRepo(t)
	created := mustCreate(t, r, "Ship it")
	mustComplete(t, r, created.ID)

	desc := "changed"
	notes := "late notes"
	pending := models.StatusPending
	for name, patch := range map[string]Patch{
		"description": {Description: &desc},
		"notes":       {Notes: &notes},
		"status":      {Status: &pending},
		"mixed":       {Description: &desc, Summary: &notes},
	} {
		t.Run(name, func(t *testing.T) {
			res, err := r.Update(created.ID, patch)
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.Equal(t, ReasonForbidden, res.Reason)
		})
	}

	res, err := r.UpdateSummary(created.ID, "Shipped behind a flag")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Shipped behind a flag", res.Task.Summary)

	files := []models.RelatedFile{{Path: "cmd/root.go", Type: models.FileReference}}
	res, err = r.UpdateRelatedFiles(created.ID, files)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, files, res.Task.RelatedFiles)

	got, err := r.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ship it description", got.Description)
	assertCompletedAtInvariant(t, r)
}

func TestRepository_SetStatus(t *testing.T) {
	r, _ := newTestRepo(t)
	created := mustCreate(t, r, "Investigate")

	res, err := r.SetStatus(created.ID, models.StatusInProgress)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Nil(t, res.Task.CompletedAt)

	done := mustComplete(t, r, created.ID)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.CompletedAt.Equal(done.UpdatedAt))
	assertCompletedAtInvariant(t, r)
}

func TestRepository_Complete(t *testing.T) {
	r, _ := newTestRepo(t)
	created := mustCreate(t, r, "Write docs")

	res, err := r.Complete(created.ID, "Docs published")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, models.StatusCompleted, res.Task.Status)
	assert.Equal(t, "Docs published", res.Task.Summary)

	res, err = r.Complete(created.ID, "again")
	require.NoError(t, err)
	assert.Equal(t, ReasonForbidden, res.Reason)
}

func TestRepository_DeleteBlockedByDependents(t *testing.T) {
	r, _ := newTestRepo(t)
	base := mustCreate(t, r, "Base")
	a := mustCreate(t, r, "Dependent A", base.ID)
	b := mustCreate(t, r, "Dependent B", base.ID)
	mustCreate(t, r, "Unrelated")

	res, err := r.Delete(base.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ReasonForbidden, res.Reason)
	assert.ElementsMatch(t, []Blocker{{ID: a.ID, Name: a.Name}, {ID: b.ID, Name: b.Name}}, res.Blockers)
	assert.Contains(t, res.Message, a.Name)
	assert.Contains(t, res.Message, b.ID)

	res, err = r.Delete(a.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	got, err := r.GetByID(a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_DeleteCompletedForbidden(t *testing.T) {
	r, _ := newTestRepo(t)
	created := mustCreate(t, r, "Done already")
	mustComplete(t, r, created.ID)

	res, err := r.Delete(created.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonForbidden, res.Reason)

	res, err = r.Delete("missing")
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, res.Reason)
}

func TestRepository_ClearAll(t *testing.T) {
	r, s := newTestRepo(t)
	done := mustCreate(t, r, "Finished")
	mustComplete(t, r, done.ID)
	mustCreate(t, r, "Open")

	res, err := r.ClearAll()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Removed)
	assert.Equal(t, 1, res.Archived)
	require.NotEmpty(t, res.ArchivePath)

	snap, err := s.ReadArchive(res.ArchivePath)
	require.NoError(t, err)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, done.ID, snap.Tasks[0].ID)

	tasks, err := r.GetAll()
	require.NoError(t, err)
	assert.Empty(t, tasks)

	res, err = r.ClearAll()
	require.NoError(t, err)
	assert.Empty(t, res.ArchivePath, "nothing completed, nothing archived")
}

func TestRepository_ListByStatus(t *testing.T) {
	r, _ := newTestRepo(t)
	a := mustCreate(t, r, "A")
	mustCreate(t, r, "B")
	mustComplete(t, r, a.ID)

	done, err := r.ListByStatus(models.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, a.ID, done[0].ID)

	pending, err := r.ListByStatus(models.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRepository_CycleCheck(t *testing.T) {
	t.Run("disabled allows cycles", func(t *testing.T) {
		r, _ := newTestRepo(t)
		a := mustCreate(t, r, "A")
		b := mustCreate(t, r, "B", a.ID)
		deps := []string{b.ID}
		res, err := r.Update(a.ID, Patch{Dependencies: &deps})
		require.NoError(t, err)
		assert.True(t, res.Success)
	})

	t.Run("enabled rejects cycles", func(t *testing.T) {
		r, _ := newTestRepo(t, WithCycleCheck(true))
		a := mustCreate(t, r, "A")
		b := mustCreate(t, r, "B", a.ID)
		deps := []string{b.ID}
		_, err := r.Update(a.ID, Patch{Dependencies: &deps})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDependencyCycle))

		got, err := r.GetByID(a.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Dependencies, "rejected update is not persisted")
	})
}

func TestRepository_StaleWriterFailsFast(t *testing.T) {
	r, s := newTestRepo(t)
	mustCreate(t, r, "A")

	doc, err := s.Load()
	require.NoError(t, err)

	mustCreate(t, r, "B")

	doc.Tasks = doc.Tasks[:0]
	_, err = s.Save(doc, "stale clear")
	assert.True(t, errors.Is(err, store.ErrVersionConflict))

	tasks, err := r.GetAll()
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}
