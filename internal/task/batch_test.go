package task

import (
	"errors"
	"testing"

	"github.com/josephgoksu/tasklane/models"
	"github.com/josephgoksu/tasklane/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specs(names ...string) []Spec {
	out := make([]Spec, len(names))
	for i, n := range names {
		out[i] = Spec{Name: n, Description: n + " from plan"}
	}
	return out
}

// seed creates tasks Done (completed), Open (pending) and Busy (in progress).
func seed(t *testing.T, r *Repository) (done, open, busy models.Task) {
	t.Helper()
	done = mustCreate(t, r, "Done")
	done = mustComplete(t, r, done.ID)
	open = mustCreate(t, r, "Open")
	busy = mustCreate(t, r, "Busy")
	res, err := r.SetStatus(busy.ID, models.StatusInProgress)
	require.NoError(t, err)
	return done, open, *res.Task
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("ClearAllTasks")
	require.NoError(t, err)
	assert.Equal(t, ModeClearAll, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAppend, m)

	_, err = ParseMode("replace")
	assert.Error(t, err)
}

func TestBatchMerge_Append(t *testing.T) {
	r, _ := newTestRepo(t)
	seed(t, r)

	res, err := r.BatchMerge(specs("X", "Y"), ModeAppend, "")
	require.NoError(t, err)
	assert.Len(t, res.Tasks, 2, "only new tasks are returned")

	all, err := r.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 3+2)
	for _, nt := range res.Tasks {
		assert.Equal(t, models.StatusPending, nt.Status)
	}
}

func TestBatchMerge_Overwrite(t *testing.T) {
	r, _ := newTestRepo(t)
	done, _, _ := seed(t, r)

	_, err := r.BatchMerge(specs("X"), ModeOverwrite, "")
	require.NoError(t, err)

	all, err := r.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	var survivors []string
	for _, task := range all {
		if task.Name != "X" {
			survivors = append(survivors, task.ID)
		}
	}
	assert.Equal(t, []string{done.ID}, survivors)
}

func TestBatchMerge_OverwritePrunesDanglingDependencies(t *testing.T) {
	r, _ := newTestRepo(t)
	base := mustComplete(t, r, mustCreate(t, r, "Base").ID)
	open := mustCreate(t, r, "Open")
	done := mustCreate(t, r, "Done", base.ID, open.ID)
	done = mustComplete(t, r, done.ID)
	require.Equal(t, []string{base.ID, open.ID}, done.Dependencies)

	_, err := r.BatchMerge(specs("X"), ModeOverwrite, "")
	require.NoError(t, err)

	kept, err := r.GetByID(done.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, []string{base.ID}, kept.Dependencies, "dependency on the discarded task is removed")
	assert.Equal(t, models.StatusCompleted, kept.Status)
}

func TestBatchMerge_Selective(t *testing.T) {
	r, _ := newTestRepo(t)
	done, open, busy := seed(t, r)

	in := []Spec{
		{Name: "Open", Description: "Rewritten description", Notes: "new notes"},
		{Name: "Busy", Description: "Busy, revised"},
		{Name: "Done", Description: "Should not touch the completed task"},
		{Name: "Fresh", Description: "Brand new"},
	}
	res, err := r.BatchMerge(in, ModeSelective, "shared analysis")
	require.NoError(t, err)
	require.Len(t, res.Tasks, 4)

	updated := res.Tasks[0]
	assert.Equal(t, open.ID, updated.ID)
	assert.True(t, updated.CreatedAt.Equal(open.CreatedAt))
	assert.Equal(t, "Rewritten description", updated.Description)
	assert.Equal(t, "new notes", updated.Notes)
	assert.Equal(t, "shared analysis", updated.AnalysisResult)
	assert.Equal(t, models.StatusPending, updated.Status)

	assert.Equal(t, busy.ID, res.Tasks[1].ID)
	assert.Equal(t, models.StatusInProgress, res.Tasks[1].Status, "status is preserved")

	assert.NotEqual(t, done.ID, res.Tasks[2].ID, "completed namesake becomes a new task")

	all, err := r.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 5)
	byID := map[string]models.Task{}
	for _, task := range all {
		byID[task.ID] = task
	}
	assert.Equal(t, "Done description", byID[done.ID].Description)
	assertCompletedAtInvariant(t, r)
}

func TestBatchMerge_ClearAllArchivesCompleted(t *testing.T) {
	r, s := newTestRepo(t)
	done, _, _ := seed(t, r)

	res, err := r.BatchMerge(specs("X", "Y"), ModeClearAll, "")
	require.NoError(t, err)
	require.NotEmpty(t, res.ArchivePath)

	all, err := r.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.ElementsMatch(t, []string{res.Tasks[0].ID, res.Tasks[1].ID}, []string{all[0].ID, all[1].ID})

	snap, err := s.ReadArchive(res.ArchivePath)
	require.NoError(t, err)
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, done.ID, snap.Tasks[0].ID)
}

func TestBatchMerge_DependencyResolution(t *testing.T) {
	r, _ := newTestRepo(t)
	done, _, _ := seed(t, r)

	in := []Spec{
		{Name: "Second", Description: "d", Dependencies: []string{"First", "Done", "Nobody", "6ba7b810-9dad-41d1-80b4-00c04fd430c8"}},
		{Name: "First", Description: "d", Dependencies: []string{done.ID, "First"}},
	}
	res, err := r.BatchMerge(in, ModeAppend, "")
	require.NoError(t, err)
	require.Len(t, res.Tasks, 2)

	second, first := res.Tasks[0], res.Tasks[1]
	assert.Equal(t, []string{first.ID, done.ID}, second.Dependencies, "names resolve in both directions")
	assert.Equal(t, []string{done.ID, first.ID}, first.Dependencies)

	require.Len(t, res.Warnings, 2)
	assert.Equal(t, DroppedDependency{TaskName: "Second", Token: "Nobody", Reason: "no task with this name"}, res.Warnings[0])
	assert.Equal(t, "6ba7b810-9dad-41d1-80b4-00c04fd430c8", res.Warnings[1].Token)
}

func TestBatchMerge_IDTokenMustBeInMergedSet(t *testing.T) {
	r, _ := newTestRepo(t)
	_, open, _ := seed(t, r)

	res, err := r.BatchMerge([]Spec{{Name: "X", Description: "d", Dependencies: []string{open.ID}}}, ModeOverwrite, "")
	require.NoError(t, err)
	assert.Empty(t, res.Tasks[0].Dependencies, "id of a discarded task is dropped")
	assert.Len(t, res.Warnings, 1)
}

func TestBatchMerge_InvalidInput(t *testing.T) {
	r, _ := newTestRepo(t)

	_, err := r.BatchMerge([]Spec{{Name: "No description"}}, ModeAppend, "")
	assert.True(t, errors.Is(err, ErrInvalidTask))

	_, err = r.BatchMerge(specs("X"), Mode("replace"), "")
	assert.Error(t, err)

	all, err := r.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBatchMerge_CycleCheck(t *testing.T) {
	r, _ := newTestRepo(t, WithCycleCheck(true))
	in := []Spec{
		{Name: "A", Description: "d", Dependencies: []string{"B"}},
		{Name: "B", Description: "d", Dependencies: []string{"A"}},
	}
	_, err := r.BatchMerge(in, ModeAppend, "")
	assert.True(t, errors.Is(err, ErrDependencyCycle))
}

// failingSaveStore rejects every Save as a stale writer would.
type failingSaveStore struct {
	*store.FileTaskStore
}

func (f failingSaveStore) Save(models.TaskDocument, string) (models.TaskDocument, error) {
	return models.TaskDocument{}, store.ErrVersionConflict
}

func TestBatchMerge_RejectedClearAllLeavesNoArchive(t *testing.T) {
	r, s := newTestRepo(t, WithCycleCheck(true))
	seed(t, r)

	in := []Spec{
		{Name: "A", Description: "d", Dependencies: []string{"B"}},
		{Name: "B", Description: "d", Dependencies: []string{"A"}},
	}
	_, err := r.BatchMerge(in, ModeClearAll, "")
	require.True(t, errors.Is(err, ErrDependencyCycle))

	archives, err := s.ListArchives()
	require.NoError(t, err)
	assert.Empty(t, archives)

	all, err := r.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 3, "live collection is unchanged")
}

func TestBatchMerge_FailedSaveRemovesArchive(t *testing.T) {
	r, s := newTestRepo(t)
	seed(t, r)

	failing := NewRepository(failingSaveStore{s})
	_, err := failing.BatchMerge(specs("X"), ModeClearAll, "")
	require.True(t, errors.Is(err, store.ErrVersionConflict))

	_, err = failing.ClearAll()
	require.True(t, errors.Is(err, store.ErrVersionConflict))

	archives, err := s.ListArchives()
	require.NoError(t, err)
	assert.Empty(t, archives)

	res, err := r.ClearAll()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Archived)
	archives, err = s.ListArchives()
	require.NoError(t, err)
	assert.Len(t, archives, 1, "the next successful clear archives exactly once")
}
