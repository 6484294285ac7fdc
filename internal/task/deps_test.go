package task

import (
	"testing"
	"time"

	"github.com/josephgoksu/tasklane/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id, name string, status models.TaskStatus, deps ...string) models.Task {
	t := models.Task{ID: id, Name: name, Status: status, Dependencies: deps}
	if status == models.StatusCompleted {
		now := time.Now()
		t.CompletedAt = &now
	}
	return t
}

func TestCheckExecutable(t *testing.T) {
	tasks := []models.Task{
		node("done", "Done", models.StatusCompleted),
		node("open", "Open", models.StatusInProgress),
		node("free", "Free", models.StatusPending),
		node("ready", "Ready", models.StatusPending, "done"),
		node("blocked", "Blocked", models.StatusPending, "done", "open", "gone"),
	}

	tests := []struct {
		id        string
		want      bool
		blockedBy []string
	}{
		{id: "missing", want: false},
		{id: "done", want: false},
		{id: "free", want: true},
		{id: "ready", want: true},
		{id: "blocked", want: false, blockedBy: []string{"open", "gone"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := CheckExecutable(tasks, tt.id)
			assert.Equal(t, tt.want, got.CanExecute)
			assert.Equal(t, tt.blockedBy, got.BlockedBy)
		})
	}
}

func TestRepository_CanExecute(t *testing.T) {
	r, _ := newTestRepo(t)
	base := mustCreate(t, r, "Base")
	next := mustCreate(t, r, "Next", base.ID)

	check, err := r.CanExecute(next.ID)
	require.NoError(t, err)
	assert.False(t, check.CanExecute)
	assert.Equal(t, []string{base.ID}, check.BlockedBy)

	mustComplete(t, r, base.ID)
	check, err = r.CanExecute(next.ID)
	require.NoError(t, err)
	assert.True(t, check.CanExecute)
	assert.Empty(t, check.BlockedBy)
}

func TestVerifyDAG_NoCycle(t *testing.T) {
	// A -> B -> C (linear, no cycle)
	tasks := []models.Task{
		node("task-A", "Task A", models.StatusPending),
		node("task-B", "Task B", models.StatusPending, "task-A"),
		node("task-C", "Task C", models.StatusPending, "task-B", "external"),
	}
	if err := VerifyDAG(tasks); err != nil {
		t.Errorf("VerifyDAG() returned error for valid DAG: %v", err)
	}
}

func TestVerifyDAG_WithCycle(t *testing.T) {
	// A -> B -> C -> A (cycle)
	tasks := []models.Task{
		node("task-A", "Task A", models.StatusPending, "task-C"),
		node("task-B", "Task B", models.StatusPending, "task-A"),
		node("task-C", "Task C", models.StatusPending, "task-B"),
	}
	err := VerifyDAG(tasks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Task A")
}

func TestVerifyDAG_SelfDependency(t *testing.T) {
	tasks := []models.Task{node("task-A", "Task A", models.StatusPending, "task-A")}
	assert.Error(t, VerifyDAG(tasks))
}

func TestVerifyDAG_EmptyID(t *testing.T) {
	tasks := []models.Task{{Name: "Task with no ID"}}
	if err := VerifyDAG(tasks); err == nil {
		t.Error("VerifyDAG() should return error for empty ID, got nil")
	}
}

func TestTopologicalSort_DiamondDependencies(t *testing.T) {
	// Diamond: D depends on B and C, B and C both depend on A
	tasks := []models.Task{
		node("task-D", "Task D", models.StatusPending, "task-B", "task-C"),
		node("task-B", "Task B", models.StatusPending, "task-A"),
		node("task-C", "Task C", models.StatusPending, "task-A"),
		node("task-A", "Task A", models.StatusPending),
	}

	sorted, err := TopologicalSort(tasks)
	require.NoError(t, err)
	require.Len(t, sorted, 4)
	assert.Equal(t, "task-A", sorted[0].ID)
	assert.Equal(t, "task-D", sorted[3].ID)
}

func TestTopologicalSort_WithCycle(t *testing.T) {
	tasks := []models.Task{
		node("task-A", "Task A", models.StatusPending, "task-B"),
		node("task-B", "Task B", models.StatusPending, "task-A"),
	}
	_, err := TopologicalSort(tasks)
	assert.Error(t, err)
}
