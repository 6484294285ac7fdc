package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/josephgoksu/tasklane/models"
)

// ExecutionCheck reports whether a task may start and, if not, which dependencies are unmet.
type ExecutionCheck struct {
	CanExecute bool     `json:"canExecute"`
	BlockedBy  []string `json:"blockedBy,omitempty"`
}

// CanExecute reports whether the task with id is ready to run: it exists, is not
// completed, and every dependency resolves to a completed task.
func (r *Repository) CanExecute(id string) (ExecutionCheck, error) {
	tasks, err := r.GetAll()
	if err != nil {
		return ExecutionCheck{}, err
	}
	return CheckExecutable(tasks, id), nil
}

// CheckExecutable is the pure form of CanExecute over a loaded collection.
func CheckExecutable(tasks []models.Task, id string) ExecutionCheck {
	i := indexOf(tasks, id)
	if i < 0 || tasks[i].IsCompleted() {
		return ExecutionCheck{}
	}
	deps := tasks[i].Dependencies
	if len(deps) == 0 {
		return ExecutionCheck{CanExecute: true}
	}

	var blocked []string
	for _, dep := range deps {
		j := indexOf(tasks, dep)
		if j < 0 || !tasks[j].IsCompleted() {
			blocked = append(blocked, dep)
		}
	}
	return ExecutionCheck{CanExecute: len(blocked) == 0, BlockedBy: blocked}
}

// VerifyDAG checks that the dependency edges between tasks form a Directed Acyclic Graph.
// Edges to ids outside the set are ignored.
func VerifyDAG(tasks []models.Task) error {
	taskMap := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			return errors.New("task ID cannot be empty")
		}
		taskMap[t.ID] = t
	}

	visited := make(map[string]bool)
	recursionStack := make(map[string]bool)
	var path []string

	var checkCycle func(taskID string) error
	checkCycle = func(taskID string) error {
		visited[taskID] = true
		recursionStack[taskID] = true
		path = append(path, taskID)

		task, exists := taskMap[taskID]
		if !exists {
			recursionStack[taskID] = false
			path = path[:len(path)-1]
			return nil
		}

		for _, depID := range task.Dependencies {
			if !visited[depID] {
				if err := checkCycle(depID); err != nil {
					return err
				}
			} else if recursionStack[depID] {
				return fmt.Errorf("cycle detected: %s", describeCycle(taskMap, path, depID))
			}
		}

		recursionStack[taskID] = false
		path = path[:len(path)-1]
		return nil
	}

	for _, t := range tasks {
		if !visited[t.ID] {
			if err := checkCycle(t.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// describeCycle renders the cycle that closes at id as "A -> B -> A" using task names.
func describeCycle(taskMap map[string]models.Task, path []string, id string) string {
	start := 0
	for i, p := range path {
		if p == id {
			start = i
			break
		}
	}
	names := make([]string, 0, len(path)-start+1)
	for _, p := range append(path[start:], id) {
		if t, ok := taskMap[p]; ok && t.Name != "" {
			names = append(names, t.Name)
		} else {
			names = append(names, p)
		}
	}
	return strings.Join(names, " -> ")
}

// TopologicalSort returns tasks in dependency order (dependencies first).
// Returns error if cycle detected.
func TopologicalSort(tasks []models.Task) ([]models.Task, error) {
	if err := VerifyDAG(tasks); err != nil {
		return nil, err
	}

	taskMap := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		taskMap[t.ID] = t
	}

	sorted := make([]models.Task, 0, len(tasks))
	visited := make(map[string]bool)

	var visit func(taskID string)
	visit = func(taskID string) {
		if visited[taskID] {
			return
		}
		visited[taskID] = true

		t, exists := taskMap[taskID]
		if !exists {
			return
		}
		for _, depID := range t.Dependencies {
			visit(depID)
		}
		sorted = append(sorted, t)
	}

	for _, t := range tasks {
		visit(t.ID)
	}
	return sorted, nil
}
