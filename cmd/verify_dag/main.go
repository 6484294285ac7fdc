package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/store"
)

func main() {
	// Setup temporary data dir
	tmpDir, err := os.MkdirTemp("", "tasklane-dag")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	s, err := store.NewFileTaskStore(store.Options{DataFile: filepath.Join(tmpDir, "tasks.json")})
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()
	repo := task.NewRepository(s, task.WithCycleCheck(true))

	// C depends on A and B, B depends on A. Names resolve within the batch.
	fmt.Println("Merging batch with dependencies: C->(A,B), B->A")
	res, err := repo.BatchMerge([]task.Spec{
		{Name: "Task C (Assembly)", Description: "Put it together", Dependencies: []string{"Task A (Engine)", "Task B (Fuselage)"}},
		{Name: "Task B (Fuselage)", Description: "Build body", Dependencies: []string{"Task A (Engine)"}},
		{Name: "Task A (Engine)", Description: "Build engine"},
	}, task.ModeAppend, "")
	if err != nil {
		log.Fatalf("BatchMerge failed: %v", err)
	}
	if len(res.Warnings) > 0 {
		log.Fatalf("Expected every dependency to resolve, dropped %v", res.Warnings)
	}

	ids := make(map[string]string)
	for _, t := range res.Tasks {
		ids[t.Name] = t.ID
		fmt.Printf("Task %s (%s): Deps=%v\n", t.ID, t.Name, t.Dependencies)
	}
	a, b, c := ids["Task A (Engine)"], ids["Task B (Fuselage)"], ids["Task C (Assembly)"]

	tasks, err := repo.GetAll()
	if err != nil {
		log.Fatalf("GetAll failed: %v", err)
	}
	if err := task.VerifyDAG(tasks); err != nil {
		log.Fatalf("VerifyDAG failed: %v", err)
	}

	// Verify Logic: Topological Sort
	fmt.Println("Running Topological Sort...")
	sorted, err := task.TopologicalSort(tasks)
	if err != nil {
		log.Fatalf("TopologicalSort failed: %v", err)
	}
	for i, t := range sorted {
		fmt.Printf("%d: %s\n", i, t.Name)
	}
	if sorted[0].ID != a || sorted[1].ID != b || sorted[2].ID != c {
		log.Fatalf("Expected order A, B, C")
	}

	// Only A is ready until it completes.
	if check, _ := repo.CanExecute(b); check.CanExecute {
		log.Fatalf("Task B should be blocked by A")
	}
	if _, err := repo.Complete(a, "engine built"); err != nil {
		log.Fatalf("Complete failed: %v", err)
	}
	if check, _ := repo.CanExecute(b); !check.CanExecute {
		log.Fatalf("Task B should be ready, blocked by %v", check.BlockedBy)
	}

	// Completed tasks are locked and back-edges are rejected with the cycle check on.
	deps := []string{c}
	if res, err := repo.Update(a, task.Patch{Dependencies: &deps}); err != nil || res.Success {
		log.Fatalf("Expected completed task A to refuse edits, got %+v, %v", res, err)
	}
	bDeps := []string{a, c}
	if _, err := repo.Update(b, task.Patch{Dependencies: &bDeps}); err == nil {
		log.Fatalf("Expected cycle B->C->B to be rejected")
	}

	fmt.Println("SUCCESS: DAG Support Verified!")
}
