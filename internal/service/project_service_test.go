package service

import (
	"errors"
	"testing"

	"github.com/horizon/internal/db"
)

func TestProjectServiceScopesByUser(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewProjectService(gdb)

	if _, err := svc.Create(1, ProjectInput{Name: "   "}); !errors.Is(err, ErrProjectNameRequired) {
		t.Fatalf("expected ErrProjectNameRequired, got %v", err)
	}

	work, err := svc.Create(1, ProjectInput{Name: " Work ", Color: "#83a598"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if work.Name != "Work" {
		t.Fatalf("expected trimmed name, got %q", work.Name)
	}
	if _, err := svc.Create(1, ProjectInput{Name: "Archive", Archived: true}); err != nil {
		t.Fatalf("Create archived returned error: %v", err)
	}

	if _, err := svc.Get(2, work.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected other user to get ErrProjectNotFound, got %v", err)
	}

	active, err := svc.List(1, false)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(active) != 1 || active[0].ID != work.ID {
		t.Fatalf("expected only the active project, got %+v", active)
	}

	all, err := svc.List(1, true)
	if err != nil {
		t.Fatalf("List(includeArchived) returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(all))
	}

	updated, err := svc.Update(1, work.ID, ProjectInput{Name: "Day job", Archived: true})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "Day job" || !updated.Archived {
		t.Fatalf("unexpected updated project %+v", updated)
	}
}

func TestProjectDeleteDetachesTasks(t *testing.T) {
	gdb := setupServiceTestDB(t)
	projects := NewProjectService(gdb)
	tasks := NewTaskService(gdb)
	now := mustParseTime(t, "2026-10-18T09:00:00Z")

	project, err := projects.Create(1, ProjectInput{Name: "Home"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	task, err := tasks.Create(1, TaskInput{Title: "Fix sink", ProjectID: &project.ID}, now)
	if err != nil {
		t.Fatalf("task Create returned error: %v", err)
	}

	if err := projects.Delete(1, project.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := projects.Delete(1, project.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected second delete to return ErrProjectNotFound, got %v", err)
	}

	var reloaded db.Task
	if err := gdb.First(&reloaded, task.ID).Error; err != nil {
		t.Fatalf("task should survive project deletion: %v", err)
	}
	if reloaded.ProjectID != nil {
		t.Fatalf("expected task to be detached, got project %d", *reloaded.ProjectID)
	}
}
