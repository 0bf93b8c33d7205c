package service

import (
	"errors"
	"testing"
	"time"

	"github.com/horizon/internal/db"
)

func TestTaskCreateIsIdempotentOnClientID(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewTaskService(gdb)
	now := mustParseTime(t, "2026-10-18T09:00:00Z")

	input := TaskInput{ClientID: "5f0c7f4e-8a7a-4a64-b6f4-0d2f8f1e0a11", Title: "  Write report  "}
	first, err := svc.Create(1, input, now)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if first.Title != "Write report" {
		t.Fatalf("expected trimmed title, got %q", first.Title)
	}
	if first.Status != db.TaskStatusTodo || first.Priority != db.TaskPriorityMedium {
		t.Fatalf("expected defaults TODO/MEDIUM, got %s/%s", first.Status, first.Priority)
	}

	second, err := svc.Create(1, input, now)
	if err != nil {
		t.Fatalf("second Create returned error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected replayed create to return task %d, got %d", first.ID, second.ID)
	}

	var count int64
	gdb.Model(&db.Task{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one task, got %d", count)
	}
}

func TestTaskCreateGeneratesClientIDAndRejectsMalformed(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewTaskService(gdb)
	now := time.Now()

	task, err := svc.Create(1, TaskInput{Title: "Plan week"}, now)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(task.ClientID) != 36 {
		t.Fatalf("expected generated uuid, got %q", task.ClientID)
	}

	if _, err := svc.Create(1, TaskInput{ClientID: "not-a-uuid", Title: "x"}, now); !errors.Is(err, ErrInvalidClientID) {
		t.Fatalf("expected ErrInvalidClientID, got %v", err)
	}
	if _, err := svc.Create(1, TaskInput{Title: "   "}, now); !errors.Is(err, ErrTaskTitleRequired) {
		t.Fatalf("expected ErrTaskTitleRequired, got %v", err)
	}
	if _, err := svc.Create(1, TaskInput{Title: "x", Status: "later"}, now); !errors.Is(err, ErrTaskInvalidStatus) {
		t.Fatalf("expected ErrTaskInvalidStatus, got %v", err)
	}
	if _, err := svc.Create(1, TaskInput{Title: "x", Priority: "asap"}, now); !errors.Is(err, ErrTaskInvalidPriority) {
		t.Fatalf("expected ErrTaskInvalidPriority, got %v", err)
	}
}

func TestTaskSetStatusTracksCompletion(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewTaskService(gdb)
	now := mustParseTime(t, "2026-10-18T09:00:00Z")

	task, err := svc.Create(1, TaskInput{Title: "Ship"}, now)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	done, err := svc.SetStatus(1, task.ID, "done", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if done.Status != db.TaskStatusDone || done.CompletedAt == nil {
		t.Fatalf("expected DONE with completion time, got %s %v", done.Status, done.CompletedAt)
	}
	if !done.CompletedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected completion time %v", done.CompletedAt)
	}

	reopened, err := svc.SetStatus(1, task.ID, db.TaskStatusTodo, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if reopened.CompletedAt != nil {
		t.Fatalf("expected completion to be cleared, got %v", reopened.CompletedAt)
	}
}

func TestTaskListScopesUserAndOrdersOpenFirst(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewTaskService(gdb)
	now := mustParseTime(t, "2026-10-18T09:00:00Z")
	soon := now.Add(24 * time.Hour)
	later := now.Add(72 * time.Hour)

	mustCreate := func(userID uint, input TaskInput) *db.Task {
		task, err := svc.Create(userID, input, now)
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		return task
	}

	doneTask := mustCreate(1, TaskInput{Title: "done", Status: db.TaskStatusDone})
	laterTask := mustCreate(1, TaskInput{Title: "later", DueDate: &later})
	soonTask := mustCreate(1, TaskInput{Title: "soon", DueDate: &soon})
	noDue := mustCreate(1, TaskInput{Title: "someday"})
	mustCreate(2, TaskInput{Title: "other user"})

	tasks, err := svc.List(1, TaskFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	want := []uint{soonTask.ID, laterTask.ID, noDue.ID, doneTask.ID}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("position %d: expected task %d, got %d (%s)", i, id, tasks[i].ID, tasks[i].Title)
		}
	}

	if _, err := svc.Get(2, soonTask.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected other user lookup to fail, got %v", err)
	}
	if err := svc.Delete(2, soonTask.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected other user delete to fail, got %v", err)
	}
}

func TestTaskCreateRejectsForeignProject(t *testing.T) {
	gdb := setupServiceTestDB(t)
	projects := NewProjectService(gdb)
	tasks := NewTaskService(gdb)

	project, err := projects.Create(1, ProjectInput{Name: "Work"})
	if err != nil {
		t.Fatalf("Create project returned error: %v", err)
	}
	if _, err := projects.Create(1, ProjectInput{Name: " "}); !errors.Is(err, ErrProjectNameRequired) {
		t.Fatalf("expected ErrProjectNameRequired, got %v", err)
	}

	task, err := tasks.Create(1, TaskInput{Title: "Draft", ProjectID: &project.ID}, time.Now())
	if err != nil {
		t.Fatalf("Create task returned error: %v", err)
	}

	if _, err := tasks.Create(2, TaskInput{Title: "Steal", ProjectID: &project.ID}, time.Now()); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected foreign project to be rejected, got %v", err)
	}

	if err := projects.Delete(1, project.ID); err != nil {
		t.Fatalf("Delete project returned error: %v", err)
	}

	reloaded, err := tasks.Get(1, task.ID)
	if err != nil {
		t.Fatalf("Get task returned error: %v", err)
	}
	if reloaded.ProjectID != nil {
		t.Fatalf("expected project to be detached, got %v", *reloaded.ProjectID)
	}
}

func TestTaskClientIDIsScopedPerUser(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewTaskService(gdb)
	now := mustParseTime(t, "2026-10-18T09:00:00Z")
	const clientID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	mine, err := svc.Create(1, TaskInput{ClientID: clientID, Title: "Mine"}, now)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	theirs, err := svc.Create(2, TaskInput{ClientID: clientID, Title: "Theirs"}, now)
	if err != nil {
		t.Fatalf("expected another user to reuse the client id, got %v", err)
	}
	if theirs.ID == mine.ID || theirs.UserID != 2 || theirs.Title != "Theirs" {
		t.Fatalf("expected a separate task for user 2, got %+v", theirs)
	}

	replayed, err := svc.Create(2, TaskInput{ClientID: clientID, Title: "Theirs again"}, now)
	if err != nil {
		t.Fatalf("replayed Create returned error: %v", err)
	}
	if replayed.ID != theirs.ID {
		t.Fatalf("expected replay to return task %d, got %d", theirs.ID, replayed.ID)
	}
}
