package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/horizon/internal/metrics"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []FocusEvent
}

func (r *recordingObserver) ObserveFocus(_ context.Context, event FocusEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Action)
	}
	return out
}

func TestFocusSessionLifecycleFoldsPauses(t *testing.T) {
	gdb := setupServiceTestDB(t)
	observer := &recordingObserver{}
	svc := NewFocusService(gdb, observer)
	start := mustParseTime(t, "2026-10-18T09:00:00Z")

	session, err := svc.Start(1, FocusStartInput{DurationMinutes: 25}, start)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if session.Status != string(metrics.StatusActive) || len(session.ID) != 36 {
		t.Fatalf("unexpected session %+v", session)
	}

	if _, err := svc.Start(1, FocusStartInput{DurationMinutes: 25}, start); !errors.Is(err, ErrFocusSessionActive) {
		t.Fatalf("expected ErrFocusSessionActive, got %v", err)
	}

	paused, err := svc.Pause(1, session.ID, start.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("Pause returned error: %v", err)
	}
	if paused.Status != string(metrics.StatusPaused) || paused.PausedAt == nil {
		t.Fatalf("expected paused session, got %+v", paused)
	}

	if _, err := svc.Pause(1, session.ID, start.Add(11*time.Minute)); !errors.Is(err, ErrFocusInvalidTransition) {
		t.Fatalf("expected ErrFocusInvalidTransition on double pause, got %v", err)
	}

	resumed, err := svc.Resume(1, session.ID, start.Add(15*time.Minute))
	if err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	if resumed.TotalPausedSeconds != 300 || resumed.PausedAt != nil {
		t.Fatalf("expected 300 paused seconds folded, got %+v", resumed)
	}

	reading, ok := metrics.ReadTimer(ptr(Snapshot(resumed)), start.Add(20*time.Minute))
	if !ok || reading.RemainingSeconds != 10*60 {
		t.Fatalf("expected 10 minutes remaining, got %+v (ok=%v)", reading, ok)
	}

	done, err := svc.Complete(1, session.ID, start.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if done.Status != string(metrics.StatusCompleted) || done.EndedAt == nil {
		t.Fatalf("expected completed session, got %+v", done)
	}
	if done.ActiveSeconds != 25*60 {
		t.Fatalf("expected 1500 active seconds, got %d", done.ActiveSeconds)
	}

	if _, err := svc.Cancel(1, session.ID, start.Add(31*time.Minute)); !errors.Is(err, ErrFocusInvalidTransition) {
		t.Fatalf("expected terminal session to reject cancel, got %v", err)
	}

	active, err := svc.Active(1)
	if err != nil {
		t.Fatalf("Active returned error: %v", err)
	}
	if active != nil {
		t.Fatalf("expected no active session, got %+v", active)
	}

	names := observer.names()
	if len(names) != 7 || names[0] != "focus.start" || names[len(names)-1] != "focus.cancel" {
		t.Fatalf("unexpected observed focus actions: %v", names)
	}

	observer.mu.Lock()
	defer observer.mu.Unlock()
	if first := observer.events[0]; first.SessionID != session.ID || first.Status != string(metrics.StatusActive) || first.Err != nil {
		t.Fatalf("unexpected start event %+v", first)
	}
	if last := observer.events[len(observer.events)-1]; !errors.Is(last.Err, ErrFocusInvalidTransition) || last.Status != "" {
		t.Fatalf("expected rejected cancel event, got %+v", last)
	}
}

func TestFocusCompleteWhilePausedExcludesOpenPause(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewFocusService(gdb)
	start := mustParseTime(t, "2026-10-18T09:00:00Z")

	session, err := svc.Start(1, FocusStartInput{DurationMinutes: 50}, start)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := svc.Pause(1, session.ID, start.Add(20*time.Minute)); err != nil {
		t.Fatalf("Pause returned error: %v", err)
	}

	done, err := svc.Complete(1, session.ID, start.Add(45*time.Minute))
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if done.ActiveSeconds != 20*60 {
		t.Fatalf("expected 1200 active seconds, got %d", done.ActiveSeconds)
	}
	if done.TotalPausedSeconds != 25*60 {
		t.Fatalf("expected 1500 paused seconds, got %d", done.TotalPausedSeconds)
	}
}

func TestFocusStartValidatesInput(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewFocusService(gdb)
	now := time.Now()

	if _, err := svc.Start(1, FocusStartInput{DurationMinutes: 0}, now); !errors.Is(err, ErrFocusInvalidDuration) {
		t.Fatalf("expected ErrFocusInvalidDuration, got %v", err)
	}
	if _, err := svc.Start(1, FocusStartInput{DurationMinutes: 1441}, now); !errors.Is(err, ErrFocusInvalidDuration) {
		t.Fatalf("expected ErrFocusInvalidDuration, got %v", err)
	}
	missing := uint(99)
	if _, err := svc.Start(1, FocusStartInput{DurationMinutes: 25, TaskID: &missing}, now); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if _, err := svc.Pause(1, "5f0c7f4e-8a7a-4a64-b6f4-0d2f8f1e0a11", now); !errors.Is(err, ErrFocusSessionNotFound) {
		t.Fatalf("expected ErrFocusSessionNotFound, got %v", err)
	}

	session, err := svc.Start(1, FocusStartInput{DurationMinutes: 25}, now)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := svc.Start(2, FocusStartInput{DurationMinutes: 25}, now); err != nil {
		t.Fatalf("expected other user to start independently, got %v", err)
	}
	if _, err := svc.Cancel(2, session.ID, now); !errors.Is(err, ErrFocusSessionNotFound) {
		t.Fatalf("expected foreign session lookup to fail, got %v", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestFocusStartClientIDIsScopedPerUser(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewFocusService(gdb)
	now := mustParseTime(t, "2026-10-18T09:00:00Z")
	const clientID = "9b2e4c1a-3f5d-4e6b-8c7d-1a2b3c4d5e6f"

	first, err := svc.Start(1, FocusStartInput{ID: clientID, DurationMinutes: 25}, now)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	replayed, err := svc.Start(1, FocusStartInput{ID: clientID, DurationMinutes: 25}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("expected replayed start to succeed, got %v", err)
	}
	if replayed.ID != first.ID || !replayed.StartedAt.Equal(first.StartedAt) {
		t.Fatalf("expected replay to return the original session, got %+v", replayed)
	}

	if _, err := svc.Start(2, FocusStartInput{ID: clientID, DurationMinutes: 25}, now); !errors.Is(err, ErrFocusSessionIDTaken) {
		t.Fatalf("expected ErrFocusSessionIDTaken for another user, got %v", err)
	}
}
