package service

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/horizon/internal/db"
	"github.com/horizon/internal/metrics"
)

func TestHabitCompletionUpsertLastWriteWins(t *testing.T) {
	gdb := setupServiceTestDB(t)
	habits := NewHabitService(gdb)
	completions := NewHabitCompletionService(gdb)
	now := mustParseTime(t, "2026-10-18T20:00:00Z")

	habit, err := habits.Create(1, HabitInput{Name: "Read"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	day := mustParseTime(t, "2026-10-16T08:30:00Z")
	if _, err := completions.Upsert(1, habit.ID, day, true, now); err != nil {
		t.Fatalf("first Upsert returned error: %v", err)
	}
	record, err := completions.Upsert(1, habit.ID, day.Add(3*time.Hour), false, now)
	if err != nil {
		t.Fatalf("second Upsert returned error: %v", err)
	}
	if record.Completed {
		t.Fatal("expected second write to win")
	}
	if !record.Date.Equal(metrics.StartOfDay(day)) {
		t.Fatalf("expected date normalized to midnight, got %v", record.Date)
	}

	var count int64
	gdb.Model(&db.HabitCompletion{}).Where("habit_id = ?", habit.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single row per day, got %d", count)
	}
}

func TestHabitCompletionRejectsFutureAndForeignHabits(t *testing.T) {
	gdb := setupServiceTestDB(t)
	habits := NewHabitService(gdb)
	completions := NewHabitCompletionService(gdb)
	now := mustParseTime(t, "2026-10-18T20:00:00Z")

	habit, err := habits.Create(1, HabitInput{Name: "Run"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := completions.Upsert(1, habit.ID, now.Add(24*time.Hour), true, now); !errors.Is(err, ErrCompletionInFuture) {
		t.Fatalf("expected ErrCompletionInFuture, got %v", err)
	}
	if _, err := completions.Upsert(2, habit.ID, now, true, now); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound for another user, got %v", err)
	}
	if _, err := habits.Create(1, HabitInput{Name: ""}); !errors.Is(err, ErrHabitNameRequired) {
		t.Fatalf("expected ErrHabitNameRequired, got %v", err)
	}
}

func TestHabitStatsComputesStreaksAndRate(t *testing.T) {
	gdb := setupServiceTestDB(t)
	habits := NewHabitService(gdb)
	completions := NewHabitCompletionService(gdb)
	now := mustParseTime(t, "2026-10-18T20:00:00Z")

	habit, err := habits.Create(1, HabitInput{Name: "Meditate"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	marks := map[string]bool{
		"2026-10-13": true,
		"2026-10-14": true,
		"2026-10-15": true,
		"2026-10-16": false,
		"2026-10-17": true,
		"2026-10-18": true,
	}
	for key, completed := range marks {
		day, err := metrics.ParseDateKey(key)
		if err != nil {
			t.Fatalf("ParseDateKey: %v", err)
		}
		if _, err := completions.Upsert(1, habit.ID, day, completed, now); err != nil {
			t.Fatalf("Upsert %s returned error: %v", key, err)
		}
	}

	stats, err := completions.Stats(1, habit.ID, 7, now)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}

	if stats.CurrentStreak != 2 {
		t.Fatalf("expected current streak 2, got %d", stats.CurrentStreak)
	}
	if stats.LongestStreak != 3 {
		t.Fatalf("expected longest streak 3, got %d", stats.LongestStreak)
	}
	if math.Abs(stats.CompletionRate-5.0/7.0) > 1e-9 {
		t.Fatalf("expected completion rate 5/7, got %f", stats.CompletionRate)
	}
	if metrics.DateKey(stats.RangeStart) != "2026-10-12" || metrics.DateKey(stats.RangeEnd) != "2026-10-18" {
		t.Fatalf("unexpected range %s..%s", metrics.DateKey(stats.RangeStart), metrics.DateKey(stats.RangeEnd))
	}
	if len(stats.CompletionHistory) != 6 {
		t.Fatalf("expected 6 history rows, got %d", len(stats.CompletionHistory))
	}
}

func TestHabitDeleteRemovesCompletions(t *testing.T) {
	gdb := setupServiceTestDB(t)
	habits := NewHabitService(gdb)
	completions := NewHabitCompletionService(gdb)
	now := mustParseTime(t, "2026-10-18T20:00:00Z")

	keep, _ := habits.Create(1, HabitInput{Name: "Keep"})
	drop, _ := habits.Create(1, HabitInput{Name: "Drop"})
	other, _ := habits.Create(2, HabitInput{Name: "Other"})

	for _, habit := range []*db.Habit{keep, drop} {
		if _, err := completions.Upsert(1, habit.ID, now, true, now); err != nil {
			t.Fatalf("Upsert returned error: %v", err)
		}
	}
	if _, err := completions.Upsert(2, other.ID, now, true, now); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := habits.Delete(1, drop.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	rows, err := completions.CompletedBetween(1, now.AddDate(0, 0, -7), now)
	if err != nil {
		t.Fatalf("CompletedBetween returned error: %v", err)
	}
	if len(rows) != 1 || rows[0].HabitID != keep.ID {
		t.Fatalf("expected only the kept habit's completion, got %+v", rows)
	}

	if _, err := habits.Get(1, drop.ID); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected deleted habit to be gone, got %v", err)
	}
}
