package metrics

import (
	"math"
	"time"
)

// SessionStatus 是专注会话的状态。
type SessionStatus string

const (
	StatusActive    SessionStatus = "ACTIVE"
	StatusPaused    SessionStatus = "PAUSED"
	StatusCompleted SessionStatus = "COMPLETED"
	StatusCancelled SessionStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are allowed.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid reports whether s is one of the known statuses.
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TimerSnapshot 是计算剩余时间所需的会话字段。
type TimerSnapshot struct {
	StartedAt          time.Time
	PausedAt           *time.Time
	TotalPausedSeconds int
	DurationMinutes    int
	Status             SessionStatus
}

// TimerReading is the derived state of a running or paused timer.
type TimerReading struct {
	RemainingSeconds int     `json:"remainingSeconds"`
	ElapsedSeconds   int     `json:"elapsedSeconds"`
	Overtime         bool    `json:"overtime"`
	Progress         float64 `json:"progress"`
	Paused           bool    `json:"paused"`
}

// ElapsedActiveSeconds 返回扣除全部暂停时长后的有效专注秒数。
func ElapsedActiveSeconds(s TimerSnapshot, now time.Time) int {
	elapsed := now.Sub(s.StartedAt) - time.Duration(s.TotalPausedSeconds)*time.Second
	if s.Status == StatusPaused && s.PausedAt != nil {
		elapsed -= now.Sub(*s.PausedAt)
	}
	return int(math.Floor(elapsed.Seconds()))
}

// ReadTimer derives the timer display from absolute timestamps. It returns
// false when there is nothing running: no session, no start time, a session
// that has already ended, or a paused session without its pause timestamp.
func ReadTimer(s *TimerSnapshot, now time.Time) (TimerReading, bool) {
	if s == nil || s.StartedAt.IsZero() || s.Status.Terminal() || !s.Status.Valid() {
		return TimerReading{}, false
	}
	if s.Status == StatusPaused && s.PausedAt == nil {
		return TimerReading{}, false
	}

	target := s.DurationMinutes * 60
	elapsed := ElapsedActiveSeconds(*s, now)
	remaining := target - elapsed

	progress := 100.0
	if target > 0 {
		progress = math.Max(0, math.Min(100, float64(elapsed)/float64(target)*100))
	}

	return TimerReading{
		RemainingSeconds: remaining,
		ElapsedSeconds:   elapsed,
		Overtime:         remaining <= 0,
		Progress:         progress,
		Paused:           s.Status == StatusPaused,
	}, true
}
