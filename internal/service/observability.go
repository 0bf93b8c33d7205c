package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/horizon/internal/db"
)

// FocusEvent 描述一次专注会话操作的结果。失败时 SessionID 为请求中的 ID，Status 为空。
type FocusEvent struct {
	Action    string
	UserID    uint
	SessionID string
	Status    string
	Elapsed   time.Duration
	Err       error
}

// FocusObserver receives one event per focus session operation.
type FocusObserver interface {
	ObserveFocus(ctx context.Context, event FocusEvent)
}

type discardFocusObserver struct{}

func (discardFocusObserver) ObserveFocus(context.Context, FocusEvent) {}

type logFocusObserver struct {
	logger *slog.Logger
}

// NewLogFocusObserver 以 slog 文本格式输出专注会话事件，失败的操作记为 WARN。
func NewLogFocusObserver(w io.Writer, level slog.Level) FocusObserver {
	if w == nil {
		return discardFocusObserver{}
	}
	return &logFocusObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

func (o *logFocusObserver) ObserveFocus(ctx context.Context, event FocusEvent) {
	attrs := []any{
		"action", event.Action,
		"user_id", event.UserID,
		"session_id", event.SessionID,
		"elapsed_ms", event.Elapsed.Milliseconds(),
	}
	if event.Err != nil {
		o.logger.WarnContext(ctx, "focus session rejected", append(attrs, "error", event.Err.Error())...)
		return
	}
	o.logger.InfoContext(ctx, "focus session updated", append(attrs, "status", event.Status)...)
}

func firstFocusObserver(observers []FocusObserver) FocusObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return discardFocusObserver{}
}

// record 执行 fn 并上报结果，成功时事件带上会话的最终状态。
func (s *FocusService) record(action string, userID uint, sessionID string, fn func() (*db.FocusSession, error)) (*db.FocusSession, error) {
	started := time.Now()
	session, err := fn()

	event := FocusEvent{Action: action, UserID: userID, SessionID: sessionID, Elapsed: time.Since(started), Err: err}
	if err == nil && session != nil {
		event.SessionID = session.ID
		event.Status = session.Status
	}
	s.observer.ObserveFocus(context.Background(), event)
	return session, err
}
