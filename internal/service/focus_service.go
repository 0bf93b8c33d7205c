package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/horizon/internal/db"
	"github.com/horizon/internal/metrics"
	"gorm.io/gorm"
)

const maxFocusMinutes = 24 * 60

var (
	// ErrFocusSessionNotFound 在会话不存在或不属于当前用户时返回
	ErrFocusSessionNotFound = errors.New("focus session not found")
	// ErrFocusSessionActive 在已有进行中（含暂停）的会话时尝试开始新会话
	ErrFocusSessionActive = errors.New("a focus session is already running")
	// ErrFocusInvalidTransition 在状态不允许当前操作时返回
	ErrFocusInvalidTransition = errors.New("invalid focus session transition")
	// ErrFocusInvalidDuration 在目标时长不在 1..1440 分钟时返回
	ErrFocusInvalidDuration = errors.New("focus duration must be between 1 and 1440 minutes")
	// ErrFocusSessionIDTaken 在客户端提供的 ID 已被其他用户的会话占用时返回
	ErrFocusSessionIDTaken = errors.New("focus session id already in use")
)

// FocusService 管理专注会话的生命周期，每个用户同一时间最多一个进行中的会话。
type FocusService struct {
	db       *gorm.DB
	tasks    *TaskService
	observer FocusObserver
}

// FocusStartInput 描述开始专注时的参数，ID 可由客户端提供（uuid）。
type FocusStartInput struct {
	ID              string
	DurationMinutes int
	TaskID          *uint
}

// NewFocusService 构造 FocusService，observer 为空时不记录日志。
func NewFocusService(gdb *gorm.DB, observers ...FocusObserver) *FocusService {
	return &FocusService{
		db:       gdb,
		tasks:    NewTaskService(gdb),
		observer: firstFocusObserver(observers),
	}
}

// Active 返回用户当前进行中或暂停的会话，没有时返回 nil。
func (s *FocusService) Active(userID uint) (*db.FocusSession, error) {
	var session db.FocusSession
	err := s.db.Where("user_id = ? AND status IN ?", userID, openStatuses()).
		Order("started_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active focus session: %w", err)
	}
	return &session, nil
}

// Get 根据 ID 获取会话
func (s *FocusService) Get(userID uint, id string) (*db.FocusSession, error) {
	var session db.FocusSession
	if err := s.db.Where("user_id = ? AND id = ?", userID, id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFocusSessionNotFound
		}
		return nil, fmt.Errorf("get focus session: %w", err)
	}
	return &session, nil
}

// Recent 返回最近开始的会话
func (s *FocusService) Recent(userID uint, limit int) ([]db.FocusSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var sessions []db.FocusSession
	if err := s.db.Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list focus sessions: %w", err)
	}
	return sessions, nil
}

// Start 开始新的专注会话
func (s *FocusService) Start(userID uint, input FocusStartInput, now time.Time) (*db.FocusSession, error) {
	return s.record("focus.start", userID, input.ID, func() (*db.FocusSession, error) {
		if input.DurationMinutes <= 0 || input.DurationMinutes > maxFocusMinutes {
			return nil, ErrFocusInvalidDuration
		}

		id, err := NormalizeClientID(input.ID)
		if err != nil {
			return nil, err
		}

		if input.TaskID != nil {
			if _, err := s.tasks.Get(userID, *input.TaskID); err != nil {
				return nil, err
			}
		}

		var session db.FocusSession
		err = s.db.Transaction(func(tx *gorm.DB) error {
			// 同一 ID 的重复提交直接返回已有会话
			var existing db.FocusSession
			err := tx.Where("id = ?", id).First(&existing).Error
			switch {
			case err == nil && existing.UserID == userID:
				session = existing
				return nil
			case err == nil:
				return ErrFocusSessionIDTaken
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("find focus session: %w", err)
			}

			var open int64
			if err := tx.Model(&db.FocusSession{}).
				Where("user_id = ? AND status IN ?", userID, openStatuses()).
				Count(&open).Error; err != nil {
				return fmt.Errorf("count open focus sessions: %w", err)
			}
			if open > 0 {
				return ErrFocusSessionActive
			}

			session = db.FocusSession{
				ID:              id,
				UserID:          userID,
				TaskID:          input.TaskID,
				StartedAt:       now.UTC(),
				DurationMinutes: input.DurationMinutes,
				Status:          string(metrics.StatusActive),
			}
			if err := tx.Create(&session).Error; err != nil {
				return fmt.Errorf("create focus session: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &session, nil
	})
}

// Pause 暂停进行中的会话：ACTIVE → PAUSED
func (s *FocusService) Pause(userID uint, id string, now time.Time) (*db.FocusSession, error) {
	return s.transition(userID, id, "focus.pause", func(session *db.FocusSession) error {
		if session.Status != string(metrics.StatusActive) {
			return fmt.Errorf("%w: cannot pause %s session", ErrFocusInvalidTransition, session.Status)
		}
		pausedAt := now.UTC()
		session.PausedAt = &pausedAt
		session.Status = string(metrics.StatusPaused)
		return nil
	})
}

// Resume 恢复暂停的会话：PAUSED → ACTIVE，并累加本次暂停时长
func (s *FocusService) Resume(userID uint, id string, now time.Time) (*db.FocusSession, error) {
	return s.transition(userID, id, "focus.resume", func(session *db.FocusSession) error {
		if session.Status != string(metrics.StatusPaused) {
			return fmt.Errorf("%w: cannot resume %s session", ErrFocusInvalidTransition, session.Status)
		}
		foldPause(session, now)
		session.Status = string(metrics.StatusActive)
		return nil
	})
}

// Complete 结束会话并计入专注时长
func (s *FocusService) Complete(userID uint, id string, now time.Time) (*db.FocusSession, error) {
	return s.finish(userID, id, "focus.complete", metrics.StatusCompleted, now)
}

// Cancel 放弃会话
func (s *FocusService) Cancel(userID uint, id string, now time.Time) (*db.FocusSession, error) {
	return s.finish(userID, id, "focus.cancel", metrics.StatusCancelled, now)
}

func (s *FocusService) finish(userID uint, id, name string, status metrics.SessionStatus, now time.Time) (*db.FocusSession, error) {
	return s.transition(userID, id, name, func(session *db.FocusSession) error {
		if metrics.SessionStatus(session.Status).Terminal() {
			return fmt.Errorf("%w: session already %s", ErrFocusInvalidTransition, session.Status)
		}
		foldPause(session, now)

		ended := now.UTC()
		session.EndedAt = &ended
		session.ActiveSeconds = max(0, metrics.ElapsedActiveSeconds(Snapshot(session), now))
		session.Status = string(status)
		return nil
	})
}

func (s *FocusService) transition(userID uint, id, name string, apply func(*db.FocusSession) error) (*db.FocusSession, error) {
	return s.record(name, userID, id, func() (*db.FocusSession, error) {
		var session db.FocusSession
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ? AND id = ?", userID, id).First(&session).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrFocusSessionNotFound
				}
				return fmt.Errorf("load focus session: %w", err)
			}
			if err := apply(&session); err != nil {
				return err
			}
			if err := tx.Save(&session).Error; err != nil {
				return fmt.Errorf("save focus session: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &session, nil
	})
}

// foldPause 将未结束的暂停计入 TotalPausedSeconds 并清空 PausedAt
func foldPause(session *db.FocusSession, now time.Time) {
	if session.PausedAt == nil {
		return
	}
	paused := int(now.Sub(*session.PausedAt) / time.Second)
	session.TotalPausedSeconds += max(0, paused)
	session.PausedAt = nil
}

// Snapshot 提取计时所需字段
func Snapshot(session *db.FocusSession) metrics.TimerSnapshot {
	return metrics.TimerSnapshot{
		StartedAt:          session.StartedAt.UTC(),
		PausedAt:           session.PausedAt,
		TotalPausedSeconds: session.TotalPausedSeconds,
		DurationMinutes:    session.DurationMinutes,
		Status:             metrics.SessionStatus(session.Status),
	}
}

func openStatuses() []string {
	return []string{string(metrics.StatusActive), string(metrics.StatusPaused)}
}
