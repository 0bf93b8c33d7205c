package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/horizon/internal/db"
	"github.com/horizon/internal/metrics"
	"github.com/horizon/internal/service"
)

type focusStartRequest struct {
	ID              string `json:"id"`
	DurationMinutes int    `json:"durationMinutes"`
	TaskID          *uint  `json:"taskId"`
}

type focusSessionResponse struct {
	ID                 string   `json:"id"`
	TaskID             *uint    `json:"taskId"`
	StartedAt          string   `json:"startedAt"`
	PausedAt           *string  `json:"pausedAt"`
	TotalPausedSeconds int      `json:"totalPausedSeconds"`
	DurationMinutes    int      `json:"durationMinutes"`
	Status             string   `json:"status"`
	EndedAt            *string  `json:"endedAt"`
	ActiveSeconds      int      `json:"activeSeconds"`
	RemainingSeconds   *int     `json:"remainingSeconds,omitempty"`
	Overtime           *bool    `json:"overtime,omitempty"`
	Progress           *float64 `json:"progress,omitempty"`
	Clock              string   `json:"clock,omitempty"`
}

// newFocusSessionResponse 输出会话字段，进行中的会话附带计时读数
func newFocusSessionResponse(session *db.FocusSession, now time.Time) focusSessionResponse {
	resp := focusSessionResponse{
		ID:                 session.ID,
		TaskID:             session.TaskID,
		StartedAt:          isoTime(session.StartedAt),
		PausedAt:           isoTimePtr(session.PausedAt),
		TotalPausedSeconds: session.TotalPausedSeconds,
		DurationMinutes:    session.DurationMinutes,
		Status:             session.Status,
		EndedAt:            isoTimePtr(session.EndedAt),
		ActiveSeconds:      session.ActiveSeconds,
	}

	snapshot := service.Snapshot(session)
	if reading, ok := metrics.ReadTimer(&snapshot, now); ok {
		resp.RemainingSeconds = &reading.RemainingSeconds
		resp.Overtime = &reading.Overtime
		resp.Progress = &reading.Progress
		resp.Clock = metrics.FormatClock(reading.RemainingSeconds)
	}
	return resp
}

// GetActiveFocus 返回当前进行中的会话，没有时 session 为 null
func (a *API) GetActiveFocus(c *gin.Context) {
	session, err := a.focus.Active(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load focus session")
		return
	}
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": newFocusSessionResponse(session, a.clock())})
}

// ListFocusSessions 返回最近的会话
func (a *API) ListFocusSessions(c *gin.Context) {
	limit, err := parseIntQuery(c, "limit", 20)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	sessions, err := a.focus.Recent(currentUserID(c), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list focus sessions")
		return
	}

	now := a.clock()
	items := make([]focusSessionResponse, 0, len(sessions))
	for i := range sessions {
		items = append(items, newFocusSessionResponse(&sessions[i], now))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": items})
}

// StartFocus 开始专注，未指定时长时使用用户设置中的默认值
func (a *API) StartFocus(c *gin.Context) {
	var req focusStartRequest
	if !bindJSON(c, &req, "invalid focus payload") {
		return
	}

	session, err := a.startFocus(currentUserID(c), req)
	if err != nil {
		handleFocusError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": newFocusSessionResponse(session, a.clock())})
}

func (a *API) startFocus(userID uint, req focusStartRequest) (*db.FocusSession, error) {
	minutes := req.DurationMinutes
	if minutes == 0 {
		settings, err := a.settings.Get(userID)
		if err != nil {
			return nil, err
		}
		minutes = settings.DefaultFocusMinutes
	}

	return a.focus.Start(userID, service.FocusStartInput{
		ID:              req.ID,
		DurationMinutes: minutes,
		TaskID:          req.TaskID,
	}, a.clock())
}

type focusTransition func(userID uint, id string, now time.Time) (*db.FocusSession, error)

func (a *API) focusAction(transition focusTransition) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := a.clock()
		session, err := transition(currentUserID(c), c.Param("id"), now)
		if err != nil {
			handleFocusError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": newFocusSessionResponse(session, now)})
	}
}

// PauseFocus 暂停会话
func (a *API) PauseFocus(c *gin.Context) { a.focusAction(a.focus.Pause)(c) }

// ResumeFocus 恢复会话
func (a *API) ResumeFocus(c *gin.Context) { a.focusAction(a.focus.Resume)(c) }

// CompleteFocus 完成会话
func (a *API) CompleteFocus(c *gin.Context) { a.focusAction(a.focus.Complete)(c) }

// CancelFocus 放弃会话
func (a *API) CancelFocus(c *gin.Context) { a.focusAction(a.focus.Cancel)(c) }

func handleFocusError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFocusSessionNotFound), errors.Is(err, service.ErrTaskNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrFocusSessionActive), errors.Is(err, service.ErrFocusInvalidTransition),
		errors.Is(err, service.ErrFocusSessionIDTaken):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrFocusInvalidDuration), errors.Is(err, service.ErrInvalidClientID):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "focus operation failed")
	}
}
