package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/horizon/internal/db"
	"github.com/horizon/internal/metrics"
	"github.com/horizon/internal/service"
)

var errCommandPayload = errors.New("invalid command payload")

// commandRequest 是命令面板与离线队列提交的统一格式
type commandRequest struct {
	Type     string          `json:"type" binding:"required"`
	ClientID string          `json:"clientId"`
	Payload  json.RawMessage `json:"payload"`
}

type commandHandler struct {
	run     func(userID uint, clientID string, payload json.RawMessage) (any, error)
	onError func(*gin.Context, error)
}

type taskCompletePayload struct {
	ID        uint  `json:"id"`
	Completed *bool `json:"completed"`
}

type habitTogglePayload struct {
	HabitID   uint   `json:"habitId"`
	Date      string `json:"date"`
	Completed *bool  `json:"completed"`
}

type focusTransitionPayload struct {
	ID string `json:"id"`
}

func (a *API) commandTable() map[string]commandHandler {
	focusCommand := func(transition focusTransition) commandHandler {
		return commandHandler{
			run: func(userID uint, _ string, payload json.RawMessage) (any, error) {
				var req focusTransitionPayload
				if err := decodePayload(payload, &req); err != nil {
					return nil, err
				}
				now := a.clock()
				session, err := transition(userID, req.ID, now)
				if err != nil {
					return nil, err
				}
				return newFocusSessionResponse(session, now), nil
			},
			onError: handleFocusError,
		}
	}

	return map[string]commandHandler{
		"task.create":    {run: a.runCreateTask, onError: handleTaskError},
		"task.complete":  {run: a.runCompleteTask, onError: handleTaskError},
		"habit.toggle":   {run: a.runToggleHabit, onError: handleHabitError},
		"project.create": {run: a.runCreateProject, onError: handleProjectError},
		"focus.start":    {run: a.runStartFocus, onError: handleFocusError},
		"focus.pause":    focusCommand(a.focus.Pause),
		"focus.resume":   focusCommand(a.focus.Resume),
		"focus.complete": focusCommand(a.focus.Complete),
		"focus.cancel":   focusCommand(a.focus.Cancel),
	}
}

// ExecuteCommand 按 type 分发命令，clientId 原样回传（缺省时由服务端生成）
func (a *API) ExecuteCommand(c *gin.Context) {
	var req commandRequest
	if !bindJSON(c, &req, "command type is required") {
		return
	}

	commandType := strings.TrimSpace(req.Type)
	handler, ok := a.commands[commandType]
	if !ok {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("unknown command type %q", req.Type))
		return
	}

	clientID, err := service.NormalizeClientID(req.ClientID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := handler.run(currentUserID(c), clientID, req.Payload)
	if err != nil {
		if errors.Is(err, errCommandPayload) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		handler.onError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type":     commandType,
		"clientId": clientID,
		"result":   result,
	})
}

func decodePayload(payload json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return fmt.Errorf("%w: payload is required", errCommandPayload)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %v", errCommandPayload, err)
	}
	return nil
}

func (a *API) runCreateTask(userID uint, clientID string, payload json.RawMessage) (any, error) {
	var req taskRequest
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}
	req.ClientID = clientID

	input, err := req.input()
	if err != nil {
		return nil, err
	}

	now := a.clock()
	task, err := a.tasks.Create(userID, input, now)
	if err != nil {
		return nil, err
	}
	return newTaskResponse(task, now), nil
}

func (a *API) runCompleteTask(userID uint, _ string, payload json.RawMessage) (any, error) {
	var req taskCompletePayload
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}

	status := db.TaskStatusDone
	if req.Completed != nil && !*req.Completed {
		status = db.TaskStatusTodo
	}

	now := a.clock()
	task, err := a.tasks.SetStatus(userID, req.ID, status, now)
	if err != nil {
		return nil, err
	}
	return newTaskResponse(task, now), nil
}

// runToggleHabit 未指定 completed 时翻转当天状态，date 缺省为今天
func (a *API) runToggleHabit(userID uint, _ string, payload json.RawMessage) (any, error) {
	var req habitTogglePayload
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}

	now := a.clock()
	day := metrics.StartOfDay(now)
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := metrics.ParseTimestamp(req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errCommandPayload, err)
		}
		day = metrics.StartOfDay(parsed)
	}

	habit, err := a.habits.Get(userID, req.HabitID)
	if err != nil {
		return nil, err
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	} else {
		existing, err := a.completions.History(habit.ID, day, day)
		if err != nil {
			return nil, err
		}
		for _, record := range existing {
			completed = !record.Completed
		}
	}

	if _, err := a.completions.Upsert(userID, habit.ID, day, completed, now); err != nil {
		return nil, err
	}
	return a.habitView(habit, now)
}

func (a *API) runCreateProject(userID uint, _ string, payload json.RawMessage) (any, error) {
	var req projectRequest
	if err := decodePayload(payload, &req); err != nil {
		return nil, err
	}

	project, err := a.projects.Create(userID, req.input())
	if err != nil {
		return nil, err
	}
	return newProjectResponse(project), nil
}

func (a *API) runStartFocus(userID uint, clientID string, payload json.RawMessage) (any, error) {
	var req focusStartRequest
	if len(bytes.TrimSpace(payload)) > 0 {
		if err := decodePayload(payload, &req); err != nil {
			return nil, err
		}
	}
	req.ID = clientID

	session, err := a.startFocus(userID, req)
	if err != nil {
		return nil, err
	}
	return newFocusSessionResponse(session, a.clock()), nil
}
