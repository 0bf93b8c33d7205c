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

type taskRequest struct {
	ClientID    string  `json:"clientId"`
	ProjectID   *uint   `json:"projectId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

type taskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type taskResponse struct {
	ID              uint    `json:"id"`
	ClientID        string  `json:"clientId"`
	ProjectID       *uint   `json:"projectId"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	DescriptionHTML string  `json:"descriptionHtml"`
	Status          string  `json:"status"`
	Priority        string  `json:"priority"`
	DueDate         *string `json:"dueDate"`
	DueLabel        string  `json:"dueLabel,omitempty"`
	CompletedAt     *string `json:"completedAt"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func newTaskResponse(task *db.Task, now time.Time) taskResponse {
	resp := taskResponse{
		ID:              task.ID,
		ClientID:        task.ClientID,
		ProjectID:       task.ProjectID,
		Title:           task.Title,
		Description:     task.Description,
		DescriptionHTML: service.RenderMarkdown(task.Description),
		Status:          task.Status,
		Priority:        task.Priority,
		DueDate:         isoTimePtr(task.DueDate),
		CompletedAt:     isoTimePtr(task.CompletedAt),
		CreatedAt:       isoTime(task.CreatedAt),
		UpdatedAt:       isoTime(task.UpdatedAt),
	}
	if task.DueDate != nil && task.Status != db.TaskStatusDone {
		resp.DueLabel = metrics.FormatDueLabel(*task.DueDate, now)
	}
	return resp
}

func (r taskRequest) input() (service.TaskInput, error) {
	due, err := parseOptionalTimestamp(r.DueDate)
	if err != nil {
		return service.TaskInput{}, err
	}
	return service.TaskInput{
		ClientID:    r.ClientID,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     due,
	}, nil
}

// ListTasks 返回任务列表，支持 status/projectId/search 过滤
func (a *API) ListTasks(c *gin.Context) {
	projectID, err := parseUintQuery(c, "projectId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	filter := service.TaskFilter{
		Status:    c.Query("status"),
		ProjectID: projectID,
		Search:    c.Query("search"),
	}

	tasks, err := a.tasks.List(currentUserID(c), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	now := a.clock()
	items := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, newTaskResponse(&tasks[i], now))
	}
	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

// GetTask 获取单个任务
func (a *API) GetTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := a.tasks.Get(currentUserID(c), id)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": newTaskResponse(task, a.clock())})
}

// CreateTask 新建任务，clientId 相同的重放请求返回同一任务
func (a *API) CreateTask(c *gin.Context) {
	var req taskRequest
	if !bindJSON(c, &req, "invalid task payload") {
		return
	}

	input, err := req.input()
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	now := a.clock()
	task, err := a.tasks.Create(currentUserID(c), input, now)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": newTaskResponse(task, now)})
}

// UpdateTask 更新任务
func (a *API) UpdateTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid task id")
		return
	}

	var req taskRequest
	if !bindJSON(c, &req, "invalid task payload") {
		return
	}

	input, err := req.input()
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	now := a.clock()
	task, err := a.tasks.Update(currentUserID(c), id, input, now)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": newTaskResponse(task, now)})
}

// UpdateTaskStatus 只修改任务状态
func (a *API) UpdateTaskStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid task id")
		return
	}

	var req taskStatusRequest
	if !bindJSON(c, &req, "status is required") {
		return
	}

	now := a.clock()
	task, err := a.tasks.SetStatus(currentUserID(c), id, req.Status, now)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": newTaskResponse(task, now)})
}

// DeleteTask 删除任务
func (a *API) DeleteTask(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := a.tasks.Delete(currentUserID(c), id); err != nil {
		handleTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, service.ErrProjectNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTaskTitleRequired),
		errors.Is(err, service.ErrTaskInvalidStatus),
		errors.Is(err, service.ErrTaskInvalidPriority),
		errors.Is(err, service.ErrInvalidClientID),
		errors.Is(err, metrics.ErrMalformedTimestamp):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "task operation failed")
	}
}
