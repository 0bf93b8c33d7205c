package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/horizon/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrTaskNotFound 在任务不存在或不属于当前用户时返回
	ErrTaskNotFound = errors.New("task not found")
	// ErrTaskTitleRequired 在任务标题为空时返回
	ErrTaskTitleRequired = errors.New("task title is required")
	// ErrTaskInvalidStatus 在状态取值非法时返回
	ErrTaskInvalidStatus = errors.New("invalid task status")
	// ErrTaskInvalidPriority 在优先级取值非法时返回
	ErrTaskInvalidPriority = errors.New("invalid task priority")
	// ErrInvalidClientID 在客户端提供的乐观 ID 不是合法 uuid 时返回
	ErrInvalidClientID = errors.New("client id must be a uuid")
)

// TaskService wraps task related operations.
type TaskService struct {
	db       *gorm.DB
	projects *ProjectService
}

// TaskFilter 描述任务列表过滤条件
type TaskFilter struct {
	Status    string
	ProjectID *uint
	Search    string
}

// TaskInput 定义创建/更新任务时可配置字段
type TaskInput struct {
	ClientID    string
	ProjectID   *uint
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     *time.Time
}

// NewTaskService creates a TaskService instance.
func NewTaskService(gdb *gorm.DB) *TaskService {
	return &TaskService{db: gdb, projects: NewProjectService(gdb)}
}

// List 返回用户任务：未完成优先，其次按截止日期升序
func (s *TaskService) List(userID uint, filter TaskFilter) ([]db.Task, error) {
	var tasks []db.Task

	query := s.db.Where("user_id = ?", userID)
	if status := strings.ToUpper(strings.TrimSpace(filter.Status)); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := fmt.Sprintf("%%%s%%", search)
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	if err := query.
		Order(fmt.Sprintf("CASE WHEN status = '%s' THEN 1 ELSE 0 END", db.TaskStatusDone)).
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END").
		Order("due_date ASC").
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get 根据 ID 获取任务
func (s *TaskService) Get(userID, id uint) (*db.Task, error) {
	var task db.Task
	if err := s.db.Where("user_id = ?", userID).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// Create 新建任务。ClientID 相同的重复提交会返回已存在的任务。
func (s *TaskService) Create(userID uint, input TaskInput, now time.Time) (*db.Task, error) {
	clientID, err := NormalizeClientID(input.ClientID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(userID, &input); err != nil {
		return nil, err
	}

	var existing db.Task
	err = s.db.Where("user_id = ? AND client_id = ?", userID, clientID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find task by client id: %w", err)
	}

	task := db.Task{
		UserID:      userID,
		ProjectID:   input.ProjectID,
		ClientID:    clientID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     normalizeDue(input.DueDate),
	}
	applyCompletion(&task, now)

	if err := s.db.Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

// Update 更新任务
func (s *TaskService) Update(userID, id uint, input TaskInput, now time.Time) (*db.Task, error) {
	if err := s.validate(userID, &input); err != nil {
		return nil, err
	}

	task, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	task.ProjectID = input.ProjectID
	task.Title = strings.TrimSpace(input.Title)
	task.Description = strings.TrimSpace(input.Description)
	task.Status = input.Status
	task.Priority = input.Priority
	task.DueDate = normalizeDue(input.DueDate)
	applyCompletion(task, now)

	if err := s.db.Save(task).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// SetStatus 仅修改任务状态，DONE 时记录完成时间，重新打开时清空
func (s *TaskService) SetStatus(userID, id uint, status string, now time.Time) (*db.Task, error) {
	normalized, err := normalizeTaskStatus(status)
	if err != nil {
		return nil, err
	}

	task, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	task.Status = normalized
	applyCompletion(task, now)

	if err := s.db.Save(task).Error; err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}
	return task, nil
}

// Delete 删除任务
func (s *TaskService) Delete(userID, id uint) error {
	result := s.db.Where("user_id = ?", userID).Delete(&db.Task{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (s *TaskService) validate(userID uint, input *TaskInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrTaskTitleRequired
	}

	status, err := normalizeTaskStatus(input.Status)
	if err != nil {
		return err
	}
	input.Status = status

	priority, err := normalizeTaskPriority(input.Priority)
	if err != nil {
		return err
	}
	input.Priority = priority

	if input.ProjectID != nil {
		if _, err := s.projects.Get(userID, *input.ProjectID); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeClientID 校验客户端生成的乐观 ID，为空时生成新的 uuid。
func NormalizeClientID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return uuid.NewString(), nil
	}

	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidClientID, trimmed)
	}
	return parsed.String(), nil
}

func normalizeTaskStatus(status string) (string, error) {
	switch value := strings.ToUpper(strings.TrimSpace(status)); value {
	case "":
		return db.TaskStatusTodo, nil
	case db.TaskStatusTodo, db.TaskStatusInProgress, db.TaskStatusDone:
		return value, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrTaskInvalidStatus, status)
	}
}

func normalizeTaskPriority(priority string) (string, error) {
	switch value := strings.ToUpper(strings.TrimSpace(priority)); value {
	case "":
		return db.TaskPriorityMedium, nil
	case db.TaskPriorityLow, db.TaskPriorityMedium, db.TaskPriorityHigh, db.TaskPriorityUrgent:
		return value, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrTaskInvalidPriority, priority)
	}
}

func applyCompletion(task *db.Task, now time.Time) {
	if task.Status != db.TaskStatusDone {
		task.CompletedAt = nil
		return
	}
	if task.CompletedAt == nil {
		completed := now.UTC()
		task.CompletedAt = &completed
	}
}

func normalizeDue(due *time.Time) *time.Time {
	if due == nil {
		return nil
	}
	utc := due.UTC()
	return &utc
}
