package db

import (
	"time"

	"gorm.io/gorm"
)

// 任务状态
const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"
)

// 任务优先级
const (
	TaskPriorityLow    = "LOW"
	TaskPriorityMedium = "MEDIUM"
	TaskPriorityHigh   = "HIGH"
	TaskPriorityUrgent = "URGENT"
)

// Task 定义了任务模型
// ClientID 由客户端在乐观更新时生成（uuid），未提供时由服务端补齐，在同一用户内唯一
// Description 保存原始 markdown，展示时再渲染
// CompletedAt 在状态变为 DONE 时写入，重新打开时清空
type Task struct {
	gorm.Model
	UserID      uint   `gorm:"not null;uniqueIndex:idx_task_user_client,priority:1"`
	ProjectID   *uint  `gorm:"index"`
	ClientID    string `gorm:"size:36;uniqueIndex:idx_task_user_client,priority:2"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:16;index;default:TODO"`
	Priority    string `gorm:"size:16;default:MEDIUM"`
	DueDate     *time.Time
	CompletedAt *time.Time `gorm:"index"`
}
