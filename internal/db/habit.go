package db

import (
	"time"

	"gorm.io/gorm"
)

// Habit 定义了习惯模型
// 习惯按天打卡，Archived 的习惯不再计入仪表盘的当日总数
type Habit struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null"`
	Name        string `gorm:"size:120;not null"`
	Description string `gorm:"type:text"`
	Color       string `gorm:"size:16"`
	Archived    bool   `gorm:"default:false"`
}

// HabitCompletion 记录习惯某天的完成情况
// Habit + Date 采用唯一索引，同一天重复写入会覆盖 Completed；Date 固定为 UTC 零点
type HabitCompletion struct {
	ID        uint      `gorm:"primaryKey"`
	HabitID   uint      `gorm:"index;uniqueIndex:idx_habit_completion_day"`
	Habit     Habit     `gorm:"constraint:OnDelete:CASCADE"`
	Date      time.Time `gorm:"uniqueIndex:idx_habit_completion_day"`
	Completed bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 重写确保唯一索引作用到 habit_id + date
func (HabitCompletion) TableName() string {
	return "habit_completions"
}
