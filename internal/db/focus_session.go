package db

import "time"

// FocusSession 记录一次专注计时。ID 为 uuid 字符串。
// 状态流转：ACTIVE ⇄ PAUSED → COMPLETED / CANCELLED。
// ActiveSeconds 在会话结束时写入，用于统计专注分钟数。
type FocusSession struct {
	ID                 string     `gorm:"primaryKey;size:36"`
	UserID             uint       `gorm:"index;not null"`
	TaskID             *uint      `gorm:"index"`
	StartedAt          time.Time  `gorm:"not null"`
	PausedAt           *time.Time
	TotalPausedSeconds int        `gorm:"default:0"`
	DurationMinutes    int        `gorm:"not null"`
	Status             string     `gorm:"size:16;index"`
	EndedAt            *time.Time `gorm:"index"`
	ActiveSeconds      int        `gorm:"default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
