package db

import "time"

// UserSetting 存储用户级的键值配置。
type UserSetting struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex:idx_user_setting_key;not null"`
	Key       string `gorm:"size:100;uniqueIndex:idx_user_setting_key;not null"`
	Value     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 自定义表名以保持命名一致。
func (UserSetting) TableName() string {
	return "user_settings"
}

const (
	// SettingKeyTimerPosition 表示计时器浮窗的位置。
	SettingKeyTimerPosition = "timer_position"
	// SettingKeyDefaultFocusMinutes 表示默认专注时长。
	SettingKeyDefaultFocusMinutes = "default_focus_minutes"
	// SettingKeyHeatmapWeeks 表示热力图默认展示的周数。
	SettingKeyHeatmapWeeks = "heatmap_weeks"
)
