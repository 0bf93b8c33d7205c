package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/horizon/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 计时器浮窗位置
const (
	TimerPositionBottomRight = "bottom-right"
	TimerPositionBottomLeft  = "bottom-left"
	TimerPositionTopRight    = "top-right"
	TimerPositionTopLeft     = "top-left"
)

const maxHeatmapWeeks = 53

var timerPositions = []string{
	TimerPositionBottomRight,
	TimerPositionBottomLeft,
	TimerPositionTopRight,
	TimerPositionTopLeft,
}

// ErrInvalidSettings 表示提交的设置取值非法。
var ErrInvalidSettings = errors.New("invalid settings")

// Settings 是用户级的偏好设置。
type Settings struct {
	TimerPosition       string
	DefaultFocusMinutes int
	HeatmapWeeks        int
}

// SettingsStore 是设置的持久化适配器，按用户读写键值对。
type SettingsStore interface {
	Load(userID uint) (map[string]string, error)
	Save(userID uint, values map[string]string) error
}

// SettingsService 提供设置的读取与更新能力，默认值来自应用配置。
type SettingsService struct {
	store    SettingsStore
	defaults Settings
}

// NewSettingsService 构造 SettingsService。
func NewSettingsService(store SettingsStore, defaults Settings) *SettingsService {
	if defaults.TimerPosition == "" {
		defaults.TimerPosition = TimerPositionBottomRight
	}
	return &SettingsService{store: store, defaults: defaults}
}

// Defaults 返回未做任何个性化时的设置。
func (s *SettingsService) Defaults() Settings {
	return s.defaults
}

// Get 读取用户设置，缺失或非法的值回退到默认值。
func (s *SettingsService) Get(userID uint) (Settings, error) {
	result := s.defaults

	values, err := s.store.Load(userID)
	if err != nil {
		return result, fmt.Errorf("load settings: %w", err)
	}

	if position := normalizeTimerPosition(values[db.SettingKeyTimerPosition]); position != "" {
		result.TimerPosition = position
	}
	if minutes, err := strconv.Atoi(values[db.SettingKeyDefaultFocusMinutes]); err == nil && validFocusMinutes(minutes) {
		result.DefaultFocusMinutes = minutes
	}
	if weeks, err := strconv.Atoi(values[db.SettingKeyHeatmapWeeks]); err == nil && validHeatmapWeeks(weeks) {
		result.HeatmapWeeks = weeks
	}

	return result, nil
}

// Update 校验并保存用户设置。
func (s *SettingsService) Update(userID uint, input Settings) (Settings, error) {
	position := normalizeTimerPosition(input.TimerPosition)
	if position == "" {
		return Settings{}, fmt.Errorf("%w: timer position %q", ErrInvalidSettings, input.TimerPosition)
	}
	if !validFocusMinutes(input.DefaultFocusMinutes) {
		return Settings{}, fmt.Errorf("%w: default focus minutes %d", ErrInvalidSettings, input.DefaultFocusMinutes)
	}
	if !validHeatmapWeeks(input.HeatmapWeeks) {
		return Settings{}, fmt.Errorf("%w: heatmap weeks %d", ErrInvalidSettings, input.HeatmapWeeks)
	}

	sanitized := Settings{
		TimerPosition:       position,
		DefaultFocusMinutes: input.DefaultFocusMinutes,
		HeatmapWeeks:        input.HeatmapWeeks,
	}

	if err := s.store.Save(userID, map[string]string{
		db.SettingKeyTimerPosition:       sanitized.TimerPosition,
		db.SettingKeyDefaultFocusMinutes: strconv.Itoa(sanitized.DefaultFocusMinutes),
		db.SettingKeyHeatmapWeeks:        strconv.Itoa(sanitized.HeatmapWeeks),
	}); err != nil {
		return Settings{}, fmt.Errorf("update settings: %w", err)
	}

	return sanitized, nil
}

func normalizeTimerPosition(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, position := range timerPositions {
		if value == position {
			return position
		}
	}
	return ""
}

func validFocusMinutes(minutes int) bool {
	return minutes > 0 && minutes <= maxFocusMinutes
}

func validHeatmapWeeks(weeks int) bool {
	return weeks > 0 && weeks <= maxHeatmapWeeks
}

// UserSettingStore 将设置保存在 user_settings 表中。
type UserSettingStore struct {
	db *gorm.DB
}

// NewUserSettingStore 构造基于 gorm 的设置存储。
func NewUserSettingStore(gdb *gorm.DB) *UserSettingStore {
	return &UserSettingStore{db: gdb}
}

// Load 读取用户全部设置。
func (s *UserSettingStore) Load(userID uint) (map[string]string, error) {
	var records []db.UserSetting
	if err := s.db.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, err
	}

	values := make(map[string]string, len(records))
	for _, record := range records {
		values[record.Key] = record.Value
	}
	return values, nil
}

// Save 在一个事务中写入全部键值。
func (s *UserSettingStore) Save(userID uint, values map[string]string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range values {
			setting := db.UserSetting{UserID: userID, Key: key, Value: value}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "key"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"value":      value,
					"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
				}),
			}).Create(&setting).Error; err != nil {
				return fmt.Errorf("upsert setting %s: %w", key, err)
			}
		}
		return nil
	})
}

// MemorySettingsStore 是进程内的设置存储，用于测试与命令行工具。
type MemorySettingsStore struct {
	mu     sync.Mutex
	values map[uint]map[string]string
}

// NewMemorySettingsStore 构造空的内存存储。
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{values: make(map[uint]map[string]string)}
}

// Load 返回用户设置的副本。
func (s *MemorySettingsStore) Load(userID uint) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.values[userID]))
	for k, v := range s.values[userID] {
		out[k] = v
	}
	return out, nil
}

// Save 覆盖写入给定键值。
func (s *MemorySettingsStore) Save(userID uint, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values[userID] == nil {
		s.values[userID] = make(map[string]string, len(values))
	}
	for k, v := range values {
		s.values[userID][k] = v
	}
	return nil
}
