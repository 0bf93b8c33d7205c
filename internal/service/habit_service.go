package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/horizon/internal/db"
	"github.com/horizon/internal/metrics"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrHabitNotFound 在指定习惯不存在时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitNameRequired 在习惯名称为空时返回
	ErrHabitNameRequired = errors.New("habit name is required")
	// ErrCompletionInFuture 在为未来日期打卡时返回
	ErrCompletionInFuture = errors.New("cannot record completion for a future day")
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 366
)

// HabitService 负责 Habit 数据的增删改查
// 所有查询都带 user_id 条件，避免越权访问
type HabitService struct {
	db *gorm.DB
}

// HabitInput 定义创建/更新习惯时可配置字段
type HabitInput struct {
	Name        string
	Description string
	Color       string
	Archived    bool
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb}
}

// List 返回习惯集合
func (s *HabitService) List(userID uint, includeArchived bool) ([]db.Habit, error) {
	var habits []db.Habit

	query := s.db.Where("user_id = ?", userID)
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}

	if err := query.Order("created_at ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

// Get 根据 ID 获取习惯
func (s *HabitService) Get(userID, id uint) (*db.Habit, error) {
	var habit db.Habit
	if err := s.db.Where("user_id = ?", userID).First(&habit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &habit, nil
}

// Create 新建习惯
func (s *HabitService) Create(userID uint, input HabitInput) (*db.Habit, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrHabitNameRequired
	}

	habit := db.Habit{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Color:       strings.TrimSpace(input.Color),
		Archived:    input.Archived,
	}
	if err := s.db.Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

// Update 更新习惯
func (s *HabitService) Update(userID, id uint, input HabitInput) (*db.Habit, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrHabitNameRequired
	}

	habit, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}

	habit.Name = name
	habit.Description = strings.TrimSpace(input.Description)
	habit.Color = strings.TrimSpace(input.Color)
	habit.Archived = input.Archived

	if err := s.db.Save(habit).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return habit, nil
}

// Delete 删除习惯及其打卡记录
func (s *HabitService) Delete(userID, id uint) error {
	if _, err := s.Get(userID, id); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habit_id = ?", id).Delete(&db.HabitCompletion{}).Error; err != nil {
			return fmt.Errorf("delete habit completions: %w", err)
		}
		if err := tx.Delete(&db.Habit{}, id).Error; err != nil {
			return fmt.Errorf("delete habit: %w", err)
		}
		return nil
	})
}

// HabitCompletionService 负责打卡与统计逻辑
type HabitCompletionService struct {
	db     *gorm.DB
	habits *HabitService
}

// HabitStats 汇总单个习惯的统计数据
type HabitStats struct {
	CurrentStreak     int
	LongestStreak     int
	CompletionRate    float64
	RangeStart        time.Time
	RangeEnd          time.Time
	CompletionHistory []metrics.CompletionRecord
}

// NewHabitCompletionService 构造 HabitCompletionService
func NewHabitCompletionService(gdb *gorm.DB) *HabitCompletionService {
	return &HabitCompletionService{db: gdb, habits: NewHabitService(gdb)}
}

// Upsert 处理幂等打卡：同一习惯同一天只保留一条记录，后写覆盖 Completed
func (s *HabitCompletionService) Upsert(userID, habitID uint, day time.Time, completed bool, now time.Time) (*db.HabitCompletion, error) {
	if _, err := s.habits.Get(userID, habitID); err != nil {
		return nil, err
	}

	date := metrics.StartOfDay(day)
	if date.After(metrics.StartOfDay(now)) {
		return nil, ErrCompletionInFuture
	}

	record := db.HabitCompletion{HabitID: habitID, Date: date, Completed: completed}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "habit_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert habit completion: %w", err)
	}

	if err := s.db.Where("habit_id = ? AND date = ?", habitID, date).First(&record).Error; err != nil {
		return nil, fmt.Errorf("reload habit completion: %w", err)
	}
	return &record, nil
}

// History 返回区间内的打卡记录（按日期升序）
func (s *HabitCompletionService) History(habitID uint, from, to time.Time) ([]metrics.CompletionRecord, error) {
	var rows []db.HabitCompletion
	if err := s.db.Where("habit_id = ?", habitID).
		Where("date BETWEEN ? AND ?", metrics.StartOfDay(from), metrics.StartOfDay(to)).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list habit completions: %w", err)
	}
	return toCompletionRecords(rows), nil
}

// AllHistory 返回习惯的全部打卡记录，用于计算连续天数
func (s *HabitCompletionService) AllHistory(habitID uint) ([]metrics.CompletionRecord, error) {
	var rows []db.HabitCompletion
	if err := s.db.Where("habit_id = ?", habitID).Order("date ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list habit completions: %w", err)
	}
	return toCompletionRecords(rows), nil
}

// Stats 计算习惯在最近 days 天内的完成率与历史连续天数
func (s *HabitCompletionService) Stats(userID, habitID uint, days int, now time.Time) (*HabitStats, error) {
	if _, err := s.habits.Get(userID, habitID); err != nil {
		return nil, err
	}

	if days <= 0 {
		days = defaultHistoryDays
	}
	days = min(days, maxHistoryDays)

	all, err := s.AllHistory(habitID)
	if err != nil {
		return nil, err
	}

	end := metrics.StartOfDay(now)
	start := metrics.AddDays(end, -(days - 1))

	window := make([]metrics.CompletionRecord, 0, len(all))
	for _, record := range all {
		if !record.Date.Before(start) && !record.Date.After(end) {
			window = append(window, record)
		}
	}

	return &HabitStats{
		CurrentStreak:     metrics.CurrentStreak(all, now),
		LongestStreak:     metrics.LongestStreak(all),
		CompletionRate:    metrics.CompletionRate(window, start, end),
		RangeStart:        start,
		RangeEnd:          end,
		CompletionHistory: window,
	}, nil
}

// CompletedBetween 返回用户在区间内已完成的打卡记录（不含已删除习惯）
func (s *HabitCompletionService) CompletedBetween(userID uint, from, to time.Time) ([]db.HabitCompletion, error) {
	var rows []db.HabitCompletion
	if err := s.db.Model(&db.HabitCompletion{}).
		Select("habit_completions.*").
		Joins("JOIN habits ON habits.id = habit_completions.habit_id AND habits.deleted_at IS NULL").
		Where("habits.user_id = ?", userID).
		Where("habit_completions.completed = ?", true).
		Where("habit_completions.date BETWEEN ? AND ?", metrics.StartOfDay(from), metrics.StartOfDay(to)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list completed habits: %w", err)
	}
	return rows, nil
}

func toCompletionRecords(rows []db.HabitCompletion) []metrics.CompletionRecord {
	records := make([]metrics.CompletionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, metrics.CompletionRecord{Date: row.Date.UTC(), Completed: row.Completed})
	}
	return records
}
