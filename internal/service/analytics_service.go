package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/horizon/internal/db"
	"github.com/horizon/internal/metrics"
	"gorm.io/gorm"
)

// AnalyticsService 负责聚合每日专注/任务/习惯数据，生成热力图与仪表盘。
type AnalyticsService struct {
	db          *gorm.DB
	habits      *HabitService
	completions *HabitCompletionService
}

// DailyEntry 是热力图接口返回的稀疏每日数据。
type DailyEntry struct {
	Date time.Time
	metrics.DayMetrics
}

// HeatmapResult 同时包含原始每日数据与按周对齐后的网格。
type HeatmapResult struct {
	Days []DailyEntry
	Grid metrics.Heatmap
}

// NewAnalyticsService 创建 AnalyticsService。
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{
		db:          gdb,
		habits:      NewHabitService(gdb),
		completions: NewHabitCompletionService(gdb),
	}
}

// DailyMetrics 统计 [from, to] 区间内每天的专注分钟数、完成任务数与完成习惯数，键为 YYYY-MM-DD。
func (s *AnalyticsService) DailyMetrics(userID uint, from, to time.Time) (map[string]metrics.DayMetrics, error) {
	start := metrics.StartOfDay(from)
	end := metrics.AddDays(to, 1)
	result := make(map[string]metrics.DayMetrics)

	var sessions []db.FocusSession
	if err := s.db.Where("user_id = ? AND status = ?", userID, string(metrics.StatusCompleted)).
		Where("ended_at >= ? AND ended_at < ?", start, end).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list completed focus sessions: %w", err)
	}

	focusSeconds := make(map[string]int)
	for _, session := range sessions {
		if session.EndedAt == nil {
			continue
		}
		focusSeconds[metrics.DateKey(*session.EndedAt)] += session.ActiveSeconds
	}
	for key, seconds := range focusSeconds {
		m := result[key]
		m.FocusMinutes = seconds / 60
		result[key] = m
	}

	var tasks []db.Task
	if err := s.db.Where("user_id = ? AND status = ?", userID, db.TaskStatusDone).
		Where("completed_at >= ? AND completed_at < ?", start, end).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	for _, task := range tasks {
		if task.CompletedAt == nil {
			continue
		}
		key := metrics.DateKey(*task.CompletedAt)
		m := result[key]
		m.TasksCompleted++
		result[key] = m
	}

	completions, err := s.completions.CompletedBetween(userID, start, metrics.StartOfDay(to))
	if err != nil {
		return nil, err
	}
	for _, completion := range completions {
		key := metrics.DateKey(completion.Date)
		m := result[key]
		m.HabitsCompleted++
		result[key] = m
	}

	return result, nil
}

// Heatmap 生成最近 weeks 周（含本周）的热力图。
func (s *AnalyticsService) Heatmap(userID uint, weeks int, now time.Time) (HeatmapResult, error) {
	from := metrics.FirstSunday(now, weeks)

	byDay, err := s.DailyMetrics(userID, from, now)
	if err != nil {
		return HeatmapResult{}, err
	}

	days := make([]DailyEntry, 0, len(byDay))
	for key, m := range byDay {
		date, err := metrics.ParseDateKey(key)
		if err != nil {
			return HeatmapResult{}, err
		}
		days = append(days, DailyEntry{Date: date, DayMetrics: m})
	}
	slices.SortFunc(days, func(a, b DailyEntry) int {
		return a.Date.Compare(b.Date)
	})

	return HeatmapResult{Days: days, Grid: metrics.BuildHeatmap(weeks, byDay, now)}, nil
}

// Dashboard 汇总今天与昨天的数据，并计算所有习惯中最长的当前连续天数。
func (s *AnalyticsService) Dashboard(userID uint, now time.Time) (metrics.Summary, error) {
	today := metrics.StartOfDay(now)
	yesterday := metrics.AddDays(today, -1)

	byDay, err := s.DailyMetrics(userID, yesterday, today)
	if err != nil {
		return metrics.Summary{}, err
	}

	todayTotals := totalsFrom(byDay[metrics.DateKey(today)])
	yesterdayTotals := totalsFrom(byDay[metrics.DateKey(yesterday)])

	if todayTotals.TasksTotal, err = s.tasksScheduledOn(userID, today); err != nil {
		return metrics.Summary{}, err
	}
	if yesterdayTotals.TasksTotal, err = s.tasksScheduledOn(userID, yesterday); err != nil {
		return metrics.Summary{}, err
	}

	habits, err := s.habits.List(userID, false)
	if err != nil {
		return metrics.Summary{}, err
	}

	// 已完成数只统计计入分母的习惯，归档习惯的打卡不计入仪表盘
	todayTotals.HabitsCompleted, yesterdayTotals.HabitsCompleted = 0, 0

	streak := 0
	for _, habit := range habits {
		history, err := s.completions.AllHistory(habit.ID)
		if err != nil {
			return metrics.Summary{}, err
		}
		done := completedDays(history)

		created := metrics.StartOfDay(habit.CreatedAt)
		for _, day := range []struct {
			date   time.Time
			totals *metrics.DayTotals
		}{
			{today, &todayTotals},
			{yesterday, &yesterdayTotals},
		} {
			// 补打卡早于创建日的习惯同样计入当天分母
			if created.After(day.date) && !done[day.date] {
				continue
			}
			day.totals.HabitsTotal++
			if done[day.date] {
				day.totals.HabitsCompleted++
			}
		}

		streak = max(streak, metrics.CurrentStreak(history, now))
	}

	return metrics.Summarize(todayTotals, yesterdayTotals, streak), nil
}

// tasksScheduledOn 统计当天到期或当天完成的任务数量。
func (s *AnalyticsService) tasksScheduledOn(userID uint, day time.Time) (int, error) {
	start := metrics.StartOfDay(day)
	end := metrics.AddDays(start, 1)

	var count int64
	if err := s.db.Model(&db.Task{}).
		Where("user_id = ?", userID).
		Where("(due_date >= ? AND due_date < ?) OR (completed_at >= ? AND completed_at < ?)", start, end, start, end).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count scheduled tasks: %w", err)
	}
	return int(count), nil
}

func completedDays(history []metrics.CompletionRecord) map[time.Time]bool {
	done := make(map[time.Time]bool, len(history))
	for _, record := range metrics.NormalizeCompletions(history) {
		done[record.Date] = record.Completed
	}
	return done
}

func totalsFrom(m metrics.DayMetrics) metrics.DayTotals {
	return metrics.DayTotals{
		FocusMinutes:    m.FocusMinutes,
		TasksCompleted:  m.TasksCompleted,
		HabitsCompleted: m.HabitsCompleted,
	}
}
