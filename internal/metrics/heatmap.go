package metrics

import (
	"math"
	"time"
)

// 强度计算的各项封顶值与权重，调整它们会改变历史热力图的结果。
const (
	focusMinutesCap   = 120
	tasksCompletedCap = 5
	habitsCompleteCap = 6

	focusWeight = 40.0
	tasksWeight = 30.0
	habitWeight = 30.0

	// monthSliverDays 是首个月份在窗口内至少需要的天数，不足则不显示标签。
	monthSliverDays = 7
)

// DayMetrics 是某一天的原始活动汇总。
type DayMetrics struct {
	FocusMinutes    int `json:"focusMinutes"`
	TasksCompleted  int `json:"tasksCompleted"`
	HabitsCompleted int `json:"habitsCompleted"`
}

// HeatmapDay is one filled cell of the grid.
type HeatmapDay struct {
	Date      time.Time `json:"date"`
	Intensity int       `json:"intensity"`
	DayMetrics
}

// HeatmapWeek holds Sunday..Saturday. A nil slot is a day after today.
type HeatmapWeek [7]*HeatmapDay

// MonthLabel marks the week column where a month's label is drawn.
type MonthLabel struct {
	Month     string `json:"month"`
	WeekIndex int    `json:"weekIndex"`
}

// Heatmap 是热力图的完整计算结果。
type Heatmap struct {
	Weeks        []HeatmapWeek `json:"weeks"`
	MonthLabels  []MonthLabel  `json:"monthLabels"`
	ActiveDays   int           `json:"activeDays"`
	FocusMinutes int           `json:"focusMinutes"`
	MaxIntensity int           `json:"maxIntensity"`
}

// Score 计算加权得分，每项指标先独立封顶再求和，满分 100。
func Score(m DayMetrics) float64 {
	focus := math.Min(float64(m.FocusMinutes)/focusMinutesCap*focusWeight, focusWeight)
	tasks := math.Min(float64(m.TasksCompleted)/tasksCompletedCap*tasksWeight, tasksWeight)
	habits := math.Min(float64(m.HabitsCompleted)/habitsCompleteCap*habitWeight, habitWeight)
	return focus + tasks + habits
}

// Intensity bands a day's score into 0..4.
func Intensity(m DayMetrics) int {
	score := Score(m)
	switch {
	case score <= 0:
		return 0
	case score < 25:
		return 1
	case score < 50:
		return 2
	case score < 75:
		return 3
	default:
		return 4
	}
}

// FirstSunday returns the Sunday that opens a window of the given number of
// calendar weeks ending with the week containing today. Snapping
// today-(7*weeks-1) back to Sunday would add an extra column on every day but
// Saturday; anchoring on the current week keeps the grid at exactly weeks columns.
func FirstSunday(today time.Time, weeks int) time.Time {
	if weeks < 1 {
		weeks = 1
	}
	day := StartOfDay(today)
	sunday := AddDays(day, -int(day.Weekday()))
	return AddDays(sunday, -7*(weeks-1))
}

// BuildHeatmap 根据稀疏的每日指标生成按周对齐（周日开始）的热力图。
// byDay 的键为 DateKey 格式，缺失的日期视为零值。
func BuildHeatmap(weeks int, byDay map[string]DayMetrics, now time.Time) Heatmap {
	today := StartOfDay(now)
	cursor := FirstSunday(today, weeks)

	var result Heatmap
	for !cursor.After(today) {
		var week HeatmapWeek
		for slot := 0; slot < 7; slot++ {
			if cursor.After(today) {
				cursor = AddDays(cursor, 1)
				continue
			}

			m := byDay[DateKey(cursor)]
			day := &HeatmapDay{Date: cursor, Intensity: Intensity(m), DayMetrics: m}
			week[slot] = day

			if day.Intensity > 0 {
				result.ActiveDays++
			}
			result.FocusMinutes += m.FocusMinutes
			result.MaxIntensity = max(result.MaxIntensity, day.Intensity)

			cursor = AddDays(cursor, 1)
		}
		result.Weeks = append(result.Weeks, week)
	}

	result.MonthLabels = MonthLabels(result.Weeks)
	return result
}

type yearMonth struct {
	year  int
	month time.Month
}

func monthOf(t time.Time) yearMonth {
	return yearMonth{year: t.Year(), month: t.Month()}
}

// MonthLabels places at most one label per week, at the first day of a month
// not yet labeled. The earliest month is dropped when it covers no more than
// a week of days in the window.
func MonthLabels(weeks []HeatmapWeek) []MonthLabel {
	counts := make(map[yearMonth]int)
	var first *yearMonth
	for _, week := range weeks {
		for _, day := range week {
			if day == nil {
				continue
			}
			ym := monthOf(day.Date)
			if first == nil {
				first = &ym
			}
			counts[ym]++
		}
	}

	labeled := make(map[yearMonth]bool)
	if first != nil && counts[*first] <= monthSliverDays {
		labeled[*first] = true
	}

	labels := make([]MonthLabel, 0, 13)
	for index, week := range weeks {
		for _, day := range week {
			if day == nil {
				continue
			}
			ym := monthOf(day.Date)
			if labeled[ym] {
				continue
			}
			labeled[ym] = true
			labels = append(labels, MonthLabel{Month: ym.month.String()[:3], WeekIndex: index})
			break
		}
	}

	return labels
}
