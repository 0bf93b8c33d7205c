package metrics

import (
	"fmt"
	"math"
)

// Placeholder 在无法计算比例时显示。
const Placeholder = "—"

// DayTotals 汇总某一天的计数，用于仪表盘对比。
type DayTotals struct {
	FocusMinutes    int `json:"focusMinutes"`
	TasksCompleted  int `json:"tasksCompleted"`
	TasksTotal      int `json:"tasksTotal"`
	HabitsCompleted int `json:"habitsCompleted"`
	HabitsTotal     int `json:"habitsTotal"`
}

// Card 是仪表盘上的一张指标卡片。
type Card struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Value   string `json:"value"`
	Detail  string `json:"detail,omitempty"`
	Delta   string `json:"delta,omitempty"`
	Percent *int   `json:"percent,omitempty"`
}

// Summary is the display-ready dashboard.
type Summary struct {
	Today     DayTotals `json:"today"`
	Yesterday DayTotals `json:"yesterday"`
	Streak    int       `json:"streak"`
	Cards     []Card    `json:"cards"`
}

// Ratio 返回 "done/total" 与百分比文案；total 为 0 时返回占位符。
func Ratio(done, total int) (string, string, *int) {
	if total <= 0 {
		return Placeholder, Placeholder, nil
	}
	pct := int(math.Round(float64(done) / float64(total) * 100))
	return fmt.Sprintf("%d/%d", done, total), fmt.Sprintf("%d%%", pct), &pct
}

// DeltaLabel formats the change against yesterday using render for the magnitude.
func DeltaLabel(today, yesterday int, render func(int) string) string {
	diff := today - yesterday
	switch {
	case diff == 0:
		return "Same as yesterday"
	case diff > 0:
		return "+" + render(diff) + " from yesterday"
	default:
		return "-" + render(-diff) + " from yesterday"
	}
}

func plainCount(n int) string {
	return fmt.Sprintf("%d", n)
}

// Summarize builds the dashboard cards from today's and yesterday's totals.
func Summarize(today, yesterday DayTotals, streak int) Summary {
	taskValue, taskPct, taskPercent := Ratio(today.TasksCompleted, today.TasksTotal)
	habitValue, habitPct, habitPercent := Ratio(today.HabitsCompleted, today.HabitsTotal)

	streakValue := fmt.Sprintf("%d days", streak)
	if streak == 1 {
		streakValue = "1 day"
	}

	cards := []Card{
		{
			Key:   "focus",
			Label: "Focus time",
			Value: FormatMinutes(today.FocusMinutes),
			Delta: DeltaLabel(today.FocusMinutes, yesterday.FocusMinutes, FormatMinutes),
		},
		{
			Key:     "tasks",
			Label:   "Tasks completed",
			Value:   taskValue,
			Detail:  taskPct,
			Delta:   DeltaLabel(today.TasksCompleted, yesterday.TasksCompleted, plainCount),
			Percent: taskPercent,
		},
		{
			Key:     "habits",
			Label:   "Habits done",
			Value:   habitValue,
			Detail:  habitPct,
			Delta:   DeltaLabel(today.HabitsCompleted, yesterday.HabitsCompleted, plainCount),
			Percent: habitPercent,
		},
		{
			Key:   "streak",
			Label: "Best streak",
			Value: streakValue,
		},
	}

	return Summary{Today: today, Yesterday: yesterday, Streak: streak, Cards: cards}
}
