package metrics

import (
	"slices"
	"time"
)

// CompletionRecord 是习惯在某一天的打卡状态。
type CompletionRecord struct {
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

// NormalizeCompletions 将记录归一到 UTC 零点并按天去重，同一天以后出现的记录为准。
// 返回结果按日期升序排列。
func NormalizeCompletions(records []CompletionRecord) []CompletionRecord {
	byDay := make(map[time.Time]bool, len(records))
	for _, record := range records {
		byDay[StartOfDay(record.Date)] = record.Completed
	}

	out := make([]CompletionRecord, 0, len(byDay))
	for day, completed := range byDay {
		out = append(out, CompletionRecord{Date: day, Completed: completed})
	}

	slices.SortFunc(out, func(a, b CompletionRecord) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// CurrentStreak counts consecutive completed days walking backward from today.
// A day that is still in progress (no record, or not yet marked complete) does
// not break the streak; the walk then starts from yesterday.
func CurrentStreak(records []CompletionRecord, now time.Time) int {
	days := NormalizeCompletions(records)
	if len(days) == 0 {
		return 0
	}
	slices.Reverse(days)

	today := StartOfDay(now)
	cursor := today

	var todayDone bool
	for _, day := range days {
		if day.Date.Equal(today) {
			todayDone = day.Completed
			break
		}
	}
	if !todayDone {
		cursor = AddDays(today, -1)
	}

	streak := 0
	for _, day := range days {
		switch day.Date.Compare(cursor) {
		case 1:
			continue
		case -1:
			return streak
		}

		if !day.Completed {
			return streak
		}
		streak++
		cursor = AddDays(cursor, -1)
	}

	return streak
}

// LongestStreak 返回历史上最长的连续完成天数。
func LongestStreak(records []CompletionRecord) int {
	days := NormalizeCompletions(records)

	longest, run := 0, 0
	var prev time.Time
	for _, day := range days {
		if !day.Completed {
			run = 0
			continue
		}
		if run > 0 && DaysBetween(prev, day.Date) == 1 {
			run++
		} else {
			run = 1
		}
		prev = day.Date
		longest = max(longest, run)
	}

	return longest
}

// CompletionRate 返回区间内完成天数占总天数的比例，区间为空时返回 0。
func CompletionRate(records []CompletionRecord, from, to time.Time) float64 {
	total := DaysBetween(from, to) + 1
	if total <= 0 {
		return 0
	}

	start, end := StartOfDay(from), StartOfDay(to)
	done := 0
	for _, day := range NormalizeCompletions(records) {
		if day.Completed && !day.Date.Before(start) && !day.Date.After(end) {
			done++
		}
	}

	return float64(done) / float64(total)
}
