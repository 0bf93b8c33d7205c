package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout 是 API 与热力图使用的日期键格式。
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// ErrMalformedTimestamp 表示上游传入了无法解析的时间戳。
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// StartOfDay 返回 t 所在 UTC 自然日的零点。
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween 返回 a 到 b 之间相差的 UTC 自然日数，b 早于 a 时为负数。
func DaysBetween(a, b time.Time) int {
	diff := StartOfDay(b).Unix() - StartOfDay(a).Unix()
	return int(diff / secondsPerDay)
}

// AddDays 在 UTC 日历上平移 n 天。
func AddDays(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, n)
}

// DateKey 返回 t 的 UTC 日期键（YYYY-MM-DD）。
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key into UTC midnight.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(key), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, key)
	}
	return t, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	DateLayout,
}

// ParseTimestamp 将 ISO-8601 字符串解析为 UTC 时间。无时区的输入按 UTC 处理。
func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrMalformedTimestamp)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
}

// FormatDueLabel 生成相对截止日期的展示文案。
func FormatDueLabel(due, now time.Time) string {
	days := DaysBetween(now, due)
	switch {
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	case days > 1:
		return fmt.Sprintf("Due in %d days", days)
	case days == -1:
		return "Overdue by 1 day"
	default:
		return fmt.Sprintf("Overdue by %d days", -days)
	}
}

// FormatClock renders a countdown as MM:SS. Negative input is overtime and is
// rendered as +MM:SS past the target.
func FormatClock(seconds int) string {
	prefix := ""
	if seconds < 0 {
		prefix = "+"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", prefix, seconds/60, seconds%60)
}

// FormatMinutes renders a minute count as "45m", "1h" or "1h 24m".
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}

	hours, rest := minutes/60, minutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%s%dm", sign, rest)
	case rest == 0:
		return fmt.Sprintf("%s%dh", sign, hours)
	default:
		return fmt.Sprintf("%s%dh %dm", sign, hours, rest)
	}
}
