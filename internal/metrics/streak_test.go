package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var streakNow = time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return AddDays(streakNow, -n)
}

func done(days ...int) []CompletionRecord {
	records := make([]CompletionRecord, 0, len(days))
	for _, d := range days {
		records = append(records, CompletionRecord{Date: daysAgo(d), Completed: true})
	}
	return records
}

func TestCurrentStreakEmptyHistory(t *testing.T) {
	assert.Equal(t, 0, CurrentStreak(nil, streakNow))
}

func TestCurrentStreakUnbrokenEndingToday(t *testing.T) {
	for n := 1; n <= 10; n++ {
		days := make([]int, n)
		for i := range days {
			days[i] = i
		}
		assert.Equal(t, n, CurrentStreak(done(days...), streakNow), "length %d", n)
	}
}

func TestCurrentStreakTodayUnmarked(t *testing.T) {
	assert.Equal(t, 3, CurrentStreak(done(1, 2, 3), streakNow))
}

func TestCurrentStreakYesterdayMissedOrAbsent(t *testing.T) {
	missed := append(done(2, 3), CompletionRecord{Date: daysAgo(1), Completed: false})
	assert.Equal(t, 0, CurrentStreak(missed, streakNow))

	absent := done(2, 3, 4)
	assert.Equal(t, 0, CurrentStreak(absent, streakNow))
}

func TestCurrentStreakTodayExplicitlyOpen(t *testing.T) {
	records := append(done(1, 2), CompletionRecord{Date: daysAgo(0), Completed: false})
	assert.Equal(t, 2, CurrentStreak(records, streakNow))
}

func TestCurrentStreakStopsAtGap(t *testing.T) {
	assert.Equal(t, 2, CurrentStreak(done(0, 1, 3, 4, 5), streakNow))
}

func TestCurrentStreakKeepsLatestWriteForDay(t *testing.T) {
	records := done(0, 1, 2)
	records = append(records, CompletionRecord{Date: daysAgo(1).Add(9 * time.Hour), Completed: false})

	assert.Equal(t, 1, CurrentStreak(records, streakNow))
}

func TestCurrentStreakIgnoresFutureRecords(t *testing.T) {
	records := append(done(0, 1), CompletionRecord{Date: AddDays(streakNow, 1), Completed: true})
	assert.Equal(t, 2, CurrentStreak(records, streakNow))
}

func TestCurrentStreakNormalizesZones(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	records := []CompletionRecord{
		{Date: time.Date(2026, 10, 18, 8, 0, 0, 0, tokyo), Completed: true},
		{Date: time.Date(2026, 10, 17, 23, 30, 0, 0, time.UTC), Completed: true},
	}

	assert.Equal(t, 1, CurrentStreak(records, streakNow))
}

func TestLongestStreak(t *testing.T) {
	records := done(10, 9, 8, 5, 4)
	records = append(records, CompletionRecord{Date: daysAgo(7), Completed: false})

	assert.Equal(t, 3, LongestStreak(records))
	assert.Equal(t, 0, LongestStreak(nil))
}

func TestCompletionRate(t *testing.T) {
	records := done(0, 2, 4, 6, 8, 12)

	assert.InDelta(t, 0.5, CompletionRate(records, daysAgo(9), streakNow), 1e-9)
	assert.Zero(t, CompletionRate(records, streakNow, daysAgo(1)))
}
