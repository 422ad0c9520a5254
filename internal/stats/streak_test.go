package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/templui/ritual/internal/model"
)

func logsOnDays(now time.Time, offsets ...int) []model.Log {
	var logs []model.Log
	for _, o := range offsets {
		logs = append(logs, activityLog("a1", now.AddDate(0, 0, -o)))
	}
	return logs
}

func TestStreak(t *testing.T) {
	now := time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		offsets []int
		want    int
	}{
		{"today and two days before", []int{0, 1, 2}, 3},
		{"gap breaks the run", []int{0, 1, 2, 4, 5}, 3},
		{"nothing today", []int{1, 2}, 0},
		{"only today", []int{0}, 1},
		{"no logs", nil, 0},
		{"duplicates on a day", []int{0, 0, 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(logsOnDays(now, tt.offsets...), now, time.UTC))
		})
	}
}

func TestStreakUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 23:30 UTC on the 16th is already the 17th in loc
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, loc)
	logs := []model.Log{activityLog("a1", time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC))}

	assert.Equal(t, 1, Streak(logs, now, loc))
	assert.Equal(t, 0, Streak(logs, now, time.UTC))
}
