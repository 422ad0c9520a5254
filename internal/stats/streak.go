package stats

import (
	"time"

	"github.com/templui/ritual/internal/model"
)

// Streak counts consecutive days with at least one log, walking backward
// from the day of now in loc. A day without logs today means no streak.
func Streak(logs []model.Log, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}

	active := make(map[string]bool, len(logs))
	for _, l := range logs {
		active[l.Common().CreatedAt.In(loc).Format(dayLayout)] = true
	}

	streak := 0
	day := now.In(loc)
	for active[day.Format(dayLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
