// Package schedule decides which activities are due on a given day.
//
// One rule serves every caller: a daily entry is due once its time of day has
// been reached today, and a weekly entry is due all day on its weekday.
// FiringAt is the separate exact-minute rule used to trigger reminders.
package schedule

import (
	"slices"
	"time"

	"github.com/templui/ritual/internal/model"
)

// Due reports whether any schedule entry of a applies to now. Weekly entries
// match on the weekday alone; daily entries also need their time reached.
// Activities without a recurrence or schedule are never due.
func Due(a model.Activity, now time.Time) bool {
	entries := matchingEntries(a, now)
	if a.Recurrence == model.RecurrenceWeekly {
		return len(entries) > 0
	}
	for _, entry := range entries {
		h, m, err := entry.Clock()
		if err != nil {
			continue
		}
		if minuteOfDay(h, m) <= minuteOfDay(now.Hour(), now.Minute()) {
			return true
		}
	}
	return false
}

// Pending returns the activities due by now that are not in completedIDs.
func Pending(activities []model.Activity, completedIDs []string, now time.Time) []model.Activity {
	pending := []model.Activity{}
	for _, a := range activities {
		if slices.Contains(completedIDs, a.ID) {
			continue
		}
		if Due(a, now) {
			pending = append(pending, a)
		}
	}
	return pending
}

// FiringAt returns the activities with reminders enabled whose schedule
// names exactly the current minute.
func FiringAt(activities []model.Activity, now time.Time) []model.Activity {
	firing := []model.Activity{}
	for _, a := range activities {
		if !a.NotificationsEnabled {
			continue
		}
		for _, entry := range matchingEntries(a, now) {
			h, m, err := entry.Clock()
			if err != nil {
				continue
			}
			if h == now.Hour() && m == now.Minute() {
				firing = append(firing, a)
				break
			}
		}
	}
	return firing
}

// NextOccurrence returns the first scheduled time of a strictly after now,
// looking at most a week ahead.
func NextOccurrence(a model.Activity, now time.Time) (time.Time, bool) {
	var next time.Time
	found := false
	for offset := 0; offset <= 7; offset++ {
		day := now.AddDate(0, 0, offset)
		for _, entry := range matchingEntries(a, day) {
			h, m, err := entry.Clock()
			if err != nil {
				continue
			}
			y, mo, d := day.Date()
			at := time.Date(y, mo, d, h, m, 0, 0, now.Location())
			if !at.After(now) {
				continue
			}
			if !found || at.Before(next) {
				next = at
				found = true
			}
		}
		if found {
			return next, true
		}
	}
	return time.Time{}, false
}

// matchingEntries returns the schedule entries of a that apply on the
// calendar day of now.
func matchingEntries(a model.Activity, now time.Time) []model.ScheduleEntry {
	if len(a.ScheduledTimes) == 0 {
		return nil
	}

	switch a.Recurrence {
	case model.RecurrenceDaily:
		return a.ScheduledTimes
	case model.RecurrenceWeekly:
		var entries []model.ScheduleEntry
		for _, entry := range a.ScheduledTimes {
			day, ok := entry.Weekday()
			if ok && day == now.Weekday() {
				entries = append(entries, entry)
			}
		}
		return entries
	}
	return nil
}

func minuteOfDay(hour, minute int) int {
	return hour*60 + minute
}
