package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/ritual/internal/model"
)

var base = time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC)

func activityLog(activityID string, at time.Time) *model.ActivityLog {
	return &model.ActivityLog{
		LogBase:    model.LogBase{GoalID: "g1", UserID: "u1", CreatedAt: at},
		ActivityID: activityID,
	}
}

func stepLog(activityID string, seconds int, at time.Time) *model.StepLog {
	return &model.StepLog{
		LogBase:           model.LogBase{GoalID: "g1", UserID: "u1", CreatedAt: at},
		ActivityID:        activityID,
		StepID:            "s1",
		DurationInSeconds: &seconds,
	}
}

func promptLog(promptID string, t model.AnswerType, answer model.Answer) *model.PromptLog {
	return &model.PromptLog{
		LogBase:    model.LogBase{GoalID: "g1", UserID: "u1", CreatedAt: base},
		ActivityID: "a1",
		PromptID:   promptID,
		AnswerType: t,
		Answer:     answer,
	}
}

var activities = []model.Activity{
	{ID: "a1", Slug: "meditation", Category: model.CategorySelfCare, Type: model.ActivityTypeGuided},
	{ID: "a2", Slug: "budget", Category: model.CategoryFinance, Type: model.ActivityTypeTask},
}

func TestAggregateCountsAndDurationsFromDifferentLogs(t *testing.T) {
	logs := []model.Log{
		activityLog("a1", base),
		activityLog("a1", base.Add(time.Hour)),
		activityLog("a1", base.Add(2*time.Hour)),
		stepLog("a1", 60, base),
		stepLog("a1", 120, base.Add(time.Minute)),
	}

	s := Aggregate(logs, activities, Filter{})

	require.Contains(t, s.ItemStats, "meditation")
	assert.Equal(t, 3, s.ItemStats["meditation"].Count)
	assert.Equal(t, 180, s.ItemStats["meditation"].TotalDuration)
	assert.Equal(t, 3, s.TotalCompleted)
	assert.Equal(t, 180, s.TotalTimeSpent)

	require.Contains(t, s.CategoryStats, model.CategorySelfCare)
	assert.Equal(t, "Self-Care", s.CategoryStats[model.CategorySelfCare].Label)
	assert.Equal(t, 3, s.CategoryStats[model.CategorySelfCare].Count)
	assert.Equal(t, 180, s.CategoryStats[model.CategorySelfCare].TotalDuration)
}

func TestAggregateTiming(t *testing.T) {
	completed := base.Add(-30 * time.Minute)
	late := activityLog("a1", base.Add(48*time.Hour))
	early := activityLog("a1", base)
	early.CompletedAt = &completed

	s := Aggregate([]model.Log{late, early}, activities, Filter{})

	require.Contains(t, s.ActivityTiming, "a1")
	timing := s.ActivityTiming["a1"]
	assert.Equal(t, completed, timing.FirstCompletedAt)
	assert.Equal(t, base.Add(48*time.Hour), timing.LastCompletedAt)
	assert.Equal(t, 2, timing.Count)
}

func TestAggregateTimeSeriesAndConsistency(t *testing.T) {
	day := 24 * time.Hour
	logs := []model.Log{
		stepLog("a1", 10, base),
		stepLog("a1", 20, base.Add(time.Hour)),
		stepLog("a1", 30, base.Add(day)),
		stepLog("a1", 40, base.Add(3*day)),
		stepLog("a1", 50, base.Add(4*day)),
		stepLog("a1", 60, base.Add(5*day)),
	}

	s := Aggregate(logs, activities, Filter{})

	require.Len(t, s.TimeSeries, 5)
	assert.Equal(t, DayBucket{Date: "2026-10-10", Counter: Counter{Count: 2, TotalDuration: 30}}, s.TimeSeries[0])
	assert.Equal(t, "2026-10-15", s.TimeSeries[4].Date)
	assert.Equal(t, Consistency{ActiveDays: 5, LongestRun: 3, TrailingRun: 3}, s.Consistency)
}

func TestAggregatePromptHistogram(t *testing.T) {
	logs := []model.Log{
		promptLog("mood", model.AnswerSelect, model.StringAnswer("calm")),
		promptLog("mood", model.AnswerSelect, model.ListAnswer("calm", "tired")),
		promptLog("felt-good", model.AnswerBoolean, model.BoolAnswer(true)),
		promptLog("notes", model.AnswerText, model.StringAnswer("ignored")),
	}

	s := Aggregate(logs, activities, Filter{})

	assert.Equal(t, map[string]map[string]int{
		"mood":      {"calm": 2, "tired": 1},
		"felt-good": {"true": 1},
	}, s.PromptStats)
}

func TestAggregateFilters(t *testing.T) {
	logs := []model.Log{
		activityLog("a1", base),
		activityLog("a2", base),
		activityLog("a2", base.Add(72*time.Hour)),
		activityLog("deleted", base),
	}

	s := Aggregate(logs, activities, Filter{Category: model.CategoryFinance})
	assert.Equal(t, 2, s.TotalCompleted)
	assert.NotContains(t, s.ItemStats, "meditation")

	s = Aggregate(logs, activities, Filter{ActivityType: model.ActivityTypeGuided})
	assert.Equal(t, 1, s.TotalCompleted)

	s = Aggregate(logs, activities, Filter{To: base.Add(time.Hour)})
	assert.Equal(t, 3, s.TotalCompleted)
	assert.Equal(t, 1, s.ItemStats["budget"].Count)

	s = Aggregate(logs, activities, Filter{})
	assert.Equal(t, 4, s.TotalCompleted)
}

func TestAggregateUserFilter(t *testing.T) {
	other := activityLog("a1", base)
	other.UserID = "u2"
	logs := []model.Log{activityLog("a1", base), activityLog("a2", base), other}

	s := Aggregate(logs, activities, Filter{UserID: "u1"})
	assert.Equal(t, 2, s.TotalCompleted)
	assert.Equal(t, 1, s.ItemStats["meditation"].Count)

	s = Aggregate(logs, activities, Filter{UserID: "u2"})
	assert.Equal(t, 1, s.TotalCompleted)
	assert.NotContains(t, s.ItemStats, "budget")
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, nil, Filter{})

	assert.Zero(t, s.TotalCompleted)
	assert.Empty(t, s.TimeSeries)
	assert.NotNil(t, s.ItemStats)
	assert.Equal(t, Consistency{}, s.Consistency)
}
