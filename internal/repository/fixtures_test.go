package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/templui/ritual/internal/model"
)

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func intPtr(n int) *int { return &n }

func newGoal(authorID string) *model.Goal {
	return &model.Goal{
		ID:             uuid.New().String(),
		Slug:           "morning-routine",
		Name:           "Morning routine",
		Description:    "Start the day well",
		Category:       model.CategorySelfCare,
		Tags:           []string{"morning"},
		Author:         model.Author{ID: authorID, Name: "Ada"},
		CreatedAt:      testNow,
		UpdatedAt:      testNow,
		Version:        1,
		Status:         model.GoalStatusDraft,
		CompletionType: model.CompletionIndefinite,
	}
}

func newActivity(goalID, slug string) model.Activity {
	return model.Activity{
		ID:                   uuid.New().String(),
		GoalID:               goalID,
		Slug:                 slug,
		Name:                 "Breathing",
		Description:          "Box breathing",
		Type:                 model.ActivityTypeGuided,
		Category:             model.CategorySelfCare,
		NotificationsEnabled: true,
		Recurrence:           model.RecurrenceWeekly,
		ScheduledTimes: []model.ScheduleEntry{
			{TimeOfDay: "07:00", DayOfWeek: intPtr(1)},
			{TimeOfDay: "07:00", DayOfWeek: intPtr(4)},
		},
		Steps: []model.Step{
			{ID: "s1", Slug: "inhale", Title: "Inhale", Duration: intPtr(4), DurationUnit: model.DurationSeconds},
			{ID: "s2", Slug: "exhale", Title: "Exhale", Duration: intPtr(4), DurationUnit: model.DurationSeconds, VisibleIf: []string{"inhale"}},
		},
		CompletionPrompts: []model.CompletionPrompt{
			{ID: "p1", Slug: "calm", Question: "Calmer?", AnswerType: model.AnswerBoolean},
			{
				ID: "p2", Slug: "mood", Question: "Mood?", AnswerType: model.AnswerSelect,
				Select:    &model.SelectConstraints{Options: []model.SelectOption{{Label: "Good", Value: "good"}}},
				DependsOn: &model.PromptDependency{Slug: "calm", Value: true},
			},
		},
		ReliesOn:        []model.ActivityDependency{{Slug: "warm-up"}},
		UnlockCondition: model.UnlockAfterDays,
		UnlockParams:    &model.UnlockParams{Days: 3},
		Meta:            map[string]any{"color": "blue", "weight": 2.5},
	}
}
