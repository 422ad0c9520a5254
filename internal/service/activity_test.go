package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/validation"
)

func activitySlugs(activities []model.Activity) []string {
	slugs := make([]string, 0, len(activities))
	for _, a := range activities {
		slugs = append(slugs, a.Slug)
	}
	return slugs
}

func scheduled(slug string, rec model.Recurrence, entries ...model.ScheduleEntry) model.Activity {
	a := taskActivity(slug)
	a.Recurrence = rec
	a.ScheduledTimes = entries
	return a
}

func TestActivityCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	goal, err := env.goalService.Create(ctx, "u1", goalInput())
	require.NoError(t, err)

	a := taskActivity("squats")
	a.GoalID = goal.ID
	require.NoError(t, env.activityService.Create(ctx, &a))
	assert.NotEmpty(t, a.ID)

	dup := taskActivity("squats")
	dup.GoalID = goal.ID
	err = env.activityService.Create(ctx, &dup)
	assert.ErrorIs(t, err, validation.ErrInvalid)

	orphan := taskActivity("lunges")
	orphan.GoalID = "missing"
	err = env.activityService.Create(ctx, &orphan)
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)

	found, err := env.activityService.BySlug(ctx, goal.ID, "squats")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
}

func TestActivityUpdateRejectsTakenSlug(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	goal, err := env.goalService.Create(ctx, "u1", goalInput())
	require.NoError(t, err)
	saved, err := env.goalService.ReplaceActivities(ctx, goal.ID, []model.Activity{taskActivity("squats"), taskActivity("lunges")})
	require.NoError(t, err)

	lunges := saved[1]
	lunges.Slug = "squats"
	err = env.activityService.Update(ctx, &lunges)
	assert.ErrorIs(t, err, validation.ErrInvalid)

	lunges.Slug = "side-lunges"
	require.NoError(t, env.activityService.Update(ctx, &lunges))

	loaded, err := env.activityService.ByID(ctx, lunges.ID)
	require.NoError(t, err)
	assert.Equal(t, "side-lunges", loaded.Slug)
	assert.Equal(t, goal.ID, loaded.GoalID)
}

func TestPendingToday(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	goal, err := env.goalService.Create(ctx, "u1", goalInput())
	require.NoError(t, err)
	friday := 5
	thursday := 4
	saved, err := env.goalService.ReplaceActivities(ctx, goal.ID, []model.Activity{
		scheduled("early", model.RecurrenceDaily, model.ScheduleEntry{TimeOfDay: "08:00"}),
		scheduled("late", model.RecurrenceDaily, model.ScheduleEntry{TimeOfDay: "18:00"}),
		scheduled("friday", model.RecurrenceWeekly, model.ScheduleEntry{TimeOfDay: "09:00", DayOfWeek: &friday}),
		scheduled("thursday", model.RecurrenceWeekly, model.ScheduleEntry{TimeOfDay: "09:00", DayOfWeek: &thursday}),
	})
	require.NoError(t, err)

	pending := env.activityService.PendingToday(ctx, "u1", goal.ID)
	assert.Equal(t, []string{"early", "friday"}, activitySlugs(pending))

	require.NoError(t, env.logService.Create(ctx, &model.ActivityLog{
		LogBase:    model.LogBase{UserID: "u1", GoalID: goal.ID},
		ActivityID: saved[0].ID,
	}))

	pending = env.activityService.PendingToday(ctx, "u1", goal.ID)
	assert.Equal(t, []string{"friday"}, activitySlugs(pending))

	// completion by another user does not count
	pending = env.activityService.PendingToday(ctx, "u2", goal.ID)
	assert.Equal(t, []string{"early", "friday"}, activitySlugs(pending))

	all := env.activityService.AllPendingToday(ctx, "u1")
	assert.Equal(t, []string{"friday"}, activitySlugs(all))

	assert.Empty(t, env.activityService.AllPendingToday(ctx, "nobody"))
}

func TestReminders(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	goal, err := env.goalService.Create(ctx, "u1", goalInput())
	require.NoError(t, err)

	now := scheduled("now", model.RecurrenceDaily, model.ScheduleEntry{TimeOfDay: "09:30"})
	now.NotificationsEnabled = true
	muted := scheduled("muted", model.RecurrenceDaily, model.ScheduleEntry{TimeOfDay: "09:30"})
	later := scheduled("later", model.RecurrenceDaily, model.ScheduleEntry{TimeOfDay: "09:31"})
	later.NotificationsEnabled = true

	_, err = env.goalService.ReplaceActivities(ctx, goal.ID, []model.Activity{now, muted, later})
	require.NoError(t, err)

	assert.Equal(t, []string{"now"}, activitySlugs(env.activityService.Reminders(ctx, "u1")))
}

func TestActivityStates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	goal, err := env.goalService.Create(ctx, "u1", goalInput())
	require.NoError(t, err)

	second := taskActivity("second")
	second.UnlockCondition = model.UnlockAfterPriorCompletion
	third := taskActivity("third")
	third.ReliesOn = []model.ActivityDependency{{Slug: "first"}, {Slug: "second"}}

	saved, err := env.goalService.ReplaceActivities(ctx, goal.ID, []model.Activity{taskActivity("first"), second, third})
	require.NoError(t, err)

	unlocked := func() []bool {
		states, err := env.activityService.States(ctx, "u1", goal.ID)
		require.NoError(t, err)
		out := make([]bool, 0, len(states))
		for _, s := range states {
			out = append(out, s.Unlocked)
		}
		return out
	}

	assert.Equal(t, []bool{true, false, false}, unlocked())

	require.NoError(t, env.logService.Create(ctx, &model.ActivityLog{
		LogBase:    model.LogBase{UserID: "u1", GoalID: goal.ID},
		ActivityID: saved[0].ID,
	}))
	assert.Equal(t, []bool{true, true, false}, unlocked())

	require.NoError(t, env.logService.Create(ctx, &model.ActivityLog{
		LogBase:    model.LogBase{UserID: "u1", GoalID: goal.ID},
		ActivityID: saved[1].ID,
	}))
	assert.Equal(t, []bool{true, true, true}, unlocked())

	_, err = env.activityService.States(ctx, "u1", "missing")
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)
}
