package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/seed"
	"github.com/templui/ritual/internal/validation"
)

func intPtr(n int) *int { return &n }

func goalInput() model.GoalInput {
	return model.GoalInput{
		Slug:           "evening-stretch",
		Name:           "Evening stretch",
		Category:       model.CategoryFitness,
		CompletionType: model.CompletionIndefinite,
		Author:         model.Author{Name: "Ada"},
	}
}

func taskActivity(slug string) model.Activity {
	return model.Activity{
		Slug:       slug,
		Name:       strings.ToUpper(slug[:1]) + slug[1:],
		Type:       model.ActivityTypeTask,
		Category:   model.CategoryFitness,
		Recurrence: model.RecurrenceDaily,
		ScheduledTimes: []model.ScheduleEntry{
			{TimeOfDay: "08:00"},
		},
		Steps: []model.Step{{Slug: "do-it", Title: "Do it"}},
	}
}

func TestGoalCreate(t *testing.T) {
	env := newTestEnv(t)

	goal, err := env.goalService.Create(context.Background(), "u1", goalInput())
	require.NoError(t, err)

	assert.NotEmpty(t, goal.ID)
	assert.Equal(t, "u1", goal.Author.ID)
	assert.Equal(t, "Ada", goal.Author.Name)
	assert.Equal(t, model.GoalStatusDraft, goal.Status)
	assert.Equal(t, 1, goal.Version)
	assert.Equal(t, testNow, goal.CreatedAt)
}

func TestGoalCreateRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	in := goalInput()
	in.CompletionType = model.CompletionDatetime
	_, err := env.goalService.Create(context.Background(), "u1", in)
	assert.ErrorIs(t, err, validation.ErrInvalid)

	assert.Empty(t, env.goalService.Goals(context.Background(), "u1", repository.GoalFilter{Mine: true}))
}

func TestGoalByIDFallsBackToBundled(t *testing.T) {
	env := newTestEnv(t)
	bundled, err := seed.Goals()
	require.NoError(t, err)

	goal, err := env.goalService.ByID(context.Background(), bundled[0].ID)
	require.NoError(t, err)
	assert.Equal(t, bundled[0].Slug, goal.Slug)
	assert.NotEmpty(t, goal.Activities)

	_, err = env.goalService.ByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)
}

func TestGoalUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	goal, err := env.goalService.Create(ctx, "u1", goalInput())
	require.NoError(t, err)

	name := "Late stretch"
	updated, err := env.goalService.Update(ctx, goal.ID, model.GoalUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Late stretch", updated.Name)
	assert.Equal(t, goal.Slug, updated.Slug)

	datetime := model.CompletionDatetime
	_, err = env.goalService.Update(ctx, goal.ID, model.GoalUpdate{CompletionType: &datetime})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	date := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err = env.goalService.Update(ctx, goal.ID, model.GoalUpdate{CompletionType: &datetime, CompletionDate: &date})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletionDate)

	indefinite := model.CompletionIndefinite
	updated, err = env.goalService.Update(ctx, goal.ID, model.GoalUpdate{CompletionType: &indefinite})
	require.NoError(t, err)
	assert.Nil(t, updated.CompletionDate)

	_, err = env.goalService.Update(ctx, "missing", model.GoalUpdate{Name: &name})
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)
}

func TestGoalReplaceActivities(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	goal, err := env.goalService.Create(ctx, "u1", goalInput())
	require.NoError(t, err)

	saved, err := env.goalService.ReplaceActivities(ctx, goal.ID, []model.Activity{taskActivity("squats"), taskActivity("lunges")})
	require.NoError(t, err)
	assert.NotEmpty(t, saved[0].ID)

	loaded, err := env.goalService.ByID(ctx, goal.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Activities, 2)

	weekly := taskActivity("plank")
	weekly.Recurrence = model.RecurrenceWeekly
	_, err = env.goalService.ReplaceActivities(ctx, goal.ID, []model.Activity{weekly})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = env.goalService.ReplaceActivities(ctx, goal.ID, []model.Activity{taskActivity("a"), taskActivity("a")})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	loaded, err = env.goalService.ByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Activities, 2)
}

func TestGoalCopy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	in := goalInput()
	in.IsPublic = true
	original, err := env.goalService.Create(ctx, "u1", in)
	require.NoError(t, err)
	activities, err := env.goalService.ReplaceActivities(ctx, original.ID, []model.Activity{taskActivity("squats"), taskActivity("lunges")})
	require.NoError(t, err)

	owner := model.Author{ID: "u2", Name: "Grace"}
	copied, err := env.goalService.Copy(ctx, original.ID, owner)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, copied.ID)
	assert.Equal(t, "evening-stretch-copy-"+strconv.FormatInt(testNow.UnixMilli(), 10), copied.Slug)
	assert.False(t, copied.IsPublic)
	assert.Equal(t, model.GoalStatusDraft, copied.Status)
	assert.Equal(t, owner, copied.Author)
	assert.Equal(t, original.ID, copied.Meta[MetaCopiedFrom])

	loaded, err := env.goalService.ByID(ctx, copied.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Activities, 2)
	for i, a := range loaded.Activities {
		assert.Equal(t, activities[i].Slug, a.Slug)
		assert.NotEqual(t, activities[i].ID, a.ID)
		assert.Equal(t, copied.ID, a.GoalID)
	}

	// the original keeps its activities
	orig, err := env.goalService.ByID(ctx, original.ID)
	require.NoError(t, err)
	assert.Len(t, orig.Activities, 2)
}

func TestGoalCopyBundled(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	bundled, err := seed.Goals()
	require.NoError(t, err)

	copied, err := env.goalService.Copy(ctx, bundled[0].ID, model.Author{ID: "u1"})
	require.NoError(t, err)

	loaded, err := env.goalService.ByID(ctx, copied.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Activities, len(bundled[0].Activities))
	assert.False(t, loaded.IsPublic)
}

func TestGoalDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	keep, err := env.goalService.Create(ctx, "u1", goalInput())
	require.NoError(t, err)
	purge, err := env.goalService.Create(ctx, "u1", goalInput())
	require.NoError(t, err)

	for _, g := range []*model.Goal{keep, purge} {
		require.NoError(t, env.logs.Create(ctx, &model.FeedbackLog{
			LogBase:    model.LogBase{UserID: "u1", GoalID: g.ID},
			AuthorType: model.FeedbackAuthorUser,
			Feedback:   "note",
		}))
	}

	require.NoError(t, env.goalService.Delete(ctx, keep.ID, false))
	require.NoError(t, env.goalService.Delete(ctx, purge.ID, true))

	assert.Len(t, env.logService.GoalLogs(ctx, keep.ID), 1)
	assert.Empty(t, env.logService.GoalLogs(ctx, purge.ID))

	err = env.goalService.Delete(ctx, keep.ID, false)
	assert.True(t, errors.Is(err, repository.ErrGoalNotFound))
}

func TestGoalsSwallowsStorageErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	database := sqlx.NewDb(mockDB, "sqlite")
	cache := repository.NewActivityCache()
	svc := NewGoalService(
		repository.NewGoalRepository(database, cache),
		repository.NewActivityRepository(database, cache),
		repository.NewLogRepository(database),
	)
	mock.ExpectQuery("SELECT (.+) FROM .goals.").WillReturnError(errors.New("disk I/O error"))

	goals := svc.Goals(context.Background(), "u1", repository.GoalFilter{Mine: true})
	assert.NotNil(t, goals)
	assert.Empty(t, goals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComputeProgress(t *testing.T) {
	goal := &model.Goal{
		CompletionType: model.CompletionActivityCount,
		Meta:           map[string]any{model.MetaTargetCount: 2},
		Activities:     []model.Activity{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}},
	}
	logs := []model.Log{
		&model.ActivityLog{LogBase: model.LogBase{UserID: "u1"}, ActivityID: "a1"},
		&model.ActivityLog{LogBase: model.LogBase{UserID: "u1"}, ActivityID: "a1"},
		&model.ActivityLog{LogBase: model.LogBase{UserID: "u2"}, ActivityID: "a2"},
		&model.ActivityLog{LogBase: model.LogBase{UserID: "u1"}, ActivityID: "gone"},
	}

	p := computeProgress(goal, logs, "u1", testNow)
	assert.Equal(t, model.Progress{Completed: 1, Total: 2}, *p)

	logs = append(logs, &model.ActivityLog{LogBase: model.LogBase{UserID: "u1"}, ActivityID: "a3"})
	p = computeProgress(goal, logs, "u1", testNow)
	assert.True(t, p.IsCompleted)

	past := testNow.Add(-time.Hour)
	goal = &model.Goal{CompletionType: model.CompletionDatetime, CompletionDate: &past}
	assert.True(t, computeProgress(goal, nil, "u1", testNow).IsCompleted)
}
