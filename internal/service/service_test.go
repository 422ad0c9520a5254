package service

import (
	"testing"
	"time"

	"github.com/templui/ritual/internal/db/dbtest"
	"github.com/templui/ritual/internal/repository"
)

// Friday 2026-10-16 09:30 UTC
var testNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	goals      repository.GoalRepository
	activities repository.ActivityRepository
	logs       repository.LogRepository

	goalService     *GoalService
	activityService *ActivityService
	logService      *LogService
	statsService    *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := dbtest.Open(t)
	cache := repository.NewActivityCache()

	env := &testEnv{
		goals:      repository.NewGoalRepository(database, cache),
		activities: repository.NewActivityRepository(database, cache),
		logs:       repository.NewLogRepository(database),
	}
	clock := func() time.Time { return testNow }

	env.goalService = NewGoalService(env.goals, env.activities, env.logs)
	env.goalService.now = clock
	env.activityService = NewActivityService(env.activities, env.goals, env.logs, time.UTC)
	env.activityService.now = clock
	env.logService = NewLogService(env.logs, env.activities, env.goalService, time.UTC)
	env.logService.now = clock
	env.statsService = NewStatsService(env.logs, env.activities, time.UTC)
	env.statsService.now = clock
	return env
}
