package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/stats"
)

type StatsService struct {
	logRepo      repository.LogRepository
	activityRepo repository.ActivityRepository
	loc          *time.Location
	now          func() time.Time
}

func NewStatsService(logRepo repository.LogRepository, activityRepo repository.ActivityRepository, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{
		logRepo:      logRepo,
		activityRepo: activityRepo,
		loc:          loc,
		now:          time.Now,
	}
}

// GoalStats aggregates every log of a goal against the goal's activities.
// Storage failures are logged and aggregate as if there were no data.
func (s *StatsService) GoalStats(ctx context.Context, goalID string, filter stats.Filter) stats.Summary {
	if filter.Location == nil {
		filter.Location = s.loc
	}

	logs, err := s.logRepo.GoalLogs(ctx, goalID)
	if err != nil {
		slog.Error("failed to load goal logs for stats", "error", err, "goal_id", goalID)
		logs = nil
	}

	activities, err := s.activityRepo.Activities(ctx, repository.ActivityFilter{GoalID: goalID})
	if err != nil {
		slog.Error("failed to load activities for stats", "error", err, "goal_id", goalID)
		activities = nil
	}

	return stats.Aggregate(logs, activities, filter)
}

// Streak counts the consecutive days, ending today, on which the user
// logged anything. A non-empty goalID restricts the count to that goal.
func (s *StatsService) Streak(ctx context.Context, userID, goalID string) int {
	logs, err := s.logRepo.UserLogs(ctx, userID)
	if err != nil {
		slog.Error("failed to load logs for streak", "error", err, "user_id", userID)
		return 0
	}

	if goalID != "" {
		scoped := make([]model.Log, 0, len(logs))
		for _, l := range logs {
			if l.Common().GoalID == goalID {
				scoped = append(scoped, l)
			}
		}
		logs = scoped
	}

	return stats.Streak(logs, s.now(), s.loc)
}
