package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/seed"
	"github.com/templui/ritual/internal/validation"
)

type LogService struct {
	repo         repository.LogRepository
	activityRepo repository.ActivityRepository
	goalService  *GoalService
	loc          *time.Location
	now          func() time.Time
}

func NewLogService(
	repo repository.LogRepository,
	activityRepo repository.ActivityRepository,
	goalService *GoalService,
	loc *time.Location,
) *LogService {
	if loc == nil {
		loc = time.UTC
	}
	return &LogService{
		repo:         repo,
		activityRepo: activityRepo,
		goalService:  goalService,
		loc:          loc,
		now:          time.Now,
	}
}

// Create validates and appends a log. Activity logs refresh the goal's
// progress snapshot afterwards.
func (s *LogService) Create(ctx context.Context, log model.Log) error {
	activity, err := s.activityFor(ctx, log)
	if err != nil {
		return err
	}

	if al, ok := log.(*model.ActivityLog); ok && activity != nil {
		if al.ActivityType == "" {
			al.ActivityType = activity.Type
		}
		if al.CompletedAt == nil {
			completed := s.now().UTC()
			al.CompletedAt = &completed
		}
	}

	err = validation.ValidateLog(log, activity)
	if err != nil {
		return err
	}

	base := log.Common()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = s.now().UTC()
	}
	err = s.repo.Create(ctx, log)
	if err != nil {
		slog.Error("failed to create log", "error", err, "type", log.Type(), "user_id", base.UserID, "goal_id", base.GoalID)
		return fmt.Errorf("failed to create %s log: %w", log.Type(), err)
	}

	if log.Type() == model.LogTypeActivity && s.goalService != nil {
		_, err = s.goalService.RefreshProgress(ctx, base.UserID, base.GoalID)
		if err != nil {
			slog.Warn("failed to refresh goal progress", "error", err, "goal_id", base.GoalID)
		}
	}
	return nil
}

// activityFor loads the activity a log refers to, if it names one.
func (s *LogService) activityFor(ctx context.Context, log model.Log) (*model.Activity, error) {
	var activityID string
	switch l := log.(type) {
	case *model.ActivityLog:
		activityID = l.ActivityID
	case *model.PromptLog:
		activityID = l.ActivityID
	case *model.StepLog:
		activityID = l.ActivityID
	}
	if activityID == "" {
		return nil, nil
	}

	activity, err := s.activityRepo.ByID(ctx, activityID)
	if errors.Is(err, repository.ErrActivityNotFound) {
		// bundled goals keep their activities outside the database
		if goal, ok := seed.Goal(log.Common().GoalID); ok {
			for _, a := range goal.Activities {
				if a.ID == activityID {
					return &a, nil
				}
			}
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// GoalLogs lists a goal's logs, newest first. Storage failures are logged
// and yield an empty list.
func (s *LogService) GoalLogs(ctx context.Context, goalID string) []model.Log {
	logs, err := s.repo.GoalLogs(ctx, goalID)
	if err != nil {
		slog.Error("failed to list goal logs", "error", err, "goal_id", goalID)
		return []model.Log{}
	}
	return logs
}

func (s *LogService) UserLogs(ctx context.Context, userID string) []model.Log {
	logs, err := s.repo.UserLogs(ctx, userID)
	if err != nil {
		slog.Error("failed to list user logs", "error", err, "user_id", userID)
		return []model.Log{}
	}
	return logs
}

func (s *LogService) TodayLogs(ctx context.Context, userID string) []model.Log {
	logs, err := s.repo.TodayLogs(ctx, userID, s.now().In(s.loc))
	if err != nil {
		slog.Error("failed to list today's logs", "error", err, "user_id", userID)
		return []model.Log{}
	}
	return logs
}

func (s *LogService) TodayActivityLogs(ctx context.Context, userID, activityID string) []model.Log {
	logs, err := s.repo.TodayActivityLogs(ctx, userID, activityID, s.now().In(s.loc))
	if err != nil {
		slog.Error("failed to list today's activity logs", "error", err, "user_id", userID, "activity_id", activityID)
		return []model.Log{}
	}
	return logs
}
