package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/schedule"
	"github.com/templui/ritual/internal/validation"
)

type ActivityService struct {
	repo     repository.ActivityRepository
	goalRepo repository.GoalRepository
	logRepo  repository.LogRepository
	loc      *time.Location
	now      func() time.Time
}

func NewActivityService(
	repo repository.ActivityRepository,
	goalRepo repository.GoalRepository,
	logRepo repository.LogRepository,
	loc *time.Location,
) *ActivityService {
	if loc == nil {
		loc = time.UTC
	}
	return &ActivityService{
		repo:     repo,
		goalRepo: goalRepo,
		logRepo:  logRepo,
		loc:      loc,
		now:      time.Now,
	}
}

// ActivityState pairs an activity with whether the user may start it.
type ActivityState struct {
	model.Activity
	Unlocked bool `json:"unlocked"`
}

func (s *ActivityService) Create(ctx context.Context, activity *model.Activity) error {
	_, err := s.goalRepo.ByID(ctx, activity.GoalID)
	if err != nil {
		return err
	}

	err = validation.ValidateActivity(*activity)
	if err != nil {
		return err
	}

	_, err = s.repo.BySlug(ctx, activity.GoalID, activity.Slug)
	if err == nil {
		return &validation.Error{Field: "slug", Message: fmt.Sprintf("activity slug %q is already used in this goal", activity.Slug)}
	}
	if !errors.Is(err, repository.ErrActivityNotFound) {
		return err
	}

	activity.ID = uuid.New().String()
	err = s.repo.Create(ctx, activity)
	if err != nil {
		slog.Error("failed to create activity", "error", err, "goal_id", activity.GoalID)
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (s *ActivityService) ByID(ctx context.Context, activityID string) (*model.Activity, error) {
	return s.repo.ByID(ctx, activityID)
}

func (s *ActivityService) BySlug(ctx context.Context, goalID, slug string) (*model.Activity, error) {
	return s.repo.BySlug(ctx, goalID, slug)
}

// Activities lists activities. Storage failures are logged and yield an
// empty list.
func (s *ActivityService) Activities(ctx context.Context, filter repository.ActivityFilter) []model.Activity {
	activities, err := s.repo.Activities(ctx, filter)
	if err != nil {
		slog.Error("failed to list activities", "error", err, "goal_id", filter.GoalID)
		return []model.Activity{}
	}
	return activities
}

// Update replaces the stored activity with activity.
func (s *ActivityService) Update(ctx context.Context, activity *model.Activity) error {
	existing, err := s.repo.ByID(ctx, activity.ID)
	if err != nil {
		return err
	}
	activity.GoalID = existing.GoalID

	err = validation.ValidateActivity(*activity)
	if err != nil {
		return err
	}

	if activity.Slug != existing.Slug {
		other, err := s.repo.BySlug(ctx, activity.GoalID, activity.Slug)
		if err == nil && other.ID != activity.ID {
			return &validation.Error{Field: "slug", Message: fmt.Sprintf("activity slug %q is already used in this goal", activity.Slug)}
		}
	}

	return s.repo.Update(ctx, activity)
}

func (s *ActivityService) Delete(ctx context.Context, activityID string) error {
	return s.repo.Delete(ctx, activityID)
}

// PendingToday returns the goal's activities that are due by now and that
// the user has not completed today.
func (s *ActivityService) PendingToday(ctx context.Context, userID, goalID string) []model.Activity {
	activities := s.Activities(ctx, repository.ActivityFilter{GoalID: goalID})
	return s.pending(ctx, userID, activities)
}

// AllPendingToday applies the same rule across every goal the user owns.
func (s *ActivityService) AllPendingToday(ctx context.Context, userID string) []model.Activity {
	activities := s.userActivities(ctx, userID)
	return s.pending(ctx, userID, activities)
}

// Reminders returns the user's activities whose reminder fires this minute.
func (s *ActivityService) Reminders(ctx context.Context, userID string) []model.Activity {
	return schedule.FiringAt(s.userActivities(ctx, userID), s.now().In(s.loc))
}

// States reports, for every activity of a goal, whether the user has
// unlocked it.
func (s *ActivityService) States(ctx context.Context, userID, goalID string) ([]ActivityState, error) {
	goal, err := s.goalRepo.ByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	activities := s.Activities(ctx, repository.ActivityFilter{GoalID: goalID})

	logs, err := s.logRepo.GoalLogs(ctx, goalID)
	if err != nil {
		slog.Error("failed to load goal logs", "error", err, "goal_id", goalID)
		logs = nil
	}

	slugs := make(map[string]string, len(activities))
	for _, a := range activities {
		slugs[a.ID] = a.Slug
	}
	var completed []string
	for _, l := range logs {
		if al, ok := l.(*model.ActivityLog); ok && al.UserID == userID {
			if slug, ok := slugs[al.ActivityID]; ok {
				completed = append(completed, slug)
			}
		}
	}

	now := s.now().In(s.loc)
	states := make([]ActivityState, 0, len(activities))
	for _, a := range activities {
		states = append(states, ActivityState{
			Activity: a,
			Unlocked: schedule.Unlocked(a, activities, completed, goal.CreatedAt, now),
		})
	}
	return states, nil
}

func (s *ActivityService) pending(ctx context.Context, userID string, activities []model.Activity) []model.Activity {
	now := s.now().In(s.loc)

	logs, err := s.logRepo.TodayLogs(ctx, userID, now)
	if err != nil {
		slog.Error("failed to load today's logs", "error", err, "user_id", userID)
		logs = nil
	}

	var completed []string
	for _, l := range logs {
		if al, ok := l.(*model.ActivityLog); ok {
			completed = append(completed, al.ActivityID)
		}
	}

	return schedule.Pending(activities, completed, now)
}

func (s *ActivityService) userActivities(ctx context.Context, userID string) []model.Activity {
	goals, err := s.goalRepo.Goals(ctx, userID, repository.GoalFilter{Mine: true})
	if err != nil {
		slog.Error("failed to list goals", "error", err, "user_id", userID)
		return []model.Activity{}
	}
	if len(goals) == 0 {
		return []model.Activity{}
	}

	ids := make([]string, 0, len(goals))
	for _, g := range goals {
		ids = append(ids, g.ID)
	}
	return s.Activities(ctx, repository.ActivityFilter{GoalIDs: ids})
}
