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
	"github.com/templui/ritual/internal/seed"
	"github.com/templui/ritual/internal/validation"
)

// MetaCopiedFrom is the goal meta key recording the id a copy was made from.
const MetaCopiedFrom = "copiedFrom"

type GoalService struct {
	repo         repository.GoalRepository
	activityRepo repository.ActivityRepository
	logRepo      repository.LogRepository
	now          func() time.Time
}

func NewGoalService(
	repo repository.GoalRepository,
	activityRepo repository.ActivityRepository,
	logRepo repository.LogRepository,
) *GoalService {
	return &GoalService{
		repo:         repo,
		activityRepo: activityRepo,
		logRepo:      logRepo,
		now:          time.Now,
	}
}

// Create stores a new draft goal authored by userID.
func (s *GoalService) Create(ctx context.Context, userID string, in model.GoalInput) (*model.Goal, error) {
	err := validation.ValidateGoalInput(in)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	author := in.Author
	author.ID = userID

	goal := &model.Goal{
		ID:                    uuid.New().String(),
		Slug:                  in.Slug,
		Name:                  in.Name,
		Description:           in.Description,
		FeaturedImage:         in.FeaturedImage,
		Category:              in.Category,
		Tags:                  in.Tags,
		Author:                author,
		CreatedAt:             now,
		UpdatedAt:             now,
		IsPublic:              in.IsPublic,
		Version:               1,
		Status:                model.GoalStatusDraft,
		CompletionType:        in.CompletionType,
		CompletionDate:        in.CompletionDate,
		DefaultRecurrence:     in.DefaultRecurrence,
		DefaultScheduledTimes: in.DefaultScheduledTimes,
		Progress:              in.Progress,
		Meta:                  in.Meta,
	}
	goal.Normalize()

	err = s.repo.Create(ctx, goal)
	if err != nil {
		slog.Error("failed to create goal", "error", err, "user_id", userID, "slug", goal.Slug)
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	slog.Info("goal created", "goal_id", goal.ID, "user_id", userID)
	return goal, nil
}

// ByID loads a goal with its activities. Ids that are not stored resolve
// against the bundled default goals.
func (s *GoalService) ByID(ctx context.Context, goalID string) (*model.Goal, error) {
	goal, err := s.repo.ByID(ctx, goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		bundled, ok := seed.Goal(goalID)
		if !ok {
			return nil, err
		}
		return &bundled, nil
	}
	if err != nil {
		return nil, err
	}

	activities, err := s.activityRepo.Activities(ctx, repository.ActivityFilter{GoalID: goalID})
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	goal.Activities = activities
	goal.Normalize()

	return goal, nil
}

// Goals lists goal metadata. Storage failures are logged and yield an
// empty list.
func (s *GoalService) Goals(ctx context.Context, userID string, filter repository.GoalFilter) []*model.Goal {
	goals, err := s.repo.Goals(ctx, userID, filter)
	if err != nil {
		slog.Error("failed to list goals", "error", err, "user_id", userID)
		return []*model.Goal{}
	}
	return goals
}

// DefaultGoals returns the bundled goals every user can browse and copy.
func (s *GoalService) DefaultGoals() []model.Goal {
	goals, err := seed.Goals()
	if err != nil {
		slog.Error("failed to load default goals", "error", err)
		return []model.Goal{}
	}
	return goals
}

// Update merges update onto the stored goal and writes it back.
func (s *GoalService) Update(ctx context.Context, goalID string, update model.GoalUpdate) (*model.Goal, error) {
	existing, err := s.repo.ByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	goal := update.Apply(*existing)
	goal.UpdatedAt = s.now().UTC()
	goal.Normalize()

	err = validation.ValidateGoal(goal)
	if err != nil {
		return nil, err
	}

	err = s.repo.Update(ctx, &goal)
	if err != nil {
		return nil, err
	}

	return &goal, nil
}

// ReplaceActivities validates and stores the full activity list of a goal,
// replacing whatever it held before.
func (s *GoalService) ReplaceActivities(ctx context.Context, goalID string, activities []model.Activity) ([]model.Activity, error) {
	seen := map[string]bool{}
	for i := range activities {
		a := &activities[i]
		a.GoalID = goalID
		if a.ID == "" {
			a.ID = uuid.New().String()
		}

		err := validation.ValidateActivity(*a)
		if err != nil {
			return nil, err
		}

		if seen[a.Slug] {
			return nil, &validation.Error{Field: "slug", Message: fmt.Sprintf("activity slug %q is used twice", a.Slug)}
		}
		seen[a.Slug] = true
	}

	err := s.repo.ReplaceActivities(ctx, goalID, activities)
	if err != nil {
		return nil, err
	}

	if activities == nil {
		activities = []model.Activity{}
	}
	return activities, nil
}

// Copy creates a private draft copy of a goal, stored or bundled, owned by
// the given author. Activities keep their slugs and get fresh ids.
func (s *GoalService) Copy(ctx context.Context, goalID string, owner model.Author) (*model.Goal, error) {
	original, err := s.ByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	goal := *original
	goal.ID = uuid.New().String()
	goal.Slug = fmt.Sprintf("%s-copy-%d", original.Slug, now.UnixMilli())
	goal.Author = owner
	goal.IsPublic = false
	goal.Status = model.GoalStatusDraft
	goal.Version = 1
	goal.CreatedAt = now
	goal.UpdatedAt = now
	goal.Progress = nil

	goal.Meta = make(map[string]any, len(original.Meta)+1)
	for k, v := range original.Meta {
		goal.Meta[k] = v
	}
	goal.Meta[MetaCopiedFrom] = original.ID

	goal.Activities = make([]model.Activity, len(original.Activities))
	for i, a := range original.Activities {
		a.ID = uuid.New().String()
		a.GoalID = goal.ID
		goal.Activities[i] = a
	}
	goal.Normalize()

	err = s.repo.CreateWithActivities(ctx, &goal)
	if err != nil {
		slog.Error("failed to copy goal", "error", err, "goal_id", goalID, "user_id", owner.ID)
		return nil, fmt.Errorf("failed to copy goal: %w", err)
	}

	slog.Info("goal copied", "goal_id", goal.ID, "from", goalID, "user_id", owner.ID)
	return &goal, nil
}

// Delete removes a goal and its activities. Logs are kept unless purgeLogs
// is set.
func (s *GoalService) Delete(ctx context.Context, goalID string, purgeLogs bool) error {
	err := s.repo.Delete(ctx, goalID)
	if err != nil {
		return err
	}

	if !purgeLogs {
		return nil
	}

	n, err := s.logRepo.DeleteGoalLogs(ctx, goalID)
	if err != nil {
		return fmt.Errorf("goal deleted but its logs were not: %w", err)
	}
	slog.Info("goal logs purged", "goal_id", goalID, "count", n)
	return nil
}

// RefreshProgress recomputes the progress snapshot of a goal from the
// distinct activities the user has completed. Only the author's snapshot is
// stored; other users get the computed value.
func (s *GoalService) RefreshProgress(ctx context.Context, userID, goalID string) (*model.Progress, error) {
	goal, err := s.ByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.GoalLogs(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load logs: %w", err)
	}

	progress := computeProgress(goal, logs, userID, s.now())

	// bundled goals are not stored, the snapshot is only returned
	if _, bundled := seed.Goal(goalID); bundled {
		return progress, nil
	}
	if goal.Author.ID != userID {
		return progress, nil
	}

	_, err = s.Update(ctx, goalID, model.GoalUpdate{Progress: progress})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func computeProgress(goal *model.Goal, logs []model.Log, userID string, now time.Time) *model.Progress {
	owned := make(map[string]bool, len(goal.Activities))
	for _, a := range goal.Activities {
		owned[a.ID] = true
	}

	done := map[string]bool{}
	for _, l := range logs {
		al, ok := l.(*model.ActivityLog)
		if !ok || al.UserID != userID || !owned[al.ActivityID] {
			continue
		}
		done[al.ActivityID] = true
	}

	p := &model.Progress{Completed: len(done), Total: len(goal.Activities)}
	switch goal.CompletionType {
	case model.CompletionActivityCount:
		p.Total = goal.TargetCount()
		p.IsCompleted = p.Total > 0 && p.Completed >= p.Total
	case model.CompletionDatetime:
		p.IsCompleted = goal.CompletionDate != nil && !now.Before(*goal.CompletionDate)
	}
	return p
}
