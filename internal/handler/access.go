package handler

import (
	"context"

	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/seed"
	"github.com/templui/ritual/internal/service"
)

// readableGoal loads a goal the caller may view: their own, a public one,
// or a bundled default. Private goals of other users read as not found.
func readableGoal(ctx context.Context, goals *service.GoalService, goalID, userID string) (*model.Goal, error) {
	goal, err := goals.ByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if _, bundled := seed.Goal(goalID); bundled {
		return goal, nil
	}
	if goal.Author.ID != userID && !goal.IsPublic {
		return nil, repository.ErrGoalNotFound
	}
	return goal, nil
}

// ownedGoal loads a goal the caller may change. Bundled goals are read-only.
func ownedGoal(ctx context.Context, goals *service.GoalService, goalID, userID string) (*model.Goal, error) {
	goal, err := readableGoal(ctx, goals, goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal.Author.ID != userID {
		return nil, ErrForbidden
	}
	return goal, nil
}
