package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/templui/ritual/internal/model"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

// GoalFilter narrows a goal listing. Mine and Copied are relative to the
// requesting user; Public keeps only published-to-everyone goals.
type GoalFilter struct {
	Mine   bool
	Copied bool
	Public bool
}

type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	CreateWithActivities(ctx context.Context, goal *model.Goal) error
	ByID(ctx context.Context, goalID string) (*model.Goal, error)
	Goals(ctx context.Context, userID string, filter GoalFilter) ([]*model.Goal, error)
	Update(ctx context.Context, goal *model.Goal) error
	ReplaceActivities(ctx context.Context, goalID string, activities []model.Activity) error
	Delete(ctx context.Context, goalID string) error
}

type goalRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	cache   *ActivityCache
}

func NewGoalRepository(db *sqlx.DB, cache *ActivityCache) GoalRepository {
	return &goalRepository{
		db:      db,
		dialect: newDialect(db),
		cache:   cache,
	}
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	return insertGoal(ctx, r.db, goal)
}

// CreateWithActivities inserts the goal and every activity in goal.Activities
// in one transaction.
func (r *goalRepository) CreateWithActivities(ctx context.Context, goal *model.Goal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = insertGoal(ctx, tx, goal)
	if err != nil {
		return err
	}

	for i := range goal.Activities {
		goal.Activities[i].GoalID = goal.ID
		err = insertActivity(ctx, tx, &goal.Activities[i], i)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return err
	}

	r.cache.Invalidate()
	return nil
}

func (r *goalRepository) ByID(ctx context.Context, goalID string) (*model.Goal, error) {
	row := goalRow{}
	query := `SELECT * FROM goals WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, goalID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return decodeGoal(row), nil
}

// Goals lists goal metadata ordered by most recently updated. Activities are
// not loaded.
func (r *goalRepository) Goals(ctx context.Context, userID string, filter GoalFilter) ([]*model.Goal, error) {
	var where []exp.Expression
	if filter.Mine {
		where = append(where, goqu.C("author_id").Eq(userID))
	}
	if filter.Copied {
		where = append(where, goqu.C("author_id").Neq(userID))
	}
	if filter.Public {
		where = append(where, goqu.C("is_public").Eq(1))
	}

	query, args, err := r.dialect.From("goals").
		Where(where...).
		Order(goqu.C("updated_at").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build goals query: %w", err)
	}

	var rows []goalRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, err
	}

	goals := make([]*model.Goal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, decodeGoal(row))
	}
	return goals, nil
}

func (r *goalRepository) Update(ctx context.Context, goal *model.Goal) error {
	row, err := encodeGoal(goal)
	if err != nil {
		return err
	}

	query := `UPDATE goals
	          SET slug = :slug, name = :name, description = :description, featured_image = :featured_image,
	              category = :category, tags = :tags, author_id = :author_id, author_name = :author_name,
	              author_avatar = :author_avatar, updated_at = :updated_at, is_public = :is_public,
	              version = :version, status = :status, completion_type = :completion_type,
	              completion_date = :completion_date, default_recurrence = :default_recurrence,
	              default_scheduled_times = :default_scheduled_times, progress = :progress, meta = :meta
	          WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// ReplaceActivities swaps the goal's activities for the given list. The
// delete and the inserts commit together or not at all.
func (r *goalRepository) ReplaceActivities(ctx context.Context, goalID string, activities []model.Activity) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM goals WHERE id = $1`, goalID)
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrGoalNotFound
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM activities WHERE goal_id = $1`, goalID)
	if err != nil {
		return fmt.Errorf("failed to clear activities: %w", err)
	}

	for i := range activities {
		activities[i].GoalID = goalID
		err = insertActivity(ctx, tx, &activities[i], i)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return err
	}

	r.cache.Invalidate()
	return nil
}

// Delete removes the goal. Its activities go with it through the foreign key;
// logs that reference the goal are left in place.
func (r *goalRepository) Delete(ctx context.Context, goalID string) error {
	query := `DELETE FROM goals WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, goalID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	r.cache.Invalidate()
	return nil
}
