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
	ErrActivityNotFound = errors.New("activity not found")
)

// ActivityFilter narrows an activity listing. The zero value lists every
// activity and is served from the cache.
type ActivityFilter struct {
	GoalID   string
	GoalIDs  []string
	Category model.Category
}

func (f ActivityFilter) isZero() bool {
	return f.GoalID == "" && len(f.GoalIDs) == 0 && f.Category == ""
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	ByID(ctx context.Context, activityID string) (*model.Activity, error)
	BySlug(ctx context.Context, goalID, slug string) (*model.Activity, error)
	Activities(ctx context.Context, filter ActivityFilter) ([]model.Activity, error)
	Update(ctx context.Context, activity *model.Activity) error
	Delete(ctx context.Context, activityID string) error
}

type activityRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	cache   *ActivityCache
}

func NewActivityRepository(db *sqlx.DB, cache *ActivityCache) ActivityRepository {
	return &activityRepository{
		db:      db,
		dialect: newDialect(db),
		cache:   cache,
	}
}

// Create appends the activity after the goal's existing activities.
func (r *activityRepository) Create(ctx context.Context, activity *model.Activity) error {
	var position int
	query := `SELECT COALESCE(MAX(position) + 1, 0) FROM activities WHERE goal_id = $1`
	err := r.db.GetContext(ctx, &position, query, activity.GoalID)
	if err != nil {
		return err
	}

	err = insertActivity(ctx, r.db, activity, position)
	if err != nil {
		return err
	}

	r.cache.Invalidate()
	return nil
}

func (r *activityRepository) ByID(ctx context.Context, activityID string) (*model.Activity, error) {
	row := activityRow{}
	query := `SELECT * FROM activities WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, activityID)
	if err == sql.ErrNoRows {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	activity := decodeActivity(row)
	return &activity, nil
}

func (r *activityRepository) BySlug(ctx context.Context, goalID, slug string) (*model.Activity, error) {
	row := activityRow{}
	query := `SELECT * FROM activities WHERE goal_id = $1 AND slug = $2`

	err := r.db.GetContext(ctx, &row, query, goalID, slug)
	if err == sql.ErrNoRows {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	activity := decodeActivity(row)
	return &activity, nil
}

func (r *activityRepository) Activities(ctx context.Context, filter ActivityFilter) ([]model.Activity, error) {
	if filter.isZero() {
		cached, ok := r.cache.Get()
		if ok {
			return cached, nil
		}
	}

	var where []exp.Expression
	if filter.GoalID != "" {
		where = append(where, goqu.C("goal_id").Eq(filter.GoalID))
	}
	if len(filter.GoalIDs) > 0 {
		where = append(where, goqu.C("goal_id").In(filter.GoalIDs))
	}
	if filter.Category != "" {
		where = append(where, goqu.C("category").Eq(string(filter.Category)))
	}

	query, args, err := r.dialect.From("activities").
		Where(where...).
		Order(goqu.C("goal_id").Asc(), goqu.C("position").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build activities query: %w", err)
	}

	var rows []activityRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, err
	}

	activities := make([]model.Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, decodeActivity(row))
	}

	if filter.isZero() {
		r.cache.Set(activities)
	}
	return activities, nil
}

// Update replaces every column of the activity with the given value.
func (r *activityRepository) Update(ctx context.Context, activity *model.Activity) error {
	row, err := encodeActivity(activity)
	if err != nil {
		return err
	}

	query := `UPDATE activities
	          SET slug = :slug, name = :name, description = :description, featured_image = :featured_image,
	              type = :type, category = :category, notifications_enabled = :notifications_enabled,
	              scheduled_times = :scheduled_times, recurrence = :recurrence,
	              completion_prompts = :completion_prompts, steps = :steps, relies_on = :relies_on,
	              unlock_condition = :unlock_condition, unlock_params = :unlock_params, meta = :meta
	          WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	r.cache.Invalidate()

	if rows == 0 {
		return ErrActivityNotFound
	}

	return nil
}

func (r *activityRepository) Delete(ctx context.Context, activityID string) error {
	query := `DELETE FROM activities WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, activityID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	r.cache.Invalidate()

	if rows == 0 {
		return ErrActivityNotFound
	}

	return nil
}
