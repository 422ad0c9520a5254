package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/templui/ritual/internal/model"
)

type activityRow struct {
	ID                   string             `db:"id"`
	GoalID               string             `db:"goal_id"`
	Slug                 string             `db:"slug"`
	Name                 string             `db:"name"`
	Description          string             `db:"description"`
	FeaturedImage        sql.NullString     `db:"featured_image"`
	Type                 string             `db:"type"`
	Category             string             `db:"category"`
	NotificationsEnabled int                `db:"notifications_enabled"`
	ScheduledTimes       types.NullJSONText `db:"scheduled_times"`
	Recurrence           sql.NullString     `db:"recurrence"`
	CompletionPrompts    types.NullJSONText `db:"completion_prompts"`
	Steps                types.NullJSONText `db:"steps"`
	ReliesOn             types.NullJSONText `db:"relies_on"`
	UnlockCondition      sql.NullString     `db:"unlock_condition"`
	UnlockParams         types.NullJSONText `db:"unlock_params"`
	Meta                 types.NullJSONText `db:"meta"`
	Position             int                `db:"position"`
}

func encodeActivity(a *model.Activity) (activityRow, error) {
	if a.ScheduledTimes == nil {
		a.ScheduledTimes = []model.ScheduleEntry{}
	}
	if a.Steps == nil {
		a.Steps = []model.Step{}
	}

	enc := &encoder{}
	row := activityRow{
		ID:                   a.ID,
		GoalID:               a.GoalID,
		Slug:                 a.Slug,
		Name:                 a.Name,
		Description:          a.Description,
		FeaturedImage:        nullString(a.FeaturedImage),
		Type:                 string(a.Type),
		Category:             string(a.Category),
		NotificationsEnabled: boolInt(a.NotificationsEnabled),
		ScheduledTimes:       enc.json("scheduled_times", a.ScheduledTimes),
		Recurrence:           nullString(string(a.Recurrence)),
		CompletionPrompts:    enc.json("completion_prompts", a.CompletionPrompts),
		Steps:                enc.json("steps", a.Steps),
		ReliesOn:             enc.json("relies_on", a.ReliesOn),
		UnlockCondition:      nullString(string(a.UnlockCondition)),
		UnlockParams:         enc.json("unlock_params", a.UnlockParams),
		Meta:                 enc.json("meta", a.Meta),
	}
	return row, enc.err
}

func decodeActivity(row activityRow) model.Activity {
	a := model.Activity{
		ID:                   row.ID,
		GoalID:               row.GoalID,
		Slug:                 row.Slug,
		Name:                 row.Name,
		Description:          row.Description,
		FeaturedImage:        row.FeaturedImage.String,
		Type:                 model.ActivityType(row.Type),
		Category:             model.Category(row.Category),
		NotificationsEnabled: row.NotificationsEnabled != 0,
		Recurrence:           model.Recurrence(row.Recurrence.String),
		UnlockCondition:      model.UnlockCondition(row.UnlockCondition.String),
	}

	decodeColumn(row.ScheduledTimes, &a.ScheduledTimes, "activities", "scheduled_times", row.ID)
	decodeColumn(row.CompletionPrompts, &a.CompletionPrompts, "activities", "completion_prompts", row.ID)
	decodeColumn(row.Steps, &a.Steps, "activities", "steps", row.ID)
	decodeColumn(row.ReliesOn, &a.ReliesOn, "activities", "relies_on", row.ID)
	decodeColumn(row.UnlockParams, &a.UnlockParams, "activities", "unlock_params", row.ID)
	decodeColumn(row.Meta, &a.Meta, "activities", "meta", row.ID)

	if a.ScheduledTimes == nil {
		a.ScheduledTimes = []model.ScheduleEntry{}
	}
	if a.Steps == nil {
		a.Steps = []model.Step{}
	}
	return a
}

// insertActivity stores a at the given position within its goal.
func insertActivity(ctx context.Context, ext sqlx.ExtContext, a *model.Activity, position int) error {
	row, err := encodeActivity(a)
	if err != nil {
		return err
	}
	row.Position = position

	query := `INSERT INTO activities (id, goal_id, slug, name, description, featured_image, type, category,
	              notifications_enabled, scheduled_times, recurrence, completion_prompts, steps, relies_on,
	              unlock_condition, unlock_params, meta, position)
	          VALUES (:id, :goal_id, :slug, :name, :description, :featured_image, :type, :category,
	              :notifications_enabled, :scheduled_times, :recurrence, :completion_prompts, :steps, :relies_on,
	              :unlock_condition, :unlock_params, :meta, :position)`

	_, err = sqlx.NamedExecContext(ctx, ext, query, row)
	if err != nil {
		return fmt.Errorf("failed to insert activity %s: %w", a.Slug, err)
	}
	return nil
}
