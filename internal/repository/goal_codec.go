package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/templui/ritual/internal/model"
)

type goalRow struct {
	ID                    string             `db:"id"`
	Slug                  string             `db:"slug"`
	Name                  string             `db:"name"`
	Description           string             `db:"description"`
	FeaturedImage         sql.NullString     `db:"featured_image"`
	Category              string             `db:"category"`
	Tags                  types.NullJSONText `db:"tags"`
	AuthorID              string             `db:"author_id"`
	AuthorName            string             `db:"author_name"`
	AuthorAvatar          sql.NullString     `db:"author_avatar"`
	CreatedAt             string             `db:"created_at"`
	UpdatedAt             string             `db:"updated_at"`
	IsPublic              int                `db:"is_public"`
	Version               int                `db:"version"`
	Status                string             `db:"status"`
	CompletionType        string             `db:"completion_type"`
	CompletionDate        sql.NullString     `db:"completion_date"`
	DefaultRecurrence     sql.NullString     `db:"default_recurrence"`
	DefaultScheduledTimes types.NullJSONText `db:"default_scheduled_times"`
	Progress              types.NullJSONText `db:"progress"`
	Meta                  types.NullJSONText `db:"meta"`
}

func encodeGoal(g *model.Goal) (goalRow, error) {
	g.Normalize()

	enc := &encoder{}
	row := goalRow{
		ID:                    g.ID,
		Slug:                  g.Slug,
		Name:                  g.Name,
		Description:           g.Description,
		FeaturedImage:         nullString(g.FeaturedImage),
		Category:              string(g.Category),
		Tags:                  enc.json("tags", g.Tags),
		AuthorID:              g.Author.ID,
		AuthorName:            g.Author.Name,
		AuthorAvatar:          nullString(g.Author.Avatar),
		CreatedAt:             formatTime(g.CreatedAt),
		UpdatedAt:             formatTime(g.UpdatedAt),
		IsPublic:              boolInt(g.IsPublic),
		Version:               g.Version,
		Status:                string(g.Status),
		CompletionType:        string(g.CompletionType),
		CompletionDate:        formatNullTime(g.CompletionDate),
		DefaultRecurrence:     nullString(string(g.DefaultRecurrence)),
		DefaultScheduledTimes: enc.json("default_scheduled_times", g.DefaultScheduledTimes),
		Progress:              enc.json("progress", g.Progress),
		Meta:                  enc.json("meta", g.Meta),
	}
	return row, enc.err
}

func decodeGoal(row goalRow) *model.Goal {
	g := &model.Goal{
		ID:                row.ID,
		Slug:              row.Slug,
		Name:              row.Name,
		Description:       row.Description,
		FeaturedImage:     row.FeaturedImage.String,
		Category:          model.Category(row.Category),
		IsPublic:          row.IsPublic != 0,
		Version:           row.Version,
		Status:            model.GoalStatus(row.Status),
		CompletionType:    model.CompletionType(row.CompletionType),
		CompletionDate:    parseNullTime(row.CompletionDate),
		DefaultRecurrence: model.Recurrence(row.DefaultRecurrence.String),
		Author: model.Author{
			ID:     row.AuthorID,
			Name:   row.AuthorName,
			Avatar: row.AuthorAvatar.String,
		},
	}

	if t := parseNullTime(sql.NullString{String: row.CreatedAt, Valid: true}); t != nil {
		g.CreatedAt = *t
	}
	if t := parseNullTime(sql.NullString{String: row.UpdatedAt, Valid: true}); t != nil {
		g.UpdatedAt = *t
	}

	decodeColumn(row.Tags, &g.Tags, "goals", "tags", row.ID)
	decodeColumn(row.DefaultScheduledTimes, &g.DefaultScheduledTimes, "goals", "default_scheduled_times", row.ID)
	decodeColumn(row.Progress, &g.Progress, "goals", "progress", row.ID)
	decodeColumn(row.Meta, &g.Meta, "goals", "meta", row.ID)

	g.Normalize()
	return g
}

func insertGoal(ctx context.Context, ext sqlx.ExtContext, g *model.Goal) error {
	row, err := encodeGoal(g)
	if err != nil {
		return err
	}

	query := `INSERT INTO goals (id, slug, name, description, featured_image, category, tags,
	              author_id, author_name, author_avatar, created_at, updated_at, is_public, version,
	              status, completion_type, completion_date, default_recurrence, default_scheduled_times,
	              progress, meta)
	          VALUES (:id, :slug, :name, :description, :featured_image, :category, :tags,
	              :author_id, :author_name, :author_avatar, :created_at, :updated_at, :is_public, :version,
	              :status, :completion_type, :completion_date, :default_recurrence, :default_scheduled_times,
	              :progress, :meta)`

	_, err = sqlx.NamedExecContext(ctx, ext, query, row)
	if err != nil {
		return fmt.Errorf("failed to insert goal %s: %w", g.ID, err)
	}
	return nil
}
