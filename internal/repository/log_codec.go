package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/templui/ritual/internal/model"
)

// logRow is the single wide logs table. Columns that do not belong to a
// row's variant stay NULL.
type logRow struct {
	ID                string             `db:"id"`
	UserID            string             `db:"user_id"`
	GoalID            string             `db:"goal_id"`
	Type              string             `db:"type"`
	ActivityID        sql.NullString     `db:"activity_id"`
	ActivityType      sql.NullString     `db:"activity_type"`
	CompletedAt       sql.NullString     `db:"completed_at"`
	SessionID         sql.NullString     `db:"session_id"`
	PromptID          sql.NullString     `db:"prompt_id"`
	AnswerType        sql.NullString     `db:"answer_type"`
	Answer            types.NullJSONText `db:"answer"`
	StepID            sql.NullString     `db:"step_id"`
	StepIndex         sql.NullInt64      `db:"step_index"`
	DurationInSeconds sql.NullInt64      `db:"duration_in_seconds"`
	Media             types.NullJSONText `db:"media"`
	AuthorType        sql.NullString     `db:"author_type"`
	AuthorID          sql.NullString     `db:"author_id"`
	Feedback          sql.NullString     `db:"feedback"`
	CreatedAt         string             `db:"created_at"`
	Meta              types.NullJSONText `db:"meta"`
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// encodeLog flattens a log variant into the wide row.
func encodeLog(l model.Log) (logRow, error) {
	base := l.Common()
	enc := &encoder{}
	row := logRow{
		ID:        base.ID,
		UserID:    base.UserID,
		GoalID:    base.GoalID,
		Type:      string(l.Type()),
		CreatedAt: formatTime(base.CreatedAt),
		Meta:      enc.json("meta", base.Meta),
	}

	switch v := l.(type) {
	case *model.ActivityLog:
		row.ActivityID = nullString(v.ActivityID)
		row.ActivityType = nullString(string(v.ActivityType))
		row.CompletedAt = formatNullTime(v.CompletedAt)
	case *model.PromptLog:
		row.ActivityID = nullString(v.ActivityID)
		row.SessionID = nullString(v.SessionID)
		row.PromptID = nullString(v.PromptID)
		row.AnswerType = nullString(string(v.AnswerType))
		// null answers are stored as JSON null so they survive the round trip
		answer, err := v.Answer.MarshalJSON()
		if err != nil {
			return logRow{}, fmt.Errorf("failed to encode answer: %w", err)
		}
		row.Answer = types.NullJSONText{JSONText: types.JSONText(answer), Valid: true}
	case *model.StepLog:
		row.ActivityID = nullString(v.ActivityID)
		row.StepID = nullString(v.StepID)
		row.StepIndex = sql.NullInt64{Int64: int64(v.StepIndex), Valid: true}
		row.DurationInSeconds = nullInt(v.DurationInSeconds)
	case *model.MediaUploadLog:
		row.Media = enc.json("media", v.Media)
	case *model.FeedbackLog:
		row.AuthorType = nullString(string(v.AuthorType))
		row.AuthorID = nullString(v.AuthorID)
		row.Feedback = sql.NullString{String: v.Feedback, Valid: true}
	default:
		return logRow{}, fmt.Errorf("%w: %T", model.ErrUnknownLogType, l)
	}

	return row, enc.err
}

// decodeLog rebuilds the log variant named by the row's type column.
func decodeLog(row logRow) (model.Log, error) {
	l, err := model.NewLog(model.LogType(row.Type))
	if err != nil {
		return nil, err
	}

	base := l.Common()
	base.ID = row.ID
	base.UserID = row.UserID
	base.GoalID = row.GoalID
	if t := parseNullTime(sql.NullString{String: row.CreatedAt, Valid: true}); t != nil {
		base.CreatedAt = *t
	}
	decodeColumn(row.Meta, &base.Meta, "logs", "meta", row.ID)

	switch v := l.(type) {
	case *model.ActivityLog:
		v.ActivityID = row.ActivityID.String
		v.ActivityType = model.ActivityType(row.ActivityType.String)
		v.CompletedAt = parseNullTime(row.CompletedAt)
	case *model.PromptLog:
		v.ActivityID = row.ActivityID.String
		v.SessionID = row.SessionID.String
		v.PromptID = row.PromptID.String
		v.AnswerType = model.AnswerType(row.AnswerType.String)
		decodeColumn(row.Answer, &v.Answer, "logs", "answer", row.ID)
	case *model.StepLog:
		v.ActivityID = row.ActivityID.String
		v.StepID = row.StepID.String
		v.StepIndex = int(row.StepIndex.Int64)
		if row.DurationInSeconds.Valid {
			d := int(row.DurationInSeconds.Int64)
			v.DurationInSeconds = &d
		}
	case *model.MediaUploadLog:
		decodeColumn(row.Media, &v.Media, "logs", "media", row.ID)
	case *model.FeedbackLog:
		v.AuthorType = model.FeedbackAuthor(row.AuthorType.String)
		v.AuthorID = row.AuthorID.String
		v.Feedback = row.Feedback.String
	}

	return l, nil
}

// decodeLogs decodes every row it can. Rows with an unknown type are logged
// and skipped.
func decodeLogs(rows []logRow) []model.Log {
	logs := make([]model.Log, 0, len(rows))
	for _, row := range rows {
		l, err := decodeLog(row)
		if err != nil {
			slog.Warn("skipping log row", "id", row.ID, "type", row.Type, "error", err)
			continue
		}
		logs = append(logs, l)
	}
	return logs
}

func insertLog(ctx context.Context, ext sqlx.ExtContext, l model.Log) error {
	row, err := encodeLog(l)
	if err != nil {
		return err
	}

	query := `INSERT INTO logs (id, user_id, goal_id, type, activity_id, activity_type, completed_at,
	              session_id, prompt_id, answer_type, answer, step_id, step_index, duration_in_seconds,
	              media, author_type, author_id, feedback, created_at, meta)
	          VALUES (:id, :user_id, :goal_id, :type, :activity_id, :activity_type, :completed_at,
	              :session_id, :prompt_id, :answer_type, :answer, :step_id, :step_index, :duration_in_seconds,
	              :media, :author_type, :author_id, :feedback, :created_at, :meta)`

	_, err = sqlx.NamedExecContext(ctx, ext, query, row)
	if err != nil {
		return fmt.Errorf("failed to insert %s log: %w", l.Type(), err)
	}
	return nil
}
