package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/ritual/internal/model"
)

// LogRepository stores the append-only completion log. There is no update
// operation.
type LogRepository interface {
	Create(ctx context.Context, log model.Log) error
	CreateActivityLog(ctx context.Context, log *model.ActivityLog) error
	CreatePromptLog(ctx context.Context, log *model.PromptLog) error
	CreateStepLog(ctx context.Context, log *model.StepLog) error
	CreateMediaUploadLog(ctx context.Context, log *model.MediaUploadLog) error
	CreateFeedbackLog(ctx context.Context, log *model.FeedbackLog) error
	GoalLogs(ctx context.Context, goalID string) ([]model.Log, error)
	UserLogs(ctx context.Context, userID string) ([]model.Log, error)
	TodayLogs(ctx context.Context, userID string, now time.Time) ([]model.Log, error)
	TodayActivityLogs(ctx context.Context, userID, activityID string, now time.Time) ([]model.Log, error)
	DeleteGoalLogs(ctx context.Context, goalID string) (int64, error)
}

type logRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	now     func() time.Time
}

func NewLogRepository(db *sqlx.DB) LogRepository {
	return &logRepository{
		db:      db,
		dialect: newDialect(db),
		now:     time.Now,
	}
}

// Create dispatches on the log's variant.
func (r *logRepository) Create(ctx context.Context, log model.Log) error {
	switch l := log.(type) {
	case *model.ActivityLog:
		return r.CreateActivityLog(ctx, l)
	case *model.PromptLog:
		return r.CreatePromptLog(ctx, l)
	case *model.StepLog:
		return r.CreateStepLog(ctx, l)
	case *model.MediaUploadLog:
		return r.CreateMediaUploadLog(ctx, l)
	case *model.FeedbackLog:
		return r.CreateFeedbackLog(ctx, l)
	}
	return fmt.Errorf("%w: %T", model.ErrUnknownLogType, log)
}

func (r *logRepository) CreateActivityLog(ctx context.Context, log *model.ActivityLog) error {
	r.stamp(&log.LogBase)
	return insertLog(ctx, r.db, log)
}

func (r *logRepository) CreatePromptLog(ctx context.Context, log *model.PromptLog) error {
	r.stamp(&log.LogBase)
	return insertLog(ctx, r.db, log)
}

func (r *logRepository) CreateStepLog(ctx context.Context, log *model.StepLog) error {
	r.stamp(&log.LogBase)
	return insertLog(ctx, r.db, log)
}

func (r *logRepository) CreateMediaUploadLog(ctx context.Context, log *model.MediaUploadLog) error {
	r.stamp(&log.LogBase)
	return insertLog(ctx, r.db, log)
}

func (r *logRepository) CreateFeedbackLog(ctx context.Context, log *model.FeedbackLog) error {
	r.stamp(&log.LogBase)
	return insertLog(ctx, r.db, log)
}

// stamp assigns the id and creation time when the caller left them empty.
func (r *logRepository) stamp(base *model.LogBase) {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = r.now()
	}
}

func (r *logRepository) GoalLogs(ctx context.Context, goalID string) ([]model.Log, error) {
	return r.logs(ctx, goqu.C("goal_id").Eq(goalID))
}

func (r *logRepository) UserLogs(ctx context.Context, userID string) ([]model.Log, error) {
	return r.logs(ctx, goqu.C("user_id").Eq(userID))
}

// TodayLogs returns the user's logs created since local midnight of now.
func (r *logRepository) TodayLogs(ctx context.Context, userID string, now time.Time) ([]model.Log, error) {
	return r.logs(ctx,
		goqu.C("user_id").Eq(userID),
		goqu.C("created_at").Gte(formatTime(startOfDay(now))),
	)
}

func (r *logRepository) TodayActivityLogs(ctx context.Context, userID, activityID string, now time.Time) ([]model.Log, error) {
	return r.logs(ctx,
		goqu.C("user_id").Eq(userID),
		goqu.C("activity_id").Eq(activityID),
		goqu.C("created_at").Gte(formatTime(startOfDay(now))),
	)
}

// DeleteGoalLogs purges the logs of a goal. Goal deletion does not call this
// on its own.
func (r *logRepository) DeleteGoalLogs(ctx context.Context, goalID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM logs WHERE goal_id = $1`, goalID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *logRepository) logs(ctx context.Context, where ...exp.Expression) ([]model.Log, error) {
	query, args, err := r.dialect.From("logs").
		Where(where...).
		Order(goqu.C("created_at").Desc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build logs query: %w", err)
	}

	var rows []logRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, err
	}

	return decodeLogs(rows), nil
}
