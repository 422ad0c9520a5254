package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/templui/ritual/internal/db"
)

// timeLayout is fixed-width UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		slog.Warn("malformed timestamp column", "value", v.String, "error", err)
		return nil
	}
	return &t
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// jsonColumn encodes v for a JSON text column. A nil value becomes SQL NULL.
func jsonColumn(v any) (types.NullJSONText, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return types.NullJSONText{}, err
	}
	if string(b) == "null" {
		return types.NullJSONText{}, nil
	}
	return types.NullJSONText{JSONText: types.JSONText(b), Valid: true}, nil
}

// decodeColumn parses a JSON text column into dst. Malformed content is
// logged and leaves dst untouched so the rest of the row still loads.
func decodeColumn(col types.NullJSONText, dst any, table, column, id string) {
	if !col.Valid || len(col.JSONText) == 0 {
		return
	}
	err := col.Unmarshal(dst)
	if err != nil {
		slog.Warn("malformed json column",
			"table", table,
			"column", column,
			"id", id,
			"error", err,
		)
	}
}

type encoder struct {
	err error
}

// json encodes v, remembering the first failure.
func (e *encoder) json(column string, v any) types.NullJSONText {
	if e.err != nil {
		return types.NullJSONText{}
	}
	col, err := jsonColumn(v)
	if err != nil {
		e.err = fmt.Errorf("failed to encode %s: %w", column, err)
	}
	return col
}

func newDialect(database *sqlx.DB) goqu.DialectWrapper {
	return goqu.Dialect(db.Dialect(database.DriverName()))
}

// startOfDay is local midnight for the day containing now.
func startOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
