package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/service"
	"github.com/templui/ritual/internal/storage"
	"github.com/templui/ritual/internal/validation"
)

func TestWriteErrorStatus(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{&validation.Error{Field: "slug", Message: "slug is required"}, http.StatusBadRequest, "slug is required"},
		{fmt.Errorf("create goal: %w", &validation.Error{Field: "slug", Message: "slug is required"}), http.StatusBadRequest, "slug is required"},
		{fmt.Errorf("%w: kind", model.ErrUnknownLogType), http.StatusBadRequest, "unknown log type: kind"},
		{fmt.Errorf("get goal: %w", repository.ErrGoalNotFound), http.StatusNotFound, "goal not found"},
		{repository.ErrActivityNotFound, http.StatusNotFound, "activity not found"},
		{ErrForbidden, http.StatusForbidden, "not allowed"},
		{storage.ErrDisabled, http.StatusServiceUnavailable, storage.ErrDisabled.Error()},
		{service.ErrAnalysisDisabled, http.StatusServiceUnavailable, service.ErrAnalysisDisabled.Error()},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/api/goals", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Nil(t, body["data"])
			assert.Equal(t, tt.message, body["error"])
		})
	}
}

func TestParseBound(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)

	from, err := parseBound("2026-10-16", loc, false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, loc), from)

	to, err := parseBound("2026-10-16", loc, true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 16, 23, 59, 59, 999999999, loc), to)

	exact, err := parseBound("2026-10-16T08:00:00Z", loc, true)
	require.NoError(t, err)
	assert.True(t, exact.Equal(time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)))

	zero, err := parseBound("", loc, false)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = parseBound("16/10/2026", loc, true)
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "to", verr.Field)
}
