package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/templui/ritual/internal/ctxkeys"
	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/service"
	"github.com/templui/ritual/internal/storage"
	"github.com/templui/ritual/internal/validation"
)

const maxBodyBytes = 1 << 20

var (
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
)

// envelope is the shape of every API response.
type envelope struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(envelope{Data: data})
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps err onto a status code and writes the error envelope.
// Unexpected errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := http.StatusInternalServerError, "internal error"

	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		status, message = http.StatusBadRequest, verr.Error()
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrUnknownLogType),
		errors.Is(err, model.ErrInvalidAnswer):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrGoalNotFound):
		status, message = http.StatusNotFound, "goal not found"
	case errors.Is(err, repository.ErrActivityNotFound):
		status, message = http.StatusNotFound, "activity not found"
	case errors.Is(err, ErrForbidden):
		status, message = http.StatusForbidden, "not allowed"
	case errors.Is(err, storage.ErrDisabled), errors.Is(err, service.ErrAnalysisDisabled):
		status, message = http.StatusServiceUnavailable, err.Error()
	default:
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", ctxkeys.RequestID(r.Context()),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	return nil
}

// encodeLog renders a log with its type discriminant.
func encodeLog(l model.Log) (json.RawMessage, error) {
	return model.EncodeLog(l)
}
