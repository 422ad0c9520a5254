package handler

import (
	"io"
	"net/http"

	"github.com/templui/ritual/internal/ctxkeys"
	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/service"
)

type LogHandler struct {
	logService  *service.LogService
	goalService *service.GoalService
}

func NewLogHandler(logService *service.LogService, goalService *service.GoalService) *LogHandler {
	return &LogHandler{
		logService:  logService,
		goalService: goalService,
	}
}

// Create appends a log. The body carries a "type" discriminant; the user id
// always comes from the token.
func (h *LogHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, ErrBadRequest)
		return
	}

	log, err := model.DecodeLog(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	base := log.Common()
	base.UserID = userID
	base.ID = ""

	_, err = readableGoal(r.Context(), h.goalService, base.GoalID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.logService.Create(r.Context(), log)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := encodeLog(log)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, data)
}

// List returns the caller's logs, newest first. ?today=true limits them to
// the current day.
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var logs []model.Log
	if r.URL.Query().Get("today") == "true" {
		logs = h.logService.TodayLogs(r.Context(), userID)
	} else {
		logs = h.logService.UserLogs(r.Context(), userID)
	}
	writeJSON(w, http.StatusOK, model.Logs(logs))
}

// ActivityToday returns the caller's logs for one activity since midnight.
func (h *LogHandler) ActivityToday(w http.ResponseWriter, r *http.Request) {
	logs := h.logService.TodayActivityLogs(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	writeJSON(w, http.StatusOK, model.Logs(logs))
}
