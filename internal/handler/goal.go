package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/templui/ritual/internal/ctxkeys"
	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/service"
	"github.com/templui/ritual/internal/stats"
	"github.com/templui/ritual/internal/validation"
)

type GoalHandler struct {
	goalService     *service.GoalService
	activityService *service.ActivityService
	logService      *service.LogService
	statsService    *service.StatsService
	loc             *time.Location
}

func NewGoalHandler(
	goalService *service.GoalService,
	activityService *service.ActivityService,
	logService *service.LogService,
	statsService *service.StatsService,
	loc *time.Location,
) *GoalHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &GoalHandler{
		goalService:     goalService,
		activityService: activityService,
		logService:      logService,
		statsService:    statsService,
		loc:             loc,
	}
}

// List returns the caller's goals. ?public=true lists goals shared by
// anyone, ?copied=true lists other users' goals. Over HTTP copied is always
// combined with public: other users' private goals never leave the server.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	q := r.URL.Query()

	filter := repository.GoalFilter{
		Public: q.Get("public") == "true",
		Copied: q.Get("copied") == "true",
	}
	if filter.Copied {
		filter.Public = true
	}
	if !filter.Public {
		filter.Mine = true
	}

	writeJSON(w, http.StatusOK, h.goalService.Goals(r.Context(), userID, filter))
}

func (h *GoalHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.goalService.DefaultGoals())
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in model.GoalInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if in.Author.Name == "" {
		in.Author.Name = user.Name
		in.Author.Avatar = user.Avatar
	}

	goal, err := h.goalService.Create(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) Show(w http.ResponseWriter, r *http.Request) {
	goal, err := readableGoal(r.Context(), h.goalService, r.PathValue("id"), ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("id")
	_, err := ownedGoal(r.Context(), h.goalService, goalID, ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var update model.GoalUpdate
	err = decodeJSON(w, r, &update)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.Update(r.Context(), goalID, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// ReplaceActivities stores the full, ordered activity list of a goal.
func (h *GoalHandler) ReplaceActivities(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("id")
	_, err := ownedGoal(r.Context(), h.goalService, goalID, ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var activities []model.Activity
	err = decodeJSON(w, r, &activities)
	if err != nil {
		writeError(w, r, err)
		return
	}

	saved, err := h.goalService.ReplaceActivities(r.Context(), goalID, activities)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *GoalHandler) Copy(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	_, err := readableGoal(r.Context(), h.goalService, goalID, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.Copy(r.Context(), goalID, *user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

// Delete removes a goal. ?purgeLogs=true also removes its logs.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	goalID := r.PathValue("id")
	_, err := ownedGoal(r.Context(), h.goalService, goalID, ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	purge, _ := strconv.ParseBool(r.URL.Query().Get("purgeLogs"))
	err = h.goalService.Delete(r.Context(), goalID, purge)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Progress recomputes the caller's progress on the goal.
func (h *GoalHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	_, err := readableGoal(r.Context(), h.goalService, goalID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	progress, err := h.goalService.RefreshProgress(r.Context(), userID, goalID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// Stats aggregates the caller's logs on a goal. Optional query parameters:
// category, type, from and to (YYYY-MM-DD or RFC 3339).
func (h *GoalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	_, err := readableGoal(r.Context(), h.goalService, goalID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter, err := h.statsFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.UserID = userID

	writeJSON(w, http.StatusOK, h.statsService.GoalStats(r.Context(), goalID, filter))
}

func (h *GoalHandler) Streak(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	_, err := readableGoal(r.Context(), h.goalService, goalID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"streak": h.statsService.Streak(r.Context(), userID, goalID)})
}

func (h *GoalHandler) Pending(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	_, err := readableGoal(r.Context(), h.goalService, goalID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.activityService.PendingToday(r.Context(), userID, goalID))
}

func (h *GoalHandler) ActivityStates(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	_, err := ownedGoal(r.Context(), h.goalService, goalID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	states, err := h.activityService.States(r.Context(), userID, goalID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

// Logs lists the caller's logs on a goal, newest first.
func (h *GoalHandler) Logs(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	_, err := readableGoal(r.Context(), h.goalService, goalID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var own model.Logs
	for _, l := range h.logService.GoalLogs(r.Context(), goalID) {
		if l.Common().UserID == userID {
			own = append(own, l)
		}
	}
	if own == nil {
		own = model.Logs{}
	}
	writeJSON(w, http.StatusOK, own)
}

func (h *GoalHandler) statsFilter(r *http.Request) (stats.Filter, error) {
	q := r.URL.Query()
	filter := stats.Filter{
		Category:     model.Category(q.Get("category")),
		ActivityType: model.ActivityType(q.Get("type")),
		Location:     h.loc,
	}

	var err error
	filter.From, err = parseBound(q.Get("from"), h.loc, false)
	if err != nil {
		return filter, err
	}
	filter.To, err = parseBound(q.Get("to"), h.loc, true)
	if err != nil {
		return filter, err
	}
	return filter, nil
}

// parseBound reads a window bound. A bare date covers the whole day, so as
// an upper bound it resolves to the last instant of that day.
func parseBound(v string, loc *time.Location, upper bool) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	day, err := time.ParseInLocation(time.DateOnly, v, loc)
	if err != nil {
		field := "from"
		if upper {
			field = "to"
		}
		return time.Time{}, &validation.Error{Field: field, Message: fmt.Sprintf("invalid date %q: want YYYY-MM-DD or RFC 3339", v)}
	}
	if upper {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}
