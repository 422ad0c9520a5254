package handler

import (
	"net/http"
	"time"

	"github.com/templui/ritual/internal/ctxkeys"
	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/schedule"
	"github.com/templui/ritual/internal/service"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	goalService     *service.GoalService
	loc             *time.Location
	now             func() time.Time
}

func NewActivityHandler(activityService *service.ActivityService, goalService *service.GoalService, loc *time.Location) *ActivityHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ActivityHandler{
		activityService: activityService,
		goalService:     goalService,
		loc:             loc,
		now:             time.Now,
	}
}

// activityView adds the next scheduled time to an activity.
type activityView struct {
	*model.Activity
	NextOccurrence *time.Time `json:"nextOccurrence,omitempty"`
}

func (h *ActivityHandler) view(a *model.Activity) activityView {
	v := activityView{Activity: a}
	if next, ok := schedule.NextOccurrence(*a, h.now().In(h.loc)); ok {
		v.NextOccurrence = &next
	}
	return v
}

func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var activity model.Activity
	err := decodeJSON(w, r, &activity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, err = ownedGoal(r.Context(), h.goalService, activity.GoalID, ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.activityService.Create(r.Context(), &activity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(&activity))
}

func (h *ActivityHandler) Show(w http.ResponseWriter, r *http.Request) {
	activity, err := h.activityService.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, err = readableGoal(r.Context(), h.goalService, activity.GoalID, ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(activity))
}

func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.activityService.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, err = ownedGoal(r.Context(), h.goalService, existing.GoalID, ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var activity model.Activity
	err = decodeJSON(w, r, &activity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	activity.ID = existing.ID

	err = h.activityService.Update(r.Context(), &activity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(&activity))
}

func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, err := h.activityService.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, err = ownedGoal(r.Context(), h.goalService, existing.GoalID, ctxkeys.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.activityService.Delete(r.Context(), existing.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Pending lists what is due today across every goal the caller owns.
func (h *ActivityHandler) Pending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.activityService.AllPendingToday(r.Context(), ctxkeys.UserID(r.Context())))
}

// Reminders lists the caller's activities whose reminder fires this minute.
func (h *ActivityHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.activityService.Reminders(r.Context(), ctxkeys.UserID(r.Context())))
}
