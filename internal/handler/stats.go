package handler

import (
	"net/http"

	"github.com/templui/ritual/internal/ctxkeys"
	"github.com/templui/ritual/internal/service"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// Streak counts the caller's consecutive active days across all goals.
func (h *StatsHandler) Streak(w http.ResponseWriter, r *http.Request) {
	streak := h.statsService.Streak(r.Context(), ctxkeys.UserID(r.Context()), "")
	writeJSON(w, http.StatusOK, map[string]int{"streak": streak})
}
