package handler

import (
	"net/http"

	"github.com/templui/ritual/internal/ctxkeys"
	"github.com/templui/ritual/internal/service"
)

type AnalysisHandler struct {
	analysisService *service.AnalysisService
	goalService     *service.GoalService
}

func NewAnalysisHandler(analysisService *service.AnalysisService, goalService *service.GoalService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		goalService:     goalService,
	}
}

// Analyze runs the facial symmetry analysis on three uploaded photos.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	_, err := readableGoal(r.Context(), h.goalService, goalID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req service.AnalysisRequest
	err = decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.analysisService.Analyze(r.Context(), userID, goalID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
