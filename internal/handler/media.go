package handler

import (
	"errors"
	"net/http"

	"github.com/templui/ritual/internal/ctxkeys"
	"github.com/templui/ritual/internal/service"
	"github.com/templui/ritual/internal/validation"
)

type MediaHandler struct {
	mediaService *service.MediaService
	goalService  *service.GoalService
	maxBytes     int64
}

func NewMediaHandler(mediaService *service.MediaService, goalService *service.GoalService, maxBytes int64) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		goalService:  goalService,
		maxBytes:     maxBytes,
	}
}

// Upload accepts a multipart form with a "file" part and an optional
// "altText" field and records it as a media upload log on the goal.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	_, err := readableGoal(r.Context(), h.goalService, goalID, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	err = r.ParseMultipartForm(h.maxBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, &validation.Error{Field: "file", Message: "file too large"})
			return
		}
		writeError(w, r, ErrBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, &validation.Error{Field: "file", Message: "file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	log, err := h.mediaService.Upload(r.Context(), userID, goalID, r.FormValue("altText"), file, header)
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
