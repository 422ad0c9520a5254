package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/storage"
	"github.com/templui/ritual/internal/validation"
)

type MediaService struct {
	logRepo repository.LogRepository
	storage storage.Storage
}

// NewMediaService wires media uploads. A nil store disables uploads.
func NewMediaService(logRepo repository.LogRepository, store storage.Storage) *MediaService {
	return &MediaService{
		logRepo: logRepo,
		storage: store,
	}
}

func (s *MediaService) Enabled() bool {
	return s.storage != nil
}

// Upload validates the file, stores it, and appends a media upload log
// pointing at it.
func (s *MediaService) Upload(ctx context.Context, userID, goalID, altText string, file multipart.File, header *multipart.FileHeader) (*model.MediaUploadLog, error) {
	if s.storage == nil {
		return nil, storage.ErrDisabled
	}
	if goalID == "" {
		return nil, &validation.Error{Field: "goalId", Message: "goalId is required"}
	}

	kind, err := validation.ValidateFile(header, validation.ImageConstraints, validation.VideoConstraints, validation.DocumentConstraints)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	key := path.Join("media", userID, goalID, uuid.New().String()+ext)

	err = s.storage.Save(ctx, key, file, header.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to save media: %w", err)
	}

	log := &model.MediaUploadLog{
		LogBase: model.LogBase{
			UserID: userID,
			GoalID: goalID,
			Meta:   map[string]any{"storageKey": key, "originalName": header.Filename},
		},
		Media: model.Media{
			Type:    kind,
			URL:     s.storage.URL(ctx, key),
			AltText: altText,
		},
	}

	err = s.logRepo.CreateMediaUploadLog(ctx, log)
	if err != nil {
		// If the log insert fails, try to clean up the stored object
		delErr := s.storage.Delete(ctx, key)
		if delErr != nil {
			slog.Error("failed to delete media during cleanup", "error", delErr, "key", key)
		}
		return nil, fmt.Errorf("failed to record media upload: %w", err)
	}

	slog.Info("media uploaded", "user_id", userID, "goal_id", goalID, "kind", kind)
	return log, nil
}
