package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/templui/ritual/internal/model"
	"github.com/templui/ritual/internal/repository"
	"github.com/templui/ritual/internal/validation"
)

// AnalysisAuthorID identifies the symmetry analysis as the author of the
// feedback logs it writes.
const AnalysisAuthorID = "symmetry-analysis"

const analysisImageCount = 3

var ErrAnalysisDisabled = errors.New("symmetry analysis is not configured")

type AnalysisRequest struct {
	ImageURLs []string `json:"imageUrls"`
	Prompt    string   `json:"prompt"`
}

type AnalysisResult struct {
	SymmetryScore         float64           `json:"symmetryScore"`
	Profiles              map[string]string `json:"profiles"`
	RecommendedActivities []string          `json:"recommendedActivities"`
}

type AnalysisService struct {
	logRepo repository.LogRepository
	client  *http.Client
	url     string
	apiKey  string
}

// NewAnalysisService wires the remote analysis function. An empty url
// disables it.
func NewAnalysisService(logRepo repository.LogRepository, url, apiKey string, timeout time.Duration) *AnalysisService {
	return &AnalysisService{
		logRepo: logRepo,
		client:  &http.Client{Timeout: timeout},
		url:     url,
		apiKey:  apiKey,
	}
}

func (s *AnalysisService) Enabled() bool {
	return s.url != ""
}

// Analyze sends three face photos to the analysis function and records the
// outcome as AI feedback on the goal.
func (s *AnalysisService) Analyze(ctx context.Context, userID, goalID string, req AnalysisRequest) (*AnalysisResult, error) {
	if !s.Enabled() {
		return nil, ErrAnalysisDisabled
	}
	if goalID == "" {
		return nil, &validation.Error{Field: "goalId", Message: "goalId is required"}
	}
	if len(req.ImageURLs) != analysisImageCount {
		return nil, &validation.Error{Field: "imageUrls", Message: fmt.Sprintf("exactly %d images are required", analysisImageCount)}
	}
	for i, u := range req.ImageURLs {
		if !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
			return nil, &validation.Error{Field: "imageUrls", Message: fmt.Sprintf("imageUrls[%d] must be an http(s) URL", i)}
		}
	}

	result, raw, err := s.call(ctx, req)
	if err != nil {
		slog.Error("symmetry analysis failed", "error", err, "user_id", userID, "goal_id", goalID)
		return nil, err
	}

	feedback := &model.FeedbackLog{
		LogBase: model.LogBase{
			UserID: userID,
			GoalID: goalID,
			Meta: map[string]any{
				"symmetryScore":         result.SymmetryScore,
				"recommendedActivities": result.RecommendedActivities,
			},
		},
		AuthorType: model.FeedbackAuthorAI,
		AuthorID:   AnalysisAuthorID,
		Feedback:   raw,
	}
	err = s.logRepo.CreateFeedbackLog(ctx, feedback)
	if err != nil {
		return nil, fmt.Errorf("failed to record analysis feedback: %w", err)
	}

	return result, nil
}

func (s *AnalysisService) call(ctx context.Context, req AnalysisRequest) (*AnalysisResult, string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("analysis request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("analysis error: %d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return parseAnalysis(data)
}

// parseAnalysis accepts either the result object itself or an envelope whose
// "result" text holds it, possibly inside a markdown code fence.
func parseAnalysis(data []byte) (*AnalysisResult, string, error) {
	var envelope struct {
		Result string `json:"result"`
	}
	err := json.Unmarshal(data, &envelope)
	if err == nil && envelope.Result != "" {
		data = []byte(extractJSON(envelope.Result))
	}

	var result AnalysisResult
	err = json.Unmarshal(data, &result)
	if err != nil {
		return nil, "", fmt.Errorf("parse analysis: %w", err)
	}
	if result.Profiles == nil {
		result.Profiles = map[string]string{}
	}
	if result.RecommendedActivities == nil {
		result.RecommendedActivities = []string{}
	}
	return &result, string(data), nil
}

// extractJSON finds the first JSON object in s.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if last := strings.LastIndex(s, "```"); last >= 0 {
			s = s[:last]
		}
	}

	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
