package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type LogType string

const (
	LogTypeActivity    LogType = "activity"
	LogTypePrompt      LogType = "prompt"
	LogTypeStep        LogType = "step"
	LogTypeMediaUpload LogType = "media_upload"
	LogTypeFeedback    LogType = "feedback"
)

type FeedbackAuthor string

const (
	FeedbackAuthorUser FeedbackAuthor = "user"
	FeedbackAuthorAI   FeedbackAuthor = "ai"
)

var ErrUnknownLogType = errors.New("unknown log type")

// Log is an immutable completion record. The concrete type is one of
// *ActivityLog, *PromptLog, *StepLog, *MediaUploadLog or *FeedbackLog.
type Log interface {
	Type() LogType
	Common() *LogBase
	sealed()
}

// LogBase holds the fields shared by every log variant.
type LogBase struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId" validate:"required"`
	GoalID    string         `json:"goalId" validate:"required"`
	CreatedAt time.Time      `json:"createdAt"`
	Meta      map[string]any `json:"meta,omitempty"`
}

func (b *LogBase) Common() *LogBase { return b }

type ActivityLog struct {
	LogBase
	ActivityID   string       `json:"activityId" validate:"required"`
	ActivityType ActivityType `json:"activityType"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
}

type PromptLog struct {
	LogBase
	ActivityID string     `json:"activityId" validate:"required"`
	SessionID  string     `json:"sessionId,omitempty"`
	PromptID   string     `json:"promptId" validate:"required"`
	AnswerType AnswerType `json:"answerType" validate:"required"`
	Answer     Answer     `json:"answer"`
}

type StepLog struct {
	LogBase
	ActivityID        string `json:"activityId" validate:"required"`
	StepID            string `json:"stepId" validate:"required"`
	StepIndex         int    `json:"stepIndex" validate:"gte=0"`
	DurationInSeconds *int   `json:"durationInSeconds,omitempty" validate:"omitempty,gte=0"`
}

type MediaUploadLog struct {
	LogBase
	Media Media `json:"media"`
}

type FeedbackLog struct {
	LogBase
	AuthorType FeedbackAuthor `json:"authorType" validate:"required,oneof=user ai"`
	AuthorID   string         `json:"authorId"`
	Feedback   string         `json:"feedback" validate:"required"`
}

func (*ActivityLog) Type() LogType    { return LogTypeActivity }
func (*PromptLog) Type() LogType      { return LogTypePrompt }
func (*StepLog) Type() LogType        { return LogTypeStep }
func (*MediaUploadLog) Type() LogType { return LogTypeMediaUpload }
func (*FeedbackLog) Type() LogType    { return LogTypeFeedback }

func (*ActivityLog) sealed()    {}
func (*PromptLog) sealed()      {}
func (*StepLog) sealed()        {}
func (*MediaUploadLog) sealed() {}
func (*FeedbackLog) sealed()    {}

// Duration returns the logged step duration, zero when untimed.
func (l *StepLog) Duration() int {
	if l.DurationInSeconds == nil {
		return 0
	}
	return *l.DurationInSeconds
}

// NewLog returns an empty log for the given discriminant.
func NewLog(t LogType) (Log, error) {
	switch t {
	case LogTypeActivity:
		return &ActivityLog{}, nil
	case LogTypePrompt:
		return &PromptLog{}, nil
	case LogTypeStep:
		return &StepLog{}, nil
	case LogTypeMediaUpload:
		return &MediaUploadLog{}, nil
	case LogTypeFeedback:
		return &FeedbackLog{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLogType, t)
}

// DecodeLog reads a JSON log object and dispatches on its "type" field.
func DecodeLog(data []byte) (Log, error) {
	var head struct {
		Type LogType `json:"type"`
	}
	err := json.Unmarshal(data, &head)
	if err != nil {
		return nil, fmt.Errorf("failed to read log type: %w", err)
	}

	log, err := NewLog(head.Type)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(data, log)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s log: %w", head.Type, err)
	}
	return log, nil
}

// EncodeLog writes a log as JSON with its "type" discriminant.
func EncodeLog(l Log) ([]byte, error) {
	body, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	err = json.Unmarshal(body, &fields)
	if err != nil {
		return nil, err
	}
	fields["type"], _ = json.Marshal(l.Type())
	return json.Marshal(fields)
}

// Logs is a list of logs that encodes each entry with its discriminant.
type Logs []Log

func (ls Logs) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(ls))
	for _, l := range ls {
		b, err := EncodeLog(l)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return json.Marshal(out)
}
