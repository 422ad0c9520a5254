package model

import (
	"fmt"
	"strings"
	"time"
)

type ActivityType string

const (
	ActivityTypeGuided ActivityType = "GUIDED_ACTIVITY"
	ActivityTypeTask   ActivityType = "TASK_ACTIVITY"
)

type Recurrence string

const (
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

type DurationUnit string

const (
	DurationSeconds DurationUnit = "seconds"
	DurationMinutes DurationUnit = "minutes"
	DurationHours   DurationUnit = "hours"
)

type UnlockCondition string

const (
	UnlockAfterPriorCompletion UnlockCondition = "after_prior_completion"
	UnlockAfterDays            UnlockCondition = "after_days"
	UnlockAfterDate            UnlockCondition = "after_date"
)

// ScheduleEntry is one slot in an activity's schedule. DayOfWeek runs from
// 1 (Monday) to 7 (Sunday) and is only set for weekly recurrence.
type ScheduleEntry struct {
	TimeOfDay string `json:"timeOfDay" validate:"required"`
	DayOfWeek *int   `json:"dayOfWeek,omitempty" validate:"omitempty,min=1,max=7"`
}

// Clock parses TimeOfDay into hour and minute.
func (e ScheduleEntry) Clock() (hour, minute int, err error) {
	return ParseTimeOfDay(e.TimeOfDay)
}

// Weekday maps DayOfWeek onto time.Weekday. ok is false when unset or out of range.
func (e ScheduleEntry) Weekday() (day time.Weekday, ok bool) {
	if e.DayOfWeek == nil || *e.DayOfWeek < 1 || *e.DayOfWeek > 7 {
		return 0, false
	}
	return time.Weekday(*e.DayOfWeek % 7), true
}

// DayName is the lower-cased weekday name for DayOfWeek, or "" when unset.
func (e ScheduleEntry) DayName() string {
	day, ok := e.Weekday()
	if !ok {
		return ""
	}
	return strings.ToLower(day.String())
}

// ParseTimeOfDay parses a zero-padded 24h "HH:MM" value.
func ParseTimeOfDay(v string) (hour, minute int, err error) {
	if len(v) != 5 || v[2] != ':' {
		return 0, 0, fmt.Errorf("invalid time of day %q: want HH:MM", v)
	}
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", v, err)
	}
	return t.Hour(), t.Minute(), nil
}

type Step struct {
	ID           string       `json:"id"`
	Slug         string       `json:"slug" validate:"required"`
	Title        string       `json:"title" validate:"required"`
	Description  string       `json:"description,omitempty"`
	Duration     *int         `json:"duration,omitempty" validate:"omitempty,gt=0"`
	DurationUnit DurationUnit `json:"durationUnit,omitempty" validate:"omitempty,oneof=seconds minutes hours"`
	VisibleIf    []string     `json:"visibleIf,omitempty"`
}

// Seconds converts the step duration into seconds. Zero when untimed.
func (s Step) Seconds() int {
	if s.Duration == nil {
		return 0
	}
	switch s.DurationUnit {
	case DurationHours:
		return *s.Duration * 3600
	case DurationMinutes:
		return *s.Duration * 60
	default:
		return *s.Duration
	}
}

type ActivityDependency struct {
	Slug string `json:"slug" validate:"required"`
}

type UnlockParams struct {
	Days int        `json:"days,omitempty"`
	Date *time.Time `json:"date,omitempty"`
}

type Activity struct {
	ID                   string               `json:"id"`
	GoalID               string               `json:"goalId"`
	Slug                 string               `json:"slug" validate:"required,max=120"`
	Name                 string               `json:"name" validate:"required,max=200"`
	Description          string               `json:"description"`
	FeaturedImage        string               `json:"featuredImage,omitempty"`
	Type                 ActivityType         `json:"type" validate:"required,oneof=GUIDED_ACTIVITY TASK_ACTIVITY"`
	Category             Category             `json:"category" validate:"required,oneof=self-care hobby productivity fitness finance custom"`
	NotificationsEnabled bool                 `json:"notificationsEnabled"`
	Recurrence           Recurrence           `json:"recurrence,omitempty" validate:"omitempty,oneof=daily weekly"`
	ScheduledTimes       []ScheduleEntry      `json:"scheduledTimes" validate:"dive"`
	Steps                []Step               `json:"steps" validate:"dive"`
	CompletionPrompts    []CompletionPrompt   `json:"completionPrompts,omitempty" validate:"dive"`
	ReliesOn             []ActivityDependency `json:"reliesOn,omitempty" validate:"dive"`
	UnlockCondition      UnlockCondition      `json:"unlockCondition,omitempty" validate:"omitempty,oneof=after_prior_completion after_days after_date"`
	UnlockParams         *UnlockParams        `json:"unlockParams,omitempty"`
	Meta                 map[string]any       `json:"meta,omitempty"`
}

// StepBySlug returns the step with the given slug.
func (a *Activity) StepBySlug(slug string) (Step, bool) {
	for _, s := range a.Steps {
		if s.Slug == slug {
			return s, true
		}
	}
	return Step{}, false
}

// PromptByID finds a completion prompt by id or slug.
func (a *Activity) PromptByID(id string) (CompletionPrompt, bool) {
	for _, p := range a.CompletionPrompts {
		if p.ID == id || p.Slug == id {
			return p, true
		}
	}
	return CompletionPrompt{}, false
}

// TotalSeconds sums the timed steps of a guided activity.
func (a *Activity) TotalSeconds() int {
	total := 0
	for _, s := range a.Steps {
		total += s.Seconds()
	}
	return total
}
