package model

import (
	"time"
)

type Category string

const (
	CategorySelfCare     Category = "self-care"
	CategoryHobby        Category = "hobby"
	CategoryProductivity Category = "productivity"
	CategoryFitness      Category = "fitness"
	CategoryFinance      Category = "finance"
	CategoryCustom       Category = "custom"
)

type GoalStatus string

const (
	GoalStatusDraft     GoalStatus = "draft"
	GoalStatusPublished GoalStatus = "published"
)

type CompletionType string

const (
	CompletionIndefinite    CompletionType = "indefinite"
	CompletionActivityCount CompletionType = "activity-count"
	CompletionDatetime      CompletionType = "datetime"
)

// MetaTargetCount is the goal meta key holding the number of distinct
// activities an activity-count goal needs before it counts as completed.
const MetaTargetCount = "targetCount"

type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type Progress struct {
	Completed   int  `json:"completed"`
	Total       int  `json:"total"`
	IsCompleted bool `json:"isCompleted"`
}

type Goal struct {
	ID                    string          `json:"id"`
	Slug                  string          `json:"slug"`
	Name                  string          `json:"name"`
	Description           string          `json:"description"`
	FeaturedImage         string          `json:"featuredImage,omitempty"`
	Category              Category        `json:"category"`
	Tags                  []string        `json:"tags"`
	Author                Author          `json:"author"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
	IsPublic              bool            `json:"isPublic"`
	Version               int             `json:"version"`
	Status                GoalStatus      `json:"status"`
	CompletionType        CompletionType  `json:"completionType"`
	CompletionDate        *time.Time      `json:"completionDate,omitempty"`
	DefaultRecurrence     Recurrence      `json:"defaultRecurrence,omitempty"`
	DefaultScheduledTimes []ScheduleEntry `json:"defaultScheduledTimes,omitempty"`
	Progress              *Progress       `json:"progress,omitempty"`
	Meta                  map[string]any  `json:"meta,omitempty"`

	// Loaded separately, never stored on the goal row
	Activities []Activity `json:"activities"`
}

// Normalize enforces that only datetime goals carry a completion date.
func (g *Goal) Normalize() {
	if g.CompletionType != CompletionDatetime {
		g.CompletionDate = nil
	}
	if g.Tags == nil {
		g.Tags = []string{}
	}
	if g.Activities == nil {
		g.Activities = []Activity{}
	}
}

// TargetCount reads the activity-count target from meta, falling back to the
// number of activities when unset.
func (g *Goal) TargetCount() int {
	if g.Meta != nil {
		switch v := g.Meta[MetaTargetCount].(type) {
		case float64:
			return int(v)
		case int:
			return v
		case int64:
			return int(v)
		}
	}
	return len(g.Activities)
}

// GoalInput is what an author submits when creating a goal.
type GoalInput struct {
	Slug                  string          `json:"slug" validate:"required,max=120"`
	Name                  string          `json:"name" validate:"required,max=200"`
	Description           string          `json:"description" validate:"max=5000"`
	FeaturedImage         string          `json:"featuredImage,omitempty" validate:"omitempty,url"`
	Category              Category        `json:"category" validate:"required,oneof=self-care hobby productivity fitness finance custom"`
	Tags                  []string        `json:"tags" validate:"dive,required,max=50"`
	Author                Author          `json:"author"`
	IsPublic              bool            `json:"isPublic"`
	CompletionType        CompletionType  `json:"completionType" validate:"required,oneof=indefinite activity-count datetime"`
	CompletionDate        *time.Time      `json:"completionDate,omitempty"`
	DefaultRecurrence     Recurrence      `json:"defaultRecurrence,omitempty" validate:"omitempty,oneof=daily weekly"`
	DefaultScheduledTimes []ScheduleEntry `json:"defaultScheduledTimes,omitempty" validate:"dive"`
	Progress              *Progress       `json:"progress,omitempty"`
	Meta                  map[string]any  `json:"meta,omitempty"`
}

// GoalUpdate carries a partial update; nil fields keep the existing value.
type GoalUpdate struct {
	Slug                  *string         `json:"slug,omitempty"`
	Name                  *string         `json:"name,omitempty"`
	Description           *string         `json:"description,omitempty"`
	FeaturedImage         *string         `json:"featuredImage,omitempty"`
	Category              *Category       `json:"category,omitempty"`
	Tags                  []string        `json:"tags,omitempty"`
	IsPublic              *bool           `json:"isPublic,omitempty"`
	Version               *int            `json:"version,omitempty"`
	Status                *GoalStatus     `json:"status,omitempty"`
	CompletionType        *CompletionType `json:"completionType,omitempty"`
	CompletionDate        *time.Time      `json:"completionDate,omitempty"`
	DefaultRecurrence     *Recurrence     `json:"defaultRecurrence,omitempty"`
	DefaultScheduledTimes []ScheduleEntry `json:"defaultScheduledTimes,omitempty"`
	Progress              *Progress       `json:"progress,omitempty"`
	Meta                  map[string]any  `json:"meta,omitempty"`
}

// Apply merges the update onto a copy of existing and returns it.
func (u GoalUpdate) Apply(existing Goal) Goal {
	g := existing
	if u.Slug != nil {
		g.Slug = *u.Slug
	}
	if u.Name != nil {
		g.Name = *u.Name
	}
	if u.Description != nil {
		g.Description = *u.Description
	}
	if u.FeaturedImage != nil {
		g.FeaturedImage = *u.FeaturedImage
	}
	if u.Category != nil {
		g.Category = *u.Category
	}
	if u.Tags != nil {
		g.Tags = u.Tags
	}
	if u.IsPublic != nil {
		g.IsPublic = *u.IsPublic
	}
	if u.Version != nil {
		g.Version = *u.Version
	}
	if u.Status != nil {
		g.Status = *u.Status
	}
	if u.CompletionType != nil {
		g.CompletionType = *u.CompletionType
	}
	if u.CompletionDate != nil {
		g.CompletionDate = u.CompletionDate
	}
	if u.DefaultRecurrence != nil {
		g.DefaultRecurrence = *u.DefaultRecurrence
	}
	if u.DefaultScheduledTimes != nil {
		g.DefaultScheduledTimes = u.DefaultScheduledTimes
	}
	if u.Progress != nil {
		g.Progress = u.Progress
	}
	if u.Meta != nil {
		g.Meta = u.Meta
	}
	return g
}
