package model

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
)

type AnswerType string

const (
	AnswerText     AnswerType = "text"
	AnswerNumber   AnswerType = "number"
	AnswerBoolean  AnswerType = "boolean"
	AnswerSelect   AnswerType = "select"
	AnswerMedia    AnswerType = "media"
	AnswerDocument AnswerType = "document"
)

var ErrInvalidAnswer = errors.New("invalid answer")

// PromptDependency hides a prompt until the prompt with Slug was answered
// with Value.
type PromptDependency struct {
	Slug  string `json:"slug" validate:"required"`
	Value any    `json:"value"`
}

type TextConstraints struct {
	MinLength   int    `json:"minLength,omitempty" validate:"gte=0"`
	MaxLength   int    `json:"maxLength,omitempty" validate:"gte=0"`
	Placeholder string `json:"placeholder,omitempty"`
	Multiline   bool   `json:"multiline,omitempty"`
}

type NumberConstraints struct {
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step *float64 `json:"step,omitempty" validate:"omitempty,gt=0"`
	Unit string   `json:"unit,omitempty"`
}

type SelectOption struct {
	Label string `json:"label" validate:"required"`
	Value string `json:"value" validate:"required"`
}

type SelectConstraints struct {
	Options  []SelectOption `json:"options" validate:"required,min=1,dive"`
	Multiple bool           `json:"multiple,omitempty"`
}

type MediaConstraints struct {
	MediaTypes []string `json:"mediaTypes,omitempty"`
	MaxCount   int      `json:"maxCount,omitempty" validate:"gte=0"`
}

type DocumentConstraints struct {
	AllowedExtensions []string `json:"allowedExtensions,omitempty"`
	MaxSizeMB         int      `json:"maxSizeMB,omitempty" validate:"gte=0"`
}

// CompletionPrompt is a question asked after an activity. Exactly the
// constraint block matching AnswerType may be set.
type CompletionPrompt struct {
	ID         string               `json:"id"`
	Slug       string               `json:"slug" validate:"required"`
	Question   string               `json:"question" validate:"required"`
	AnswerType AnswerType           `json:"answerType" validate:"required,oneof=text number boolean select media document"`
	Required   bool                 `json:"required,omitempty"`
	DependsOn  *PromptDependency    `json:"dependsOn,omitempty"`
	ReliesOn   *PromptDependency    `json:"reliesOn,omitempty"`
	Text       *TextConstraints     `json:"text,omitempty"`
	Number     *NumberConstraints   `json:"number,omitempty"`
	Select     *SelectConstraints   `json:"select,omitempty"`
	Media      *MediaConstraints    `json:"media,omitempty"`
	Document   *DocumentConstraints `json:"document,omitempty"`
}

// Condition returns the visibility rule, preferring dependsOn over the older
// reliesOn spelling.
func (p CompletionPrompt) Condition() *PromptDependency {
	if p.DependsOn != nil {
		return p.DependsOn
	}
	return p.ReliesOn
}

// CheckVariant reports an error when a constraint block that does not belong
// to AnswerType is set.
func (p CompletionPrompt) CheckVariant() error {
	set := map[AnswerType]bool{
		AnswerText:     p.Text != nil,
		AnswerNumber:   p.Number != nil,
		AnswerSelect:   p.Select != nil,
		AnswerMedia:    p.Media != nil,
		AnswerDocument: p.Document != nil,
	}
	for t, ok := range set {
		if ok && t != p.AnswerType {
			return fmt.Errorf("prompt %q: %s constraints set on a %s prompt", p.Slug, t, p.AnswerType)
		}
	}
	if p.AnswerType == AnswerSelect && (p.Select == nil || len(p.Select.Options) == 0) {
		return fmt.Errorf("prompt %q: select prompts need options", p.Slug)
	}
	return nil
}

// ValidateAnswer checks an answer against the prompt's type and constraints.
func (p CompletionPrompt) ValidateAnswer(a Answer) error {
	if a.IsNull() {
		if p.Required {
			return fmt.Errorf("%w: %q is required", ErrInvalidAnswer, p.Slug)
		}
		return nil
	}

	switch p.AnswerType {
	case AnswerText:
		s, ok := a.Text()
		if !ok {
			return fmt.Errorf("%w: %q expects text", ErrInvalidAnswer, p.Slug)
		}
		if p.Text != nil {
			n := len([]rune(strings.TrimSpace(s)))
			if p.Text.MinLength > 0 && n < p.Text.MinLength {
				return fmt.Errorf("%w: %q needs at least %d characters", ErrInvalidAnswer, p.Slug, p.Text.MinLength)
			}
			if p.Text.MaxLength > 0 && n > p.Text.MaxLength {
				return fmt.Errorf("%w: %q allows at most %d characters", ErrInvalidAnswer, p.Slug, p.Text.MaxLength)
			}
		}
	case AnswerNumber:
		n, ok := a.Number()
		if !ok {
			return fmt.Errorf("%w: %q expects a number", ErrInvalidAnswer, p.Slug)
		}
		if p.Number != nil {
			if p.Number.Min != nil && n < *p.Number.Min {
				return fmt.Errorf("%w: %q must be at least %g", ErrInvalidAnswer, p.Slug, *p.Number.Min)
			}
			if p.Number.Max != nil && n > *p.Number.Max {
				return fmt.Errorf("%w: %q must be at most %g", ErrInvalidAnswer, p.Slug, *p.Number.Max)
			}
		}
	case AnswerBoolean:
		if _, ok := a.Bool(); !ok {
			return fmt.Errorf("%w: %q expects true or false", ErrInvalidAnswer, p.Slug)
		}
	case AnswerSelect:
		values := a.Values()
		if values == nil {
			return fmt.Errorf("%w: %q expects an option", ErrInvalidAnswer, p.Slug)
		}
		if p.Select != nil {
			if len(values) > 1 && !p.Select.Multiple {
				return fmt.Errorf("%w: %q allows a single option", ErrInvalidAnswer, p.Slug)
			}
			for _, v := range values {
				if !p.hasOption(v) {
					return fmt.Errorf("%w: %q has no option %q", ErrInvalidAnswer, p.Slug, v)
				}
			}
		}
	case AnswerMedia:
		m, ok := a.Media()
		if !ok || m.URL == "" {
			return fmt.Errorf("%w: %q expects a media asset", ErrInvalidAnswer, p.Slug)
		}
		if p.Media != nil && len(p.Media.MediaTypes) > 0 && !slices.Contains(p.Media.MediaTypes, m.Type) {
			return fmt.Errorf("%w: %q does not accept %s", ErrInvalidAnswer, p.Slug, m.Type)
		}
	case AnswerDocument:
		m, ok := a.Media()
		if !ok || m.URL == "" {
			return fmt.Errorf("%w: %q expects a document", ErrInvalidAnswer, p.Slug)
		}
		if p.Document != nil && len(p.Document.AllowedExtensions) > 0 {
			ext := strings.TrimPrefix(strings.ToLower(path.Ext(m.URL)), ".")
			allowed := false
			for _, e := range p.Document.AllowedExtensions {
				if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
					allowed = true
					break
				}
			}
			if !allowed {
				return fmt.Errorf("%w: %q does not accept .%s files", ErrInvalidAnswer, p.Slug, ext)
			}
		}
	default:
		return fmt.Errorf("%w: unknown answer type %q", ErrInvalidAnswer, p.AnswerType)
	}
	return nil
}

func (p CompletionPrompt) hasOption(v string) bool {
	for _, o := range p.Select.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}
