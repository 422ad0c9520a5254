package validation

import (
	"github.com/templui/ritual/internal/model"
)

// ValidateLog checks a log before it is appended. When the activity the
// log belongs to is known, prompt answers are checked against its prompt.
func ValidateLog(l model.Log, activity *model.Activity) error {
	if l == nil {
		return invalid("type", "log is required")
	}

	err := ValidateStruct(l)
	if err != nil {
		return err
	}

	switch l := l.(type) {
	case *model.MediaUploadLog:
		if l.Media.URL == "" {
			return invalid("media.url", "media.url is required")
		}
	case *model.PromptLog:
		if activity == nil {
			return nil
		}
		prompt, ok := activity.PromptByID(l.PromptID)
		if !ok {
			return invalid("promptId", "activity %q has no prompt %q", activity.Slug, l.PromptID)
		}
		if prompt.AnswerType != l.AnswerType {
			return invalid("answerType", "prompt %q expects a %s answer", prompt.Slug, prompt.AnswerType)
		}
		err = prompt.ValidateAnswer(l.Answer)
		if err != nil {
			return invalid("answer", "%v", err)
		}
	}
	return nil
}
