package validation

import (
	"github.com/templui/ritual/internal/model"
)

// ValidateActivity checks an activity before it is saved.
func ValidateActivity(a model.Activity) error {
	err := ValidateStruct(a)
	if err != nil {
		return err
	}

	err = ValidateSlug("slug", a.Slug)
	if err != nil {
		return err
	}

	err = ValidateSchedule("scheduledTimes", a.Recurrence, a.ScheduledTimes)
	if err != nil {
		return err
	}

	err = validateSteps(a)
	if err != nil {
		return err
	}

	err = validatePrompts(a.CompletionPrompts)
	if err != nil {
		return err
	}

	for _, dep := range a.ReliesOn {
		if dep.Slug == a.Slug {
			return invalid("reliesOn", "an activity cannot rely on itself")
		}
	}

	switch a.UnlockCondition {
	case model.UnlockAfterDays:
		if a.UnlockParams == nil || a.UnlockParams.Days <= 0 {
			return invalid("unlockParams.days", "unlocking after days needs a positive number of days")
		}
	case model.UnlockAfterDate:
		if a.UnlockParams == nil || a.UnlockParams.Date == nil {
			return invalid("unlockParams.date", "unlocking after a date needs a date")
		}
	}
	return nil
}

func validateSteps(a model.Activity) error {
	seen := map[string]bool{}
	for i, s := range a.Steps {
		if seen[s.Slug] {
			return invalid("steps", "steps[%d]: slug %q is used twice", i, s.Slug)
		}
		seen[s.Slug] = true

		switch a.Type {
		case model.ActivityTypeGuided:
			if s.Duration == nil || s.DurationUnit == "" {
				return invalid("steps", "steps[%d]: guided steps need a duration and unit", i)
			}
		case model.ActivityTypeTask:
			if s.Duration != nil {
				return invalid("steps", "steps[%d]: task steps cannot have a duration", i)
			}
		}
	}
	return nil
}

func validatePrompts(prompts []model.CompletionPrompt) error {
	seen := map[string]bool{}
	for i, p := range prompts {
		if seen[p.Slug] {
			return invalid("completionPrompts", "completionPrompts[%d]: slug %q is used twice", i, p.Slug)
		}
		seen[p.Slug] = true

		err := p.CheckVariant()
		if err != nil {
			return invalid("completionPrompts", "completionPrompts[%d]: %v", i, err)
		}

		if cond := p.Condition(); cond != nil && cond.Slug == p.Slug {
			return invalid("completionPrompts", "completionPrompts[%d]: a prompt cannot depend on itself", i)
		}
	}
	return nil
}
