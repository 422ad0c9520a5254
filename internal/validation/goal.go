package validation

import (
	"github.com/templui/ritual/internal/model"
)

// ValidateGoalInput checks a goal submitted for creation.
func ValidateGoalInput(in model.GoalInput) error {
	err := ValidateStruct(in)
	if err != nil {
		return err
	}
	return ValidateGoal(model.Goal{
		Slug:                  in.Slug,
		Name:                  in.Name,
		Category:              in.Category,
		CompletionType:        in.CompletionType,
		CompletionDate:        in.CompletionDate,
		DefaultRecurrence:     in.DefaultRecurrence,
		DefaultScheduledTimes: in.DefaultScheduledTimes,
	})
}

// ValidateGoal checks the rules a stored goal must satisfy. It runs on the
// merged result of an update as well as on new goals.
func ValidateGoal(g model.Goal) error {
	err := ValidateSlug("slug", g.Slug)
	if err != nil {
		return err
	}

	err = ValidateName("name", g.Name)
	if err != nil {
		return err
	}

	switch g.Category {
	case model.CategorySelfCare, model.CategoryHobby, model.CategoryProductivity,
		model.CategoryFitness, model.CategoryFinance, model.CategoryCustom:
	default:
		return invalid("category", "category %q is not supported", g.Category)
	}

	switch g.CompletionType {
	case model.CompletionDatetime:
		if g.CompletionDate == nil {
			return invalid("completionDate", "completionDate is required when the goal ends on a date")
		}
	case model.CompletionIndefinite, model.CompletionActivityCount:
	default:
		return invalid("completionType", "completionType %q is not supported", g.CompletionType)
	}

	if g.CompletionType == model.CompletionActivityCount && g.Meta != nil {
		if _, ok := g.Meta[model.MetaTargetCount]; ok && g.TargetCount() <= 0 {
			return invalid("meta.targetCount", "targetCount must be a positive number")
		}
	}

	return ValidateSchedule("defaultScheduledTimes", g.DefaultRecurrence, g.DefaultScheduledTimes)
}

// ValidateSchedule enforces that weekly entries name a day and daily
// entries do not, and that every time reads "HH:MM".
func ValidateSchedule(field string, rec model.Recurrence, entries []model.ScheduleEntry) error {
	switch rec {
	case "", model.RecurrenceDaily, model.RecurrenceWeekly:
	default:
		return invalid("recurrence", "recurrence %q is not supported", rec)
	}

	for i, e := range entries {
		_, _, err := e.Clock()
		if err != nil {
			return invalid(field, "%s[%d]: time must use the HH:MM format", field, i)
		}

		if e.DayOfWeek != nil && (*e.DayOfWeek < 1 || *e.DayOfWeek > 7) {
			return invalid(field, "%s[%d]: dayOfWeek must be between 1 and 7", field, i)
		}

		switch rec {
		case model.RecurrenceWeekly:
			if e.DayOfWeek == nil {
				return invalid(field, "%s[%d]: weekly schedules need a day of the week", field, i)
			}
		case model.RecurrenceDaily:
			if e.DayOfWeek != nil {
				return invalid(field, "%s[%d]: daily schedules cannot set a day of the week", field, i)
			}
		}
	}
	return nil
}
