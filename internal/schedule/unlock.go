package schedule

import (
	"slices"
	"time"

	"github.com/templui/ritual/internal/model"
)

// Unlocked reports whether a may be started. Every resolvable ReliesOn
// dependency must be completed, then the unlock condition is checked.
// Dependencies naming slugs that no sibling carries are ignored.
func Unlocked(a model.Activity, siblings []model.Activity, completedSlugs []string, goalCreated, now time.Time) bool {
	for _, dep := range a.ReliesOn {
		if !hasSlug(siblings, dep.Slug) {
			continue
		}
		if !slices.Contains(completedSlugs, dep.Slug) {
			return false
		}
	}

	switch a.UnlockCondition {
	case model.UnlockAfterPriorCompletion:
		prior, ok := priorSibling(a, siblings)
		if !ok {
			return true
		}
		return slices.Contains(completedSlugs, prior.Slug)
	case model.UnlockAfterDays:
		if a.UnlockParams == nil || a.UnlockParams.Days <= 0 {
			return true
		}
		return !now.Before(goalCreated.AddDate(0, 0, a.UnlockParams.Days))
	case model.UnlockAfterDate:
		if a.UnlockParams == nil || a.UnlockParams.Date == nil {
			return true
		}
		return !now.Before(*a.UnlockParams.Date)
	}
	return true
}

func hasSlug(activities []model.Activity, slug string) bool {
	for _, a := range activities {
		if a.Slug == slug {
			return true
		}
	}
	return false
}

// priorSibling returns the activity listed directly before a.
func priorSibling(a model.Activity, siblings []model.Activity) (model.Activity, bool) {
	for i, s := range siblings {
		if s.Slug != a.Slug {
			continue
		}
		if i == 0 {
			return model.Activity{}, false
		}
		return siblings[i-1], true
	}
	return model.Activity{}, false
}
