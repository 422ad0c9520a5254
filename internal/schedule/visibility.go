package schedule

import (
	"slices"

	"github.com/templui/ritual/internal/model"
)

// VisibleSteps filters steps down to those whose visibleIf slugs are all
// done. Slugs that name no earlier step are ignored.
func VisibleSteps(steps []model.Step, doneStepSlugs []string) []model.Step {
	visible := []model.Step{}
	for i, step := range steps {
		show := true
		for _, slug := range step.VisibleIf {
			if !earlierStep(steps[:i], slug) {
				continue
			}
			if !slices.Contains(doneStepSlugs, slug) {
				show = false
				break
			}
		}
		if show {
			visible = append(visible, step)
		}
	}
	return visible
}

// VisiblePrompts filters prompts down to those whose dependency is
// satisfied by answers, keyed by prompt slug. A dependency on a slug that
// no prompt carries is ignored.
func VisiblePrompts(prompts []model.CompletionPrompt, answers map[string]model.Answer) []model.CompletionPrompt {
	visible := []model.CompletionPrompt{}
	for _, p := range prompts {
		cond := p.Condition()
		if cond == nil || !hasPrompt(prompts, cond.Slug) {
			visible = append(visible, p)
			continue
		}
		answer, ok := answers[cond.Slug]
		if ok && answer.Equal(cond.Value) {
			visible = append(visible, p)
		}
	}
	return visible
}

func earlierStep(steps []model.Step, slug string) bool {
	for _, s := range steps {
		if s.Slug == slug {
			return true
		}
	}
	return false
}

func hasPrompt(prompts []model.CompletionPrompt, slug string) bool {
	for _, p := range prompts {
		if p.Slug == slug {
			return true
		}
	}
	return false
}
