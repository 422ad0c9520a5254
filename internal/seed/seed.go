// Package seed bundles the default goals every user can browse and copy.
// Goals are markdown files whose YAML frontmatter carries the goal and its
// activities; the markdown body becomes the description.
package seed

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/templui/ritual/internal/markdown"
	"github.com/templui/ritual/internal/model"
)

//go:embed goals/*.md
var goalsFS embed.FS

// Author is credited on every bundled goal.
var Author = model.Author{ID: "ritual", Name: "Ritual"}

var (
	loadOnce sync.Once
	goals    []model.Goal
	loadErr  error
)

// Goals returns the bundled goals sorted by slug.
func Goals() ([]model.Goal, error) {
	loadOnce.Do(func() {
		goals, loadErr = load(goalsFS, markdown.NewParser())
	})
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]model.Goal, len(goals))
	copy(out, goals)
	return out, nil
}

// Goal returns the bundled goal with the given id.
func Goal(id string) (model.Goal, bool) {
	all, err := Goals()
	if err != nil {
		return model.Goal{}, false
	}
	for _, g := range all {
		if g.ID == id {
			return g, true
		}
	}
	return model.Goal{}, false
}

func load(fsys fs.FS, p *markdown.Parser) ([]model.Goal, error) {
	files, err := fs.Glob(fsys, "goals/*.md")
	if err != nil {
		return nil, err
	}

	var out []model.Goal
	for _, file := range files {
		source, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		var g model.Goal
		body, err := p.SplitFrontmatter(source, &g)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}

		if g.Slug == "" {
			g.Slug = strings.TrimSuffix(path.Base(file), ".md")
		}
		if g.Description == "" {
			g.Description = string(body)
		}
		g.Author = Author
		g.IsPublic = true
		g.Status = model.GoalStatusPublished
		g.Version = 1
		for i := range g.Activities {
			g.Activities[i].GoalID = g.ID
		}
		g.Normalize()

		out = append(out, g)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}
