// Package stats aggregates completion logs into the figures shown on a
// goal's progress screens.
package stats

import (
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/templui/ritual/internal/model"
)

const dayLayout = "2006-01-02"

// Filter narrows the logs taken into account. Zero fields match everything;
// From and To are inclusive bounds on the log creation time.
type Filter struct {
	Category     model.Category
	ActivityType model.ActivityType
	From         time.Time
	To           time.Time
	Location     *time.Location

	// UserID restricts the logs to one user. Bundled goals are shared, so
	// their logs mix every user's records.
	UserID string
}

type Counter struct {
	Count         int `json:"count"`
	TotalDuration int `json:"totalDuration"`
}

type CategoryStat struct {
	Label string `json:"label"`
	Counter
}

type DayBucket struct {
	Date string `json:"date"`
	Counter
}

type Timing struct {
	FirstCompletedAt time.Time `json:"firstCompletedAt"`
	LastCompletedAt  time.Time `json:"lastCompletedAt"`
	Count            int       `json:"count"`
}

// Consistency describes runs of consecutive active days inside the
// filtered window. TrailingRun ends at the last active day of the window,
// which is not necessarily today; see Streak for that.
type Consistency struct {
	ActiveDays  int `json:"activeDays"`
	LongestRun  int `json:"longestRun"`
	TrailingRun int `json:"trailingRun"`
}

type Summary struct {
	TotalTimeSpent int                              `json:"totalTimeSpent"`
	TotalCompleted int                              `json:"totalCompleted"`
	CategoryStats  map[model.Category]*CategoryStat `json:"categoryStats"`
	ItemStats      map[string]*Counter              `json:"itemStats"`
	TimeSeries     []DayBucket                      `json:"timeSeries"`
	ActivityTiming map[string]*Timing               `json:"activityTimingStats"`
	PromptStats    map[string]map[string]int        `json:"promptStats"`
	Consistency    Consistency                      `json:"consistency"`
}

// CategoryLabel turns a category slug such as "self-care" into "Self-Care".
func CategoryLabel(c model.Category) string {
	// A Caser keeps state, so each call gets its own
	return cases.Title(language.English).String(string(c))
}

// Aggregate folds logs into a Summary. Completion counts come only from
// activity logs and durations only from step logs. Logs are attributed to
// activities through their activity id; logs whose activity is unknown
// still count toward the totals unless a category or type filter is set.
func Aggregate(logs []model.Log, activities []model.Activity, f Filter) Summary {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}

	byID := make(map[string]model.Activity, len(activities))
	for _, a := range activities {
		byID[a.ID] = a
	}

	s := Summary{
		CategoryStats:  map[model.Category]*CategoryStat{},
		ItemStats:      map[string]*Counter{},
		TimeSeries:     []DayBucket{},
		ActivityTiming: map[string]*Timing{},
		PromptStats:    map[string]map[string]int{},
	}
	days := map[string]*Counter{}

	// oldest first, so timing min/max follow the scan order
	ordered := make([]model.Log, len(logs))
	copy(ordered, logs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Common().CreatedAt.Before(ordered[j].Common().CreatedAt)
	})

	for _, l := range ordered {
		if !f.inWindow(l.Common().CreatedAt) {
			continue
		}
		if f.UserID != "" && l.Common().UserID != f.UserID {
			continue
		}

		switch l := l.(type) {
		case *model.ActivityLog:
			a, known := byID[l.ActivityID]
			if !f.matches(a, known) {
				continue
			}
			s.TotalCompleted++
			if known {
				s.category(a.Category).Count++
				s.item(a.Slug).Count++
			}

			at := l.CreatedAt
			if l.CompletedAt != nil {
				at = *l.CompletedAt
			}
			t, ok := s.ActivityTiming[l.ActivityID]
			if !ok {
				t = &Timing{FirstCompletedAt: at, LastCompletedAt: at}
				s.ActivityTiming[l.ActivityID] = t
			}
			if at.Before(t.FirstCompletedAt) {
				t.FirstCompletedAt = at
			}
			if at.After(t.LastCompletedAt) {
				t.LastCompletedAt = at
			}
			t.Count++

		case *model.StepLog:
			a, known := byID[l.ActivityID]
			if !f.matches(a, known) {
				continue
			}
			d := l.Duration()
			s.TotalTimeSpent += d
			if known {
				s.category(a.Category).TotalDuration += d
				s.item(a.Slug).TotalDuration += d
			}

			key := l.CreatedAt.In(loc).Format(dayLayout)
			bucket, ok := days[key]
			if !ok {
				bucket = &Counter{}
				days[key] = bucket
			}
			bucket.Count++
			bucket.TotalDuration += d

		case *model.PromptLog:
			if l.AnswerType != model.AnswerSelect && l.AnswerType != model.AnswerBoolean {
				continue
			}
			a, known := byID[l.ActivityID]
			if !f.matches(a, known) {
				continue
			}
			hist, ok := s.PromptStats[l.PromptID]
			if !ok {
				hist = map[string]int{}
				s.PromptStats[l.PromptID] = hist
			}
			for _, v := range l.Answer.Values() {
				hist[v]++
			}
		}
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.TimeSeries = append(s.TimeSeries, DayBucket{Date: k, Counter: *days[k]})
	}
	s.Consistency = consistency(keys)

	return s
}

func (s *Summary) category(c model.Category) *CategoryStat {
	stat, ok := s.CategoryStats[c]
	if !ok {
		stat = &CategoryStat{Label: CategoryLabel(c)}
		s.CategoryStats[c] = stat
	}
	return stat
}

func (s *Summary) item(slug string) *Counter {
	c, ok := s.ItemStats[slug]
	if !ok {
		c = &Counter{}
		s.ItemStats[slug] = c
	}
	return c
}

func (f Filter) inWindow(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.After(f.To) {
		return false
	}
	return true
}

func (f Filter) matches(a model.Activity, known bool) bool {
	if f.Category == "" && f.ActivityType == "" {
		return true
	}
	if !known {
		return false
	}
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.ActivityType != "" && a.Type != f.ActivityType {
		return false
	}
	return true
}

// consistency walks sorted day keys and measures runs of consecutive days.
func consistency(days []string) Consistency {
	c := Consistency{ActiveDays: len(days)}
	run := 0
	var prev time.Time
	for i, key := range days {
		day, err := time.Parse(dayLayout, key)
		if err != nil {
			continue
		}
		if i > 0 && day.Equal(prev.AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > c.LongestRun {
			c.LongestRun = run
		}
		prev = day
	}
	c.TrailingRun = run
	return c
}
