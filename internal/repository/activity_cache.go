package repository

import (
	"slices"
	"sync"

	"github.com/templui/ritual/internal/model"
)

// ActivityCache memoizes the unfiltered activity listing. Every write that
// touches the activities table must call Invalidate.
type ActivityCache struct {
	mu         sync.RWMutex
	activities []model.Activity
	valid      bool
}

func NewActivityCache() *ActivityCache {
	return &ActivityCache{}
}

// Get returns a copy of the cached listing and whether it was populated.
func (c *ActivityCache) Get() ([]model.Activity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid {
		return nil, false
	}
	return slices.Clone(c.activities), true
}

func (c *ActivityCache) Set(activities []model.Activity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.activities = slices.Clone(activities)
	c.valid = true
}

func (c *ActivityCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.activities = nil
	c.valid = false
}
