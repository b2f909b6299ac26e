package api

import (
	"sync"

	"github.com/warp/benefit-engine/pipeline"
)

const maxRecentRuns = 20

// runCache keeps the last runs in memory, oldest evicted first.
type runCache struct {
	mu    sync.RWMutex
	max   int
	order []string
	byID  map[string]*pipeline.Result
}

func newRunCache(limit int) *runCache {
	return &runCache{max: limit, byID: make(map[string]*pipeline.Result)}
}

func (c *runCache) add(res *pipeline.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[res.RunID]; !ok {
		c.order = append(c.order, res.RunID)
	}
	c.byID[res.RunID] = res
	for len(c.order) > c.max {
		delete(c.byID, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *runCache) get(id string) (*pipeline.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.byID[id]
	return res, ok
}

// list returns the cached runs, newest first.
func (c *runCache) list() []*pipeline.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*pipeline.Result, 0, len(c.order))
	for i := len(c.order) - 1; i >= 0; i-- {
		out = append(out, c.byID[c.order[i]])
	}
	return out
}
