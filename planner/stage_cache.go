package planner

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// stageKey identifies a contiguous layer range [Begin, End).
type stageKey struct {
	begin, end int
}

// StageCache is a concurrent, append-only mapping from layer range to a
// shared *StageExecutionResult. It keeps exactly one instance per key:
// concurrent GetOrInsert calls for the same key collapse onto a single
// stored instance, and every reader observes that same instance.
// Eviction is never permitted.
type StageCache struct {
	entries sync.Map // stageKey -> *StageExecutionResult
}

// NewStageCache creates an empty StageCache.
func NewStageCache() *StageCache {
	return &StageCache{}
}

// GetOrInsert returns the cached *StageExecutionResult for [begin, end),
// constructing it via the Stage Cost Primitive on first access. Safe for
// concurrent use; the primitive may be invoked more than once by racing
// callers, but only one constructed value is ever kept and returned.
func (c *StageCache) GetOrInsert(p *Profile, begin, end int) *StageExecutionResult {
	key := stageKey{begin, end}
	if v, ok := c.entries.Load(key); ok {
		return v.(*StageExecutionResult)
	}
	candidate := newStageExecutionResult(p, begin, end)
	actual, loaded := c.entries.LoadOrStore(key, candidate)
	result := actual.(*StageExecutionResult)
	if !loaded {
		logrus.Debugf("StageExecutionResult(%d, %d) -> %v", begin, end, result.Latency())
	}
	return result
}

// Get returns the stage result for [begin, end) if already computed.
func (c *StageCache) Get(begin, end int) (*StageExecutionResult, bool) {
	v, ok := c.entries.Load(stageKey{begin, end})
	if !ok {
		return nil, false
	}
	return v.(*StageExecutionResult), true
}
