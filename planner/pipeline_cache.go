package planner

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// pipelineKey identifies a (stage count, layer range) subproblem.
type pipelineKey struct {
	stages, begin, end int
}

// pipelineCell is the value stored at one Pipeline Cache key: either a
// feasible result, or an infeasibility marker carrying a short reason.
type pipelineCell struct {
	result       *PipelineExecutionResult // nil if infeasible
	feasible     bool
	infeasReason string
}

// PipelineCache is a concurrent, append-only mapping from (s, i, j) to a
// feasible result or an infeasibility marker. Every key is written exactly
// once; a second InsertOnce for an already-written key is a solver bug
// (wave-ordering violation) and is reported as such rather than silently
// overwriting. Eviction is never permitted.
type PipelineCache struct {
	entries sync.Map // pipelineKey -> pipelineCell
}

// NewPipelineCache creates an empty PipelineCache.
func NewPipelineCache() *PipelineCache {
	return &PipelineCache{}
}

// InsertOnce writes the feasible result for (s, i, j). Returns
// ErrInternalInvariantViolated if the key was already written.
func (c *PipelineCache) InsertOnce(s, i, j int, result *PipelineExecutionResult) error {
	return c.insertCell(s, i, j, pipelineCell{result: result, feasible: true})
}

// InsertInfeasible writes an infeasibility marker for (s, i, j). Returns
// ErrInternalInvariantViolated if the key was already written.
func (c *PipelineCache) InsertInfeasible(s, i, j int, reason string) error {
	return c.insertCell(s, i, j, pipelineCell{feasible: false, infeasReason: reason})
}

func (c *PipelineCache) insertCell(s, i, j int, cell pipelineCell) error {
	key := pipelineKey{s, i, j}
	if _, loaded := c.entries.LoadOrStore(key, cell); loaded {
		return newErr(ErrInternalInvariantViolated, nil, "pipeline cache cell (%d, %d, %d) written more than once", s, i, j)
	}
	if cell.feasible {
		logrus.Debugf("PipelineExecutionResult(%d, %d, %d) -> %v", s, i, j, cell.result.Latency())
	} else {
		logrus.Debugf("PipelineExecutionResult(%d, %d, %d) -> infeasible: %s", s, i, j, cell.infeasReason)
	}
	return nil
}

// Get reads the cell at (s, i, j). Wave ordering guarantees the reader sees
// a finalized value once the corresponding wave barrier has passed, so no
// blocking semantics are needed here. ok is false only if the cell has
// never been written, which indicates a solver bug.
func (c *PipelineCache) Get(s, i, j int) (result *PipelineExecutionResult, feasible bool, ok bool) {
	v, loaded := c.entries.Load(pipelineKey{s, i, j})
	if !loaded {
		return nil, false, false
	}
	cell := v.(pipelineCell)
	return cell.result, cell.feasible, true
}
