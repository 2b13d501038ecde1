package planner

import (
	"gonum.org/v1/gonum/floats"
)

// StageExecutionResult represents one contiguous layer range [Begin, End)
// fused into a single pipeline stage. Instances are immutable after
// construction and shared by reference across every PipelineExecutionResult
// that includes them — see StageCache for the exactly-once construction
// guarantee.
type StageExecutionResult struct {
	Begin, End      int
	ForwardLatency  float64
	BackwardLatency float64
	Memory          int64
}

// Latency returns the stage's scalar cost used by the pipeline cost model:
// forward plus backward latency.
func (s *StageExecutionResult) Latency() float64 {
	return s.ForwardLatency + s.BackwardLatency
}

// newStageExecutionResult is the Stage Cost Primitive: a pure, deterministic
// function of profile[begin:end]. Safe to call concurrently on disjoint or
// overlapping ranges — it has no side effects and allocates a fresh result.
//
// Memory is aggregated as a sum, not a max (spec.md §4.1 leaves this choice
// to the implementation): a stage fusing k layers holds all k layers'
// parameters/activations resident simultaneously, so summing is the
// conservative choice for a memory-feasibility model. See SPEC_FULL.md §5.
func newStageExecutionResult(p *Profile, begin, end int) *StageExecutionResult {
	n := end - begin
	fwd := make([]float64, n)
	bwd := make([]float64, n)
	var mem int64
	for i := begin; i < end; i++ {
		l := p.Layers[i]
		fwd[i-begin] = l.ForwardLatency
		bwd[i-begin] = l.BackwardLatency
		mem += l.Memory
	}
	return &StageExecutionResult{
		Begin:           begin,
		End:             end,
		ForwardLatency:  floats.Sum(fwd),
		BackwardLatency: floats.Sum(bwd),
		Memory:          mem,
	}
}

// PipelineExecutionResult represents an assignment of some range to some
// number of stages. Aggregates are derived once at construction time so that
// the total order (see less) is a pure function of the result, never of how
// it was built.
type PipelineExecutionResult struct {
	Stages        []*StageExecutionResult
	Bottleneck    float64 // max per-stage latency; governs throughput
	TotalForward  float64
	TotalBackward float64
	MaxMemory     int64 // max per-stage memory across the pipeline
}

// NumStages returns the number of stages in the pipeline.
func (p *PipelineExecutionResult) NumStages() int {
	return len(p.Stages)
}

// Begin returns the start of the range this result covers.
func (p *PipelineExecutionResult) Begin() int {
	return p.Stages[0].Begin
}

// End returns the end of the range this result covers.
func (p *PipelineExecutionResult) End() int {
	return p.Stages[len(p.Stages)-1].End
}

// Latency returns the pipeline's modeled end-to-end cost.
//
// Formula pinned down here (spec.md §9 leaves this as an Open Question):
// bottleneck-only, not bottleneck plus a fill/drain term. The profile
// carries no micro-batch count, so a fill/drain term would be fabricated;
// bottleneck latency is the steady-state, throughput-determining quantity.
// See SPEC_FULL.md §5.
func (p *PipelineExecutionResult) Latency() float64 {
	return p.Bottleneck
}

// makeBaseResult is the Pipeline Cost Primitive's base construction: wraps
// exactly one stage into a 1-stage pipeline.
func makeBaseResult(stage *StageExecutionResult) *PipelineExecutionResult {
	return &PipelineExecutionResult{
		Stages:        []*StageExecutionResult{stage},
		Bottleneck:    stage.Latency(),
		TotalForward:  stage.ForwardLatency,
		TotalBackward: stage.BackwardLatency,
		MaxMemory:     stage.Memory,
	}
}

// composeResults is the Pipeline Cost Primitive's composition: concatenates
// left over [i, k) with right over [k, j) into a pipeline over [i, j).
// Associative up to the total order (lessResult below), so any correct
// bracketing of a given (s, i, j) split is interchangeable, as spec.md §3
// requires.
func composeResults(left, right *PipelineExecutionResult) *PipelineExecutionResult {
	stages := make([]*StageExecutionResult, 0, len(left.Stages)+len(right.Stages))
	stages = append(stages, left.Stages...)
	stages = append(stages, right.Stages...)

	bottleneck := left.Bottleneck
	if right.Bottleneck > bottleneck {
		bottleneck = right.Bottleneck
	}
	maxMem := left.MaxMemory
	if right.MaxMemory > maxMem {
		maxMem = right.MaxMemory
	}

	return &PipelineExecutionResult{
		Stages:        stages,
		Bottleneck:    bottleneck,
		TotalForward:  left.TotalForward + right.TotalForward,
		TotalBackward: left.TotalBackward + right.TotalBackward,
		MaxMemory:     maxMem,
	}
}

// lessResult implements the strict weak total order used to select the
// minimum candidate at each DP cell (spec.md §3). It is a pure function of
// the two results' aggregates — never of construction history — so the
// parallel reduction over candidates can apply it in any order.
//
// Keys, in priority order:
//  1. Bottleneck latency, ascending (primary: lower steady-state cost wins)
//  2. TotalForward + TotalBackward, ascending (secondary: less total work)
//  3. MaxMemory, ascending (tertiary: smaller peak footprint)
//  4. Smallest per-stage latency, descending (more balanced stages win)
//  5. Stage boundaries, lexicographic ascending (final: deterministic)
func lessResult(a, b *PipelineExecutionResult) bool {
	if a.Bottleneck != b.Bottleneck {
		return a.Bottleneck < b.Bottleneck
	}
	aTotal := a.TotalForward + a.TotalBackward
	bTotal := b.TotalForward + b.TotalBackward
	if aTotal != bTotal {
		return aTotal < bTotal
	}
	if a.MaxMemory != b.MaxMemory {
		return a.MaxMemory < b.MaxMemory
	}
	if aMin, bMin := minStageLatency(a.Stages), minStageLatency(b.Stages); aMin != bMin {
		return aMin > bMin
	}
	return lessBoundaries(a.Stages, b.Stages)
}

// minStageLatency returns the smallest per-stage latency in stages.
func minStageLatency(stages []*StageExecutionResult) float64 {
	var lowest float64
	for idx, st := range stages {
		if l := st.Latency(); idx == 0 || l < lowest {
			lowest = l
		}
	}
	return lowest
}

func lessBoundaries(a, b []*StageExecutionResult) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i].Begin != b[i].Begin {
			return a[i].Begin < b[i].Begin
		}
		if a[i].End != b[i].End {
			return a[i].End < b[i].End
		}
	}
	return len(a) < len(b)
}
