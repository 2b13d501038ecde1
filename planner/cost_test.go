package planner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func equalCostProfile(n int) *Profile {
	layers := make([]LayerRecord, n)
	for i := 0; i < n; i++ {
		layers[i] = LayerRecord{Index: i, Name: layerName(i), ForwardLatency: 1, BackwardLatency: 1, Memory: 1}
	}
	return &Profile{Layers: layers}
}

func increasingCostProfile(n int) *Profile {
	layers := make([]LayerRecord, n)
	for i := 0; i < n; i++ {
		cost := float64(i + 1)
		layers[i] = LayerRecord{Index: i, Name: layerName(i), ForwardLatency: cost, BackwardLatency: cost, Memory: int64(i + 1)}
	}
	return &Profile{Layers: layers}
}

func layerName(i int) string {
	return fmt.Sprintf("layer%d", i)
}

func TestNewStageExecutionResult_SumsForwardBackwardAndMemory(t *testing.T) {
	// GIVEN a 6-layer profile with cost i+1 per layer
	p := increasingCostProfile(6)

	// WHEN a stage is built over [1, 4) (layers with cost 2, 3, 4)
	stage := newStageExecutionResult(p, 1, 4)

	// THEN forward/backward latency and memory are the sums of that range
	assert.Equal(t, 9.0, stage.ForwardLatency)
	assert.Equal(t, 9.0, stage.BackwardLatency)
	assert.Equal(t, int64(9), stage.Memory)
	assert.Equal(t, 18.0, stage.Latency())
}

func TestMakeBaseResult_WrapsSingleStage(t *testing.T) {
	stage := &StageExecutionResult{Begin: 0, End: 2, ForwardLatency: 3, BackwardLatency: 4, Memory: 10}
	base := makeBaseResult(stage)

	assert.Equal(t, 1, base.NumStages())
	assert.Equal(t, 7.0, base.Bottleneck)
	assert.Equal(t, 7.0, base.Latency())
	assert.Equal(t, int64(10), base.MaxMemory)
}

func TestComposeResults_BottleneckIsMaxOfSides(t *testing.T) {
	left := makeBaseResult(&StageExecutionResult{Begin: 0, End: 2, ForwardLatency: 2, BackwardLatency: 2, Memory: 5})
	right := makeBaseResult(&StageExecutionResult{Begin: 2, End: 4, ForwardLatency: 10, BackwardLatency: 10, Memory: 3})

	composed := composeResults(left, right)

	assert.Equal(t, 20.0, composed.Bottleneck) // right's stage latency dominates
	assert.Equal(t, 12.0, composed.TotalForward)
	assert.Equal(t, 12.0, composed.TotalBackward)
	assert.Equal(t, int64(5), composed.MaxMemory) // max, not sum, of per-stage memory
	assert.Equal(t, 2, composed.NumStages())
	assert.Equal(t, 0, composed.Begin())
	assert.Equal(t, 4, composed.End())
}

func TestComposeResults_Associative(t *testing.T) {
	// GIVEN three single-layer stages
	a := makeBaseResult(&StageExecutionResult{Begin: 0, End: 1, ForwardLatency: 1, BackwardLatency: 1, Memory: 1})
	b := makeBaseResult(&StageExecutionResult{Begin: 1, End: 2, ForwardLatency: 2, BackwardLatency: 2, Memory: 2})
	c := makeBaseResult(&StageExecutionResult{Begin: 2, End: 3, ForwardLatency: 3, BackwardLatency: 3, Memory: 3})

	// WHEN composed as (a+b)+c and a+(b+c)
	left := composeResults(composeResults(a, b), c)
	right := composeResults(a, composeResults(b, c))

	// THEN both bracketings are equivalent under the total order
	assert.False(t, lessResult(left, right))
	assert.False(t, lessResult(right, left))
	assert.Equal(t, left.Bottleneck, right.Bottleneck)
	assert.Equal(t, left.TotalForward, right.TotalForward)
	assert.Equal(t, left.MaxMemory, right.MaxMemory)
}

func TestLessResult_PrimaryKeyIsBottleneck(t *testing.T) {
	lowBottleneck := &PipelineExecutionResult{Bottleneck: 1, Stages: []*StageExecutionResult{{Begin: 0, End: 1}}}
	highBottleneck := &PipelineExecutionResult{Bottleneck: 2, Stages: []*StageExecutionResult{{Begin: 0, End: 1}}}

	assert.True(t, lessResult(lowBottleneck, highBottleneck))
	assert.False(t, lessResult(highBottleneck, lowBottleneck))
}

func TestLessResult_TieBreaksOnTotalThenMemoryThenBoundaries(t *testing.T) {
	base := func(total float64, mem int64, begin, end int) *PipelineExecutionResult {
		return &PipelineExecutionResult{
			Bottleneck:    5,
			TotalForward:  total / 2,
			TotalBackward: total / 2,
			MaxMemory:     mem,
			Stages:        []*StageExecutionResult{{Begin: begin, End: end}},
		}
	}

	lowerTotal := base(10, 100, 0, 1)
	higherTotal := base(20, 100, 0, 1)
	assert.True(t, lessResult(lowerTotal, higherTotal))

	sameTotalLowerMem := base(10, 50, 0, 1)
	sameTotalHigherMem := base(10, 100, 0, 1)
	assert.True(t, lessResult(sameTotalLowerMem, sameTotalHigherMem))

	sameEverythingEarlierBoundary := base(10, 50, 0, 1)
	sameEverythingLaterBoundary := base(10, 50, 1, 2)
	assert.True(t, lessResult(sameEverythingEarlierBoundary, sameEverythingLaterBoundary))
}
