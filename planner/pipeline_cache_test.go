package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineCache_InsertOnce_SecondWriteIsInvariantViolation(t *testing.T) {
	cache := NewPipelineCache()
	result := makeBaseResult(&StageExecutionResult{Begin: 0, End: 1, ForwardLatency: 1, BackwardLatency: 1, Memory: 1})

	require.NoError(t, cache.InsertOnce(1, 0, 1, result))

	err := cache.InsertOnce(1, 0, 1, result)
	require.Error(t, err)
	assert.True(t, IsInternalInvariantViolated(err))
}

func TestPipelineCache_InsertInfeasible_ThenGet(t *testing.T) {
	cache := NewPipelineCache()
	require.NoError(t, cache.InsertInfeasible(3, 0, 2, "fewer layers than requested stages"))

	result, feasible, ok := cache.Get(3, 0, 2)
	assert.True(t, ok)
	assert.False(t, feasible)
	assert.Nil(t, result)
}

func TestPipelineCache_Get_MissingCellNotOK(t *testing.T) {
	cache := NewPipelineCache()
	_, _, ok := cache.Get(1, 0, 1)
	assert.False(t, ok)
}

func TestPipelineCache_InsertOnce_ThenGetReturnsSameResult(t *testing.T) {
	cache := NewPipelineCache()
	result := makeBaseResult(&StageExecutionResult{Begin: 0, End: 1, ForwardLatency: 2, BackwardLatency: 3, Memory: 4})
	require.NoError(t, cache.InsertOnce(1, 0, 1, result))

	got, feasible, ok := cache.Get(1, 0, 1)
	assert.True(t, ok)
	assert.True(t, feasible)
	assert.Same(t, result, got)
}
