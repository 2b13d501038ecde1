// Package planner computes optimal pipeline partitionings for layered ML
// models distributed across a variable number of compute nodes.
//
// # Reading Guide
//
// Start with these files to understand the solver:
//   - profile.go: LayerRecord and the per-layer profile loaded from CSV
//   - cost.go: StageExecutionResult / PipelineExecutionResult and the total order used to pick a "best" candidate
//   - stage_cache.go, pipeline_cache.go: the concurrent, append-only memoization tables
//   - solver.go: the wave-parallel dynamic program that fills the pipeline cache
//   - extractor.go: reads a solved cache cell back out into a list of per-stage layer names
//   - facade.go: CreatePipelineTemplates, the single public entry point
//
// # Architecture
//
// Given L layers and a target stage count s, the solver considers every
// contiguous layer range [i, j) fused into one stage (the Stage Cache) and
// every way of splitting a range into s stages (the Pipeline Cache), wave by
// wave in increasing stage count. Each wave is computed with bounded
// parallelism via golang.org/x/sync/errgroup; a wave barrier (errgroup.Wait)
// is the only synchronization the solver needs, because stage count s only
// ever reads cells with stage count < s.
package planner
