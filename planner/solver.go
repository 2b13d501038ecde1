package planner

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Solver orchestrates the wave-by-wave fill of the Pipeline Cache, grounded
// on pipeline_template_generator.rs's divide_and_conquer: phase 1 computes
// every base case (1-stage pipeline over every range) in parallel; phase 2
// computes stage counts 2..S_max in strict order, each wave fully parallel
// internally, separated by a wave barrier so that stage count s only ever
// reads cells with stage count < s.
//
// Thread-safety: Solve must be called from a single goroutine (it is the
// unit of concurrency, not something to parallelize itself); the caches and
// candidate reduction it drives are safe for concurrent use by its own
// worker pool. Cell and Profile are safe to call concurrently once Solve
// has returned.
type Solver struct {
	profile *Profile
	config  PlannerConfig

	stages    *StageCache
	pipelines *PipelineCache

	maxStages int
	solved    bool
}

// NewSolver creates a Solver for profile, ready to Solve up to maxStages.
func NewSolver(profile *Profile, config PlannerConfig) *Solver {
	return &Solver{
		profile:   profile,
		config:    config,
		stages:    NewStageCache(),
		pipelines: NewPipelineCache(),
		maxStages: 0,
	}
}

// Solve fills the Pipeline Cache for stage counts 1..maxStages. A second
// call on an already-solved instance (same or smaller maxStages) is a
// no-op, matching spec.md §4.5's idempotence requirement.
func (s *Solver) Solve(ctx context.Context, maxStages int) error {
	L := s.profile.NumLayers()
	if maxStages <= 0 || maxStages > L {
		return newErr(ErrInvalidNodeCount, nil, "node count %d invalid for %d layers", maxStages, L)
	}

	// Idempotence (spec.md §4.5): a second call on an already-solved
	// instance is a no-op. This module does not support incrementally
	// extending an existing solve to a larger maxStages (spec.md §1
	// Non-goals: "no incremental recomputation across invocations") — call
	// NewSolver again for a larger node count.
	if s.solved {
		if maxStages > s.maxStages {
			return newErr(ErrInvalidNodeCount, nil, "solver already solved to %d stages, cannot extend to %d", s.maxStages, maxStages)
		}
		return nil
	}

	logrus.Infof("solving pipeline DP: %d layers, up to %d stages", L, maxStages)

	if err := s.solveBaseCases(ctx, L); err != nil {
		return err
	}

	for numStages := 2; numStages <= maxStages; numStages++ {
		if err := s.solveWave(ctx, L, numStages); err != nil {
			return err
		}
	}

	s.maxStages = maxStages
	s.solved = true
	logrus.Infof("solve complete up to %d stages", maxStages)
	return nil
}

// solveBaseCases computes StageExecutionResult(i, j) and the corresponding
// 1-stage PipelineExecutionResult for every 0 <= i < j <= L. These L(L+1)/2
// cells are mutually independent and are produced in parallel (spec.md
// §4.5 Phase 1). A stage whose memory exceeds a non-zero MaxStageMemory
// gets the infeasibility marker instead.
func (s *Solver) solveBaseCases(ctx context.Context, L int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.workers())

	for i := 0; i < L; i++ {
		i := i
		for j := i + 1; j <= L; j++ {
			j := j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				stage := s.stages.GetOrInsert(s.profile, i, j)
				if s.config.MaxStageMemory > 0 && stage.Memory > s.config.MaxStageMemory {
					return s.pipelines.InsertInfeasible(1, i, j, "stage memory exceeds MaxStageMemory")
				}
				base := makeBaseResult(stage)
				return s.pipelines.InsertOnce(1, i, j, base)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logrus.Debugf("base cases inserted into the cache")
	return nil
}

// solveWave computes every (i, j) cell for a single stage count, in
// parallel, per spec.md §4.5 Phase 2. Every cell it reads (stage counts <
// numStages) was finalized by a prior call to solveBaseCases/solveWave and
// its errgroup.Wait, which is the sole happens-before edge this solver
// relies on.
func (s *Solver) solveWave(ctx context.Context, L, numStages int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.workers())

	for i := 0; i < L; i++ {
		i := i
		for j := i + 1; j <= L; j++ {
			j := j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return s.solveCell(numStages, i, j)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logrus.Debugf("wave s=%d complete", numStages)
	return nil
}

// solveCell computes the minimum composition for one (numStages, i, j)
// cell, or writes the infeasibility marker if no valid composition exists.
func (s *Solver) solveCell(numStages, i, j int) error {
	if j-i < numStages {
		return s.pipelines.InsertInfeasible(numStages, i, j, "fewer layers than requested stages")
	}

	var best *PipelineExecutionResult

	for k := i + 1; k < j; k++ {
		for sLeft := 1; sLeft < numStages; sLeft++ {
			sRight := numStages - sLeft

			left, leftFeasible, leftOK := s.pipelines.Get(sLeft, i, k)
			if !leftOK {
				return newErr(ErrInternalInvariantViolated, nil, "missing cache cell (%d, %d, %d) while solving (%d, %d, %d)", sLeft, i, k, numStages, i, j)
			}
			if !leftFeasible {
				continue
			}

			right, rightFeasible, rightOK := s.pipelines.Get(sRight, k, j)
			if !rightOK {
				return newErr(ErrInternalInvariantViolated, nil, "missing cache cell (%d, %d, %d) while solving (%d, %d, %d)", sRight, k, j, numStages, i, j)
			}
			if !rightFeasible {
				continue
			}

			candidate := composeResults(left, right)
			if s.config.MaxStageMemory > 0 && candidate.MaxMemory > s.config.MaxStageMemory {
				continue
			}

			if best == nil || lessResult(candidate, best) {
				best = candidate
			}
		}
	}

	if best == nil {
		return s.pipelines.InsertInfeasible(numStages, i, j, "no composition satisfies constraints")
	}
	return s.pipelines.InsertOnce(numStages, i, j, best)
}

// Cell exposes a solved Pipeline Cache entry, for the Template Extractor.
func (s *Solver) Cell(numStages, i, j int) (result *PipelineExecutionResult, feasible bool, ok bool) {
	return s.pipelines.Get(numStages, i, j)
}

// Profile returns the profile this solver was built from.
func (s *Solver) Profile() *Profile {
	return s.profile
}
