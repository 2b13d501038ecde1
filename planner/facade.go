package planner

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
)

// CreatePipelineTemplates is the single public entry point: it loads the
// profile for (config.ModelName, config.Tag), solves the DP once up to the
// maximum requested node count, and returns a template (per-stage layer name
// lists) for every requested count.
func CreatePipelineTemplates(ctx context.Context, config PlannerConfig, nodeCounts []int) (map[int][][]string, error) {
	if len(nodeCounts) == 0 {
		return nil, newErr(ErrInvalidNodeCount, nil, "at least one node count is required")
	}

	sorted := append([]int(nil), nodeCounts...)
	sort.Ints(sorted)

	profile, err := LoadProfile(config.ProfileDir, config.ModelName, config.Tag)
	if err != nil {
		return nil, err
	}

	maxNodes := sorted[len(sorted)-1]
	if maxNodes <= 0 || maxNodes > profile.NumLayers() {
		return nil, newErr(ErrInvalidNodeCount, nil, "node count %d invalid for %d layers", maxNodes, profile.NumLayers())
	}

	solver := NewSolver(profile, config)
	if err := solver.Solve(ctx, maxNodes); err != nil {
		return nil, err
	}

	templates := make(map[int][][]string, len(sorted))
	for _, n := range sorted {
		template, err := GetTemplate(solver, n)
		if err != nil {
			return nil, err
		}
		templates[n] = template
	}

	logrus.Infof("created %d pipeline templates for %s/%s", len(templates), config.ModelName, config.Tag)
	return templates, nil
}
