// cmd/plan.go
package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pipeline-planner/pipeline-planner/planner"
)

var (
	planModelName  string
	planTag        string
	planProfileDir string
	planNodes      string
	planWorkers    int
	planMaxMemory  int64
	planConfigFile string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute pipeline partition templates for a range of node counts",
	Run: func(cmd *cobra.Command, args []string) {
		nodeCounts, err := parseNodeCounts(planNodes)
		if err != nil {
			logrus.Fatalf("invalid --nodes: %v", err)
		}

		config, err := resolvePlanConfig()
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		logrus.Infof("planning %s/%s for node counts %v", config.ModelName, config.Tag, nodeCounts)

		templates, err := planner.CreatePipelineTemplates(context.Background(), config, nodeCounts)
		if err != nil {
			logrus.Fatalf("plan failed: %v", err)
		}

		writeTemplatesToStdout(templates)
	},
}

// resolvePlanConfig builds the PlannerConfig for this invocation: from
// --config if given (via planner.LoadPlannerConfig), or
// from the individual --model/--tag/--profile-dir/--workers/--max-stage-memory
// flags otherwise.
func resolvePlanConfig() (planner.PlannerConfig, error) {
	if planConfigFile != "" {
		return planner.LoadPlannerConfig(planConfigFile)
	}

	if planModelName == "" || planTag == "" {
		return planner.PlannerConfig{}, fmt.Errorf("--model and --tag are required unless --config is given")
	}

	config := planner.NewPlannerConfig(planModelName, planTag, planProfileDir)
	config.Workers = planWorkers
	config.MaxStageMemory = planMaxMemory
	return config, nil
}

// parseNodeCounts parses a comma-separated list of positive integers.
func parseNodeCounts(raw string) ([]int, error) {
	fields := strings.Split(raw, ",")
	counts := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid node count %q: %w", f, err)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("at least one node count is required")
	}
	return counts, nil
}

// writeTemplatesToStdout marshals the node-count -> template mapping to YAML
// and writes it to stdout, in ascending node-count order.
func writeTemplatesToStdout(templates map[int][][]string) {
	keys := make([]int, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	ordered := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, map[string]any{
			"nodes":  k,
			"stages": templates[k],
		})
	}

	data, err := yaml.Marshal(ordered)
	if err != nil {
		logrus.Fatalf("YAML marshal failed: %v", err)
	}
	fmt.Print(string(data))
}

func init() {
	planCmd.Flags().StringVar(&planModelName, "model", "", "Model name (locates the profile CSV); ignored if --config is given")
	planCmd.Flags().StringVar(&planTag, "tag", "", "Profile tag (locates the profile CSV); ignored if --config is given")
	planCmd.Flags().StringVar(&planProfileDir, "profile-dir", "", "Directory containing <model>__<tag>.csv; ignored if --config is given")
	planCmd.Flags().StringVar(&planNodes, "nodes", "", "Comma-separated list of desired node counts, e.g. 1,2,4")
	planCmd.Flags().IntVar(&planWorkers, "workers", 0, "Worker pool size (0 = GOMAXPROCS); ignored if --config is given")
	planCmd.Flags().Int64Var(&planMaxMemory, "max-stage-memory", 0, "Reject stages whose memory footprint exceeds this (0 = unbounded); ignored if --config is given")
	planCmd.Flags().StringVar(&planConfigFile, "config", "", "Path to a PlannerConfig YAML file (overrides --model/--tag/--profile-dir/--workers/--max-stage-memory)")

	_ = planCmd.MarkFlagRequired("nodes")
}
