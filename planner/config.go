package planner

import (
	"bytes"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// PlannerConfig groups the parameters needed to solve and extract pipeline
// templates for one model/profile.
type PlannerConfig struct {
	ModelName  string // model identity, used to locate the profile CSV
	Tag        string // profile tag (e.g. "fp16", "bench-a100"), used to locate the profile CSV
	ProfileDir string // directory containing "<model>__<tag>.csv"; empty = the current working directory

	// Workers bounds the number of goroutines the solver runs concurrently
	// within a wave. 0 = runtime.GOMAXPROCS(0).
	Workers int

	// MaxStageMemory caps the memory footprint of any single fused stage.
	// 0 = unbounded (default, matches spec.md's unconstrained cost model).
	MaxStageMemory int64
}

// workers returns the effective worker pool size for a config.
func (c PlannerConfig) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// NewPlannerConfig builds a PlannerConfig with the given required fields and
// default (unbounded) memory/worker settings.
func NewPlannerConfig(modelName, tag, profileDir string) PlannerConfig {
	return PlannerConfig{
		ModelName:  modelName,
		Tag:        tag,
		ProfileDir: profileDir,
	}
}

// fileConfig mirrors PlannerConfig's fields for YAML decoding. All fields
// that may appear in the file are listed here to satisfy KnownFields(true)
// strict parsing.
type fileConfig struct {
	Model          string `yaml:"model"`
	Tag            string `yaml:"tag"`
	ProfileDir     string `yaml:"profile_dir"`
	Workers        int    `yaml:"workers"`
	MaxStageMemory int64  `yaml:"max_stage_memory"`
}

// LoadPlannerConfig reads a PlannerConfig from a YAML file at path:
// os.ReadFile followed by a yaml.Decoder with KnownFields(true), so a typo'd key is a hard error
// rather than a silently-ignored field.
func LoadPlannerConfig(path string) (PlannerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlannerConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil {
		return PlannerConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	return PlannerConfig{
		ModelName:      fc.Model,
		Tag:            fc.Tag,
		ProfileDir:     fc.ProfileDir,
		Workers:        fc.Workers,
		MaxStageMemory: fc.MaxStageMemory,
	}, nil
}
