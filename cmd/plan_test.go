package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodeCounts_CommaSeparated(t *testing.T) {
	got, err := parseNodeCounts("1, 2,4")
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, got)
}

func TestParseNodeCounts_EmptyFails(t *testing.T) {
	_, err := parseNodeCounts("")
	assert.Error(t, err)
}

func TestParseNodeCounts_InvalidEntryFails(t *testing.T) {
	_, err := parseNodeCounts("1,x,3")
	assert.Error(t, err)
}

func TestPlanCmd_RequiredFlagsRegistered(t *testing.T) {
	// GIVEN the plan command with its registered flags
	// WHEN we check for model/tag/nodes/config
	// THEN they must all be present
	for _, name := range []string{"model", "tag", "nodes", "profile-dir", "workers", "max-stage-memory", "config"} {
		flag := planCmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "flag %q must be registered", name)
	}
}

func TestRootCmd_DefaultLogLevel(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("log")
	assert.NotNil(t, flag)
	assert.Equal(t, "info", flag.DefValue)
}

func withPlanFlags(t *testing.T, fn func()) {
	t.Helper()
	savedModel, savedTag, savedDir := planModelName, planTag, planProfileDir
	savedWorkers, savedMaxMem, savedConfig := planWorkers, planMaxMemory, planConfigFile
	t.Cleanup(func() {
		planModelName, planTag, planProfileDir = savedModel, savedTag, savedDir
		planWorkers, planMaxMemory, planConfigFile = savedWorkers, savedMaxMem, savedConfig
	})
	fn()
}

func TestResolvePlanConfig_FromFlags(t *testing.T) {
	withPlanFlags(t, func() {
		planConfigFile = ""
		planModelName = "gpt2"
		planTag = "fp16"
		planProfileDir = "/profiles"
		planWorkers = 2
		planMaxMemory = 512

		config, err := resolvePlanConfig()
		require.NoError(t, err)
		assert.Equal(t, "gpt2", config.ModelName)
		assert.Equal(t, "fp16", config.Tag)
		assert.Equal(t, "/profiles", config.ProfileDir)
		assert.Equal(t, 2, config.Workers)
		assert.EqualValues(t, 512, config.MaxStageMemory)
	})
}

func TestResolvePlanConfig_MissingModelOrTagFails(t *testing.T) {
	withPlanFlags(t, func() {
		planConfigFile = ""
		planModelName = ""
		planTag = ""

		_, err := resolvePlanConfig()
		assert.Error(t, err)
	})
}

func TestResolvePlanConfig_FromConfigFile(t *testing.T) {
	withPlanFlags(t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "planner.yaml")
		body := "model: gpt2\ntag: fp16\nprofile_dir: /profiles\nworkers: 4\nmax_stage_memory: 1024\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		planConfigFile = path
		planModelName = ""
		planTag = ""

		config, err := resolvePlanConfig()
		require.NoError(t, err)
		assert.Equal(t, "gpt2", config.ModelName)
		assert.Equal(t, "fp16", config.Tag)
		assert.EqualValues(t, 1024, config.MaxStageMemory)
	})
}
