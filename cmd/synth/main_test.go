package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_DoorLatchEndToEnd(t *testing.T) {
	out := t.TempDir()

	err := run(context.Background(), options{
		taskPath:  filepath.Join("..", "..", "tasks", "door_latch_task.json"),
		provider:  "rule",
		outputDir: out,
		quiet:     true,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, "Door_Latch_results.json"))
	require.NoError(t, err)

	var results resultsFile
	require.NoError(t, json.Unmarshal(data, &results))
	assert.Equal(t, "Door Latch", results.Task)
	require.NotEmpty(t, results.Results)

	var goal *resultRecord
	for i := range results.Results {
		if results.Results[i].Seed == "Slider-Crank" {
			goal = &results.Results[i]
		}
	}
	require.NotNil(t, goal, "rule-based retrieval must seed the slider-crank")
	assert.Equal(t, "goal", goal.Status)
	assert.Equal(t, []string{"R3.1", "R4.1", "R2.1"}, goal.Path)
	assert.Equal(t, 5, goal.Cost)
	assert.Equal(t, []string{"EF1", "EF2", "EF3", "EF4"}, goal.SatisfiedEFs)
	assert.Equal(t, 3, goal.DOF)

	// The trace directory holds the per-step renders and manifest.
	entries, err := os.ReadDir(goal.TraceDir)
	require.NoError(t, err)
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	assert.True(t, names["trace.json"])
	assert.True(t, names["step_00_initial.dot"])
}

func TestRun_LexicalProviderOffline(t *testing.T) {
	out := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("similarity_threshold: 0.01\nranking:\n  provider: lexical\n"), 0o644))

	err := run(context.Background(), options{
		taskPath:   filepath.Join("..", "..", "tasks", "door_latch_task.json"),
		configPath: cfgPath,
		outputDir:  out,
		quiet:      true,
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(out, "Door_Latch_results.json"))
	assert.NoError(t, err)
}

func TestRun_MissingTask(t *testing.T) {
	err := run(context.Background(), options{
		taskPath:  filepath.Join(t.TempDir(), "absent.json"),
		provider:  "rule",
		outputDir: t.TempDir(),
		quiet:     true,
	})
	assert.Error(t, err)
}

func TestRun_InvalidProvider(t *testing.T) {
	err := run(context.Background(), options{
		taskPath:  filepath.Join("..", "..", "tasks", "door_latch_task.json"),
		provider:  "oracle",
		outputDir: t.TempDir(),
		quiet:     true,
	})
	assert.Error(t, err)
}
