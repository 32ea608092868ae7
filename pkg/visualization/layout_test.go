package visualization

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesymm/mechsynth/pkg/behavior"
	"github.com/codesymm/mechsynth/pkg/engine"
	"github.com/codesymm/mechsynth/pkg/logging"
	"github.com/codesymm/mechsynth/pkg/mechanism"
	"github.com/codesymm/mechsynth/pkg/metrics"
	"github.com/codesymm/mechsynth/pkg/rules"
)

func sliderCrank(t *testing.T) *mechanism.Graph {
	t.Helper()
	g := mechanism.NewGraph()
	ground := g.AddElement("Ground", mechanism.RoleGround)
	crank := g.AddElement("Crank", mechanism.RoleInput)
	slider := g.AddElement("Slider", mechanism.RoleOutput)
	coupler := g.AddElement("Coupler", mechanism.RoleNone)
	for _, j := range [][2]mechanism.ElementID{{ground, crank}, {crank, coupler}, {coupler, slider}} {
		_, err := g.AddJoint(mechanism.Revolute, j[0], j[1], "")
		require.NoError(t, err)
	}
	_, err := g.AddJoint(mechanism.Prismatic, ground, slider, "")
	require.NoError(t, err)
	return g
}

func TestForceLayout_Deterministic(t *testing.T) {
	g := sliderCrank(t)
	cfg := DefaultLayoutConfig()

	first := NewForceLayout(cfg).Compute(g)
	second := NewForceLayout(cfg).Compute(g)
	assert.Equal(t, first, second, "same seed must give identical layouts")

	cfg.Seed = 42
	third := NewForceLayout(cfg).Compute(g)
	assert.NotEqual(t, first, third, "different seeds should shuffle the placement")
}

func TestForceLayout_PositionsWithinCanvas(t *testing.T) {
	g := sliderCrank(t)
	cfg := DefaultLayoutConfig()
	positions := NewForceLayout(cfg).Compute(g)
	require.Len(t, positions, g.ElementCount())

	for id, p := range positions {
		assert.GreaterOrEqual(t, p.X, cfg.Padding, "element %d X", id)
		assert.LessOrEqual(t, p.X, cfg.Width-cfg.Padding, "element %d X", id)
		assert.GreaterOrEqual(t, p.Y, cfg.Padding, "element %d Y", id)
		assert.LessOrEqual(t, p.Y, cfg.Height-cfg.Padding, "element %d Y", id)
	}
}

func TestForceLayout_SingleElementCentered(t *testing.T) {
	g := mechanism.NewGraph()
	g.AddElement("Lone", mechanism.RoleNone)

	cfg := DefaultLayoutConfig()
	positions := NewForceLayout(cfg).Compute(g)
	require.Len(t, positions, 1)
	assert.Equal(t, Position{X: cfg.Width / 2, Y: cfg.Height / 2}, positions[0])
}

func TestDOT_ContainsElementsAndJoints(t *testing.T) {
	g := sliderCrank(t)
	_, err := g.AddJoint(mechanism.Fixed, 2, 3, behavior.TagStopper)
	require.NoError(t, err)

	out := DOT(g, "Door Latch")
	assert.Contains(t, out, `label="Door Latch"`)
	assert.Contains(t, out, `e1 [label="E1\nCrank", shape=diamond]`)
	assert.Contains(t, out, `e0 [label="E0\nGround", shape=box]`)
	assert.Contains(t, out, `e2 [label="E2\nSlider", shape=doublecircle]`)
	assert.Contains(t, out, `e0 -- e1 [label="R"`)
	assert.Contains(t, out, `label="F (stopper)"`)
	assert.Contains(t, out, `e0 -- e2 [label="P"`)
}

func TestTraceWriter_WritesStepsAndManifest(t *testing.T) {
	seed := sliderCrank(t)
	catalog := []rules.Rule{{
		ID:           "R3.1",
		SourceType:   behavior.TypeDirectActuation,
		TargetType:   behavior.TypeGeometricStop,
		Operation:    rules.OpAddElementWithJoint,
		JointType:    mechanism.Fixed,
		JointTag:     behavior.TagStopper,
		ElementLabel: "Stopper",
		Cost:         1,
	}}
	efs := []behavior.EF{
		{
			ID:   "EF1",
			Type: behavior.TypeDirectActuation,
			Behavior: []behavior.State{
				{Element: "E1", Effort: behavior.Increase, Motion: behavior.None},
				{Element: "E2", Effort: behavior.None, Motion: behavior.Decrease},
			},
		},
		{
			ID:   "EF2",
			Type: behavior.TypeGeometricStop,
			Behavior: []behavior.State{
				{Element: "E2", Effort: behavior.Increase, Motion: behavior.None},
			},
		},
	}
	e := engine.New(catalog, engine.Options{MaxIterations: 10, MaxDOF: 3}, logging.Nop(), metrics.NewRegistry())
	res, err := e.Run(context.Background(), engine.Seed{Name: "Slider-Crank", Graph: seed}, efs)
	require.NoError(t, err)
	require.Equal(t, engine.StatusGoal, res.Status)

	dir := t.TempDir()
	w := NewTraceWriter(DefaultLayoutConfig(), logging.Nop())
	out, err := w.WriteTrace(dir, "Door Latch", "Slider-Crank", res.Trace)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "synthesis_steps", "Door_Latch", "Slider-Crank"), out)

	data, err := os.ReadFile(filepath.Join(out, "trace.json"))
	require.NoError(t, err)
	var manifest Manifest
	require.NoError(t, json.Unmarshal(data, &manifest))

	require.Len(t, manifest.Steps, res.Trace.Len())
	assert.Equal(t, engine.StepInitial, manifest.Steps[0].Label)
	assert.Equal(t, engine.StepFinal, manifest.Steps[len(manifest.Steps)-1].Label)

	for _, step := range manifest.Steps {
		_, err := os.Stat(filepath.Join(out, step.File))
		assert.NoError(t, err, "missing step render %s", step.File)
		assert.Len(t, step.Positions, step.Elements)
		assert.GreaterOrEqual(t, step.DOF, 0)
	}

	// Final step carries both satisfied EFs.
	assert.Equal(t, []string{"EF1", "EF2"}, manifest.Steps[len(manifest.Steps)-1].SatisfiedEFs)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Door_Latch", sanitize("Door Latch"))
	assert.Equal(t, "R3.1", sanitize("R3.1"))
	assert.Equal(t, "a_b_c", sanitize("a/b:c"))
}
