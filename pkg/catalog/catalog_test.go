package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesymm/mechsynth/pkg/behavior"
	"github.com/codesymm/mechsynth/pkg/mechanism"
)

func TestDefaultBlocks_AllBuildAsSingleInputMechanisms(t *testing.T) {
	blocks, err := DefaultBlocks()
	require.NoError(t, err)
	require.Len(t, blocks, 5)

	for _, b := range blocks {
		t.Run(b.Name, func(t *testing.T) {
			g, err := BuildGraph(b)
			require.NoError(t, err)

			assert.True(t, g.IsConnected())
			dof, err := g.DegreesOfFreedom()
			require.NoError(t, err)
			assert.Equal(t, 1, dof, "building blocks are single-input mechanisms")

			assert.Equal(t, len(b.Elements), g.ElementCount())
			assert.Equal(t, len(b.Joints), g.JointCount())
			assert.NotEmpty(t, b.MotionConversion)
			assert.NotEmpty(t, b.SatisfiesEFs)
		})
	}
}

func TestDefaultBlocks_SliderCrankTopology(t *testing.T) {
	blocks, err := DefaultBlocks()
	require.NoError(t, err)

	sc, ok := FindBlock(blocks, "Slider-Crank")
	require.True(t, ok)

	g, err := BuildGraph(sc)
	require.NoError(t, err)

	// E2 is the sliding output; the prismatic guide runs between ground
	// and E2 so behavior vectors referencing "E2" resolve onto it.
	slider, ok := g.Element(2)
	require.True(t, ok)
	assert.Equal(t, "Slider", slider.Label)
	assert.Equal(t, mechanism.RoleOutput, slider.Role)

	var prismatic bool
	for _, j := range g.JointsIncident(2) {
		if j.Type == mechanism.Prismatic {
			prismatic = true
		}
	}
	assert.True(t, prismatic)
}

func TestDefaultRules_ValidAndCoverEveryTargetType(t *testing.T) {
	rs, err := DefaultRules()
	require.NoError(t, err)
	require.NotEmpty(t, rs)

	targets := make(map[behavior.EFType]bool)
	ids := make(map[string]bool)
	for _, r := range rs {
		require.NoError(t, r.Validate())
		assert.False(t, ids[r.ID], "duplicate rule id %s", r.ID)
		ids[r.ID] = true
		targets[r.TargetType] = true
	}
	for _, want := range []behavior.EFType{
		behavior.TypeDirectActuation,
		behavior.TypeDecoupling,
		behavior.TypeGeometricStop,
		behavior.TypeReturn,
	} {
		assert.True(t, targets[want], "no rule targets %s", want)
	}
}

func TestParseBlocks_Rejections(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"mechanisms": [`},
		{"empty", `{"mechanisms": []}`},
		{"nameless block", `{"mechanisms": [{"elements": [{"label": "A"}, {"label": "B"}]}]}`},
		{"single element", `{"mechanisms": [{"name": "X", "elements": [{"label": "A"}]}]}`},
		{
			"count mismatch",
			`{"mechanisms": [{"name": "X", "num_elements": 3, "elements": [{"label": "A"}, {"label": "B"}]}]}`,
		},
		{
			"bad joint type",
			`{"mechanisms": [{"name": "X", "elements": [{"label": "A"}, {"label": "B"}], "joints": [{"type": "Q", "a": 0, "b": 1}]}]}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseBlocks([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}

func TestParseRules_Rejections(t *testing.T) {
	_, err := ParseRules([]byte(`{"rules": []}`))
	assert.Error(t, err)

	_, err = ParseRules([]byte(`{"rules": [{"rule_id": "R9.9", "source_type": "Type-1.1", "target_type": "Type-9", "operation": "add_joint", "joint_type": "R", "cost": 1}]}`))
	assert.Error(t, err)
}

func TestBuildGraph_JointOutOfRange(t *testing.T) {
	b := Block{
		Name:     "Broken",
		Elements: []ElementDef{{Label: "A"}, {Label: "B"}},
		Joints:   []JointDef{{Type: mechanism.Revolute, A: 0, B: 5}},
	}
	_, err := BuildGraph(b)
	assert.Error(t, err)
}

func TestBehaviorMatches(t *testing.T) {
	a := []behavior.State{
		{Element: "E1", Effort: behavior.Increase, Motion: behavior.None},
		{Element: "E2", Effort: behavior.None, Motion: behavior.Decrease},
	}
	sameSigns := []behavior.State{
		{Element: "handle", Effort: behavior.Increase, Motion: behavior.None},
		{Element: "bolt", Effort: behavior.None, Motion: behavior.Decrease},
	}
	assert.True(t, BehaviorMatches(a, sameSigns), "element names are roles, only signs matter")

	flipped := []behavior.State{
		{Element: "E1", Effort: behavior.Increase, Motion: behavior.None},
		{Element: "E2", Effort: behavior.None, Motion: behavior.Increase},
	}
	assert.False(t, BehaviorMatches(a, flipped))
	assert.False(t, BehaviorMatches(a, a[:1]))
}
