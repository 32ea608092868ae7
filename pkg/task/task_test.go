package task

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesymm/mechsynth/pkg/behavior"
)

func TestLoad_DoorLatch(t *testing.T) {
	tk, err := Load(filepath.Join("testdata", "door_latch_task.json"))
	require.NoError(t, err)

	assert.Equal(t, "Door Latch", tk.Name)
	assert.Equal(t, []string{"E0", "E1", "E2", "E3"}, tk.ElementRefs())
	assert.Equal(t, "bolt", tk.Elements["E2"])
	assert.Len(t, tk.States, 3)
	require.Len(t, tk.EFs, 4)

	ef1 := tk.EFs[0]
	assert.Equal(t, "EF1", ef1.ID)
	assert.Equal(t, behavior.TypeDirectActuation, ef1.Type)
	require.Len(t, ef1.Behavior, 2)
	assert.Equal(t, behavior.Increase, ef1.Behavior[0].Effort)
	assert.Equal(t, behavior.Decrease, ef1.Behavior[1].Motion)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "no_such_task.json"))
	assert.Error(t, err)
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"task_name": "broken"`))
	assert.Error(t, err)
}

func TestValidate_RejectsBadTasks(t *testing.T) {
	valid := func() *Task {
		return &Task{
			Name:     "Test",
			Elements: map[string]string{"E0": "frame", "E1": "lever"},
			EFs: []behavior.EF{
				{
					ID:   "EF1",
					Type: behavior.TypeDirectActuation,
					Behavior: []behavior.State{
						{Element: "E1", Effort: behavior.Increase, Motion: behavior.None},
					},
				},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Task)
	}{
		{"empty name", func(t *Task) { t.Name = "" }},
		{"no elements", func(t *Task) { t.Elements = nil }},
		{"no efs", func(t *Task) { t.EFs = nil }},
		{"empty ef id", func(t *Task) { t.EFs[0].ID = "" }},
		{"unknown ef type", func(t *Task) { t.EFs[0].Type = "Type-9" }},
		{"empty behavior", func(t *Task) { t.EFs[0].Behavior = nil }},
		{"undeclared element", func(t *Task) { t.EFs[0].Behavior[0].Element = "E7" }},
		{"invalid sign", func(t *Task) { t.EFs[0].Behavior[0].Effort = "++" }},
		{"duplicate ef id", func(t *Task) { t.EFs = append(t.EFs, t.EFs[0]) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tk := valid()
			require.NoError(t, tk.Validate())
			tc.mutate(tk)
			assert.Error(t, tk.Validate())
		})
	}
}

func TestFirstDirectActuation(t *testing.T) {
	tk, err := Load(filepath.Join("testdata", "door_latch_task.json"))
	require.NoError(t, err)

	ef, ok := tk.FirstDirectActuation()
	require.True(t, ok)
	assert.Equal(t, "EF1", ef.ID)

	tk.EFs = tk.EFs[1:] // drop EF1, leaving no Type-1.1
	_, ok = tk.FirstDirectActuation()
	assert.False(t, ok)
}

func TestFullText(t *testing.T) {
	tk, err := Load(filepath.Join("testdata", "door_latch_task.json"))
	require.NoError(t, err)

	text := tk.FullText()
	assert.Contains(t, text, "spring-loaded door latch")
	assert.Contains(t, text, "retracts the bolt inward")
	assert.Contains(t, text, "strike plate stops the bolt")
}
