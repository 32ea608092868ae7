package visualization

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codesymm/mechsynth/pkg/engine"
	"github.com/codesymm/mechsynth/pkg/logging"
	"github.com/codesymm/mechsynth/pkg/mechanism"
)

// ManifestStep is one entry of the trace manifest written next to the
// per-step DOT files.
type ManifestStep struct {
	Index        int                              `json:"index"`
	Iteration    int                              `json:"iteration"`
	Label        string                           `json:"label"`
	SatisfiedEFs []string                         `json:"satisfied_efs"`
	Elements     int                              `json:"elements"`
	Joints       int                              `json:"joints"`
	DOF          int                              `json:"dof"`
	File         string                           `json:"file"`
	Positions    map[mechanism.ElementID]Position `json:"positions"`
}

// Manifest describes a written synthesis trace.
type Manifest struct {
	Task  string         `json:"task"`
	Seed  string         `json:"seed"`
	Steps []ManifestStep `json:"steps"`
}

// TraceWriter writes synthesis traces as browsable artifacts: a DOT render
// per step plus a JSON manifest with layouts and satisfaction progress.
type TraceWriter struct {
	layout *ForceLayout
	log    logging.Logger
}

// NewTraceWriter creates a trace writer. Nil logger discards logs.
func NewTraceWriter(cfg LayoutConfig, log logging.Logger) *TraceWriter {
	if log == nil {
		log = logging.Nop()
	}
	return &TraceWriter{layout: NewForceLayout(cfg), log: log}
}

// WriteTrace writes the trace under dir/synthesis_steps/<task>/<seed>/ and
// returns the directory it wrote to.
func (w *TraceWriter) WriteTrace(dir, taskName, seedName string, trace *engine.Trace) (string, error) {
	out := filepath.Join(dir, "synthesis_steps", sanitize(taskName), sanitize(seedName))
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", fmt.Errorf("visualization: create %s: %w", out, err)
	}

	manifest := Manifest{Task: taskName, Seed: seedName}
	for i, step := range trace.Steps() {
		name := fmt.Sprintf("step_%02d_%s.dot", i, sanitize(step.Label))
		title := fmt.Sprintf("%s / %s — step %d (%s)", taskName, seedName, i, step.Label)
		if err := os.WriteFile(filepath.Join(out, name), []byte(DOT(step.Graph, title)), 0o644); err != nil {
			return "", fmt.Errorf("visualization: write %s: %w", name, err)
		}

		dof, err := step.Graph.DegreesOfFreedom()
		if err != nil {
			dof = 0
		}
		manifest.Steps = append(manifest.Steps, ManifestStep{
			Index:        i,
			Iteration:    step.Iteration,
			Label:        step.Label,
			SatisfiedEFs: step.SatisfiedEFs,
			Elements:     step.Graph.ElementCount(),
			Joints:       step.Graph.JointCount(),
			DOF:          dof,
			File:         name,
			Positions:    w.layout.Compute(step.Graph),
		})
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("visualization: encode manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(out, "trace.json"), data, 0o644); err != nil {
		return "", fmt.Errorf("visualization: write manifest: %w", err)
	}

	w.log.Info("trace written",
		logging.Component("visualization"),
		logging.TaskName(taskName),
		logging.SeedName(seedName),
		logging.Count(trace.Len()),
		logging.String("dir", out))
	return out, nil
}

// sanitize makes a task or rule name safe as a path component.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
