package engine

import (
	"sort"

	"github.com/codesymm/mechsynth/pkg/mechanism"
)

// Trace step labels for the pseudo-steps around rule applications.
const (
	StepInitial = "initial"
	StepFinal   = "FINAL"
)

// Step is one entry of the recorded synthesis trace: the accepted graph at
// a given iteration together with the rule that produced it and the EFs it
// satisfies. Graph snapshots are immutable once recorded, so the slice can
// be replayed by any consumer (rendering, reporting) at any time.
type Step struct {
	Iteration    int
	Label        string // rule ID, or "initial" / "FINAL"
	Graph        *mechanism.Graph
	SatisfiedEFs []string // sorted
}

// Trace is the append-only sequence of steps recorded during one per-seed
// search, in chronological order. Rejected candidates never appear.
type Trace struct {
	steps []Step
}

func (t *Trace) record(iteration int, label string, g *mechanism.Graph, satisfied map[string]bool) {
	t.steps = append(t.steps, Step{
		Iteration:    iteration,
		Label:        label,
		Graph:        g,
		SatisfiedEFs: sortedKeys(satisfied),
	})
}

// Steps returns the recorded steps in order.
func (t *Trace) Steps() []Step { return t.steps }

// Len returns the number of recorded steps.
func (t *Trace) Len() int { return len(t.steps) }

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
