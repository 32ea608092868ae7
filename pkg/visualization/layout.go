// Package visualization renders mechanism graphs and synthesis traces:
// force-directed element layouts, Graphviz DOT export, and per-step trace
// artifacts written to the output directory.
package visualization

import (
	"math"
	"math/rand"

	"github.com/codesymm/mechsynth/pkg/mechanism"
)

// Position is a 2D coordinate on the render canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig controls the force-directed layout.
type LayoutConfig struct {
	Width      float64
	Height     float64
	Iterations int
	Padding    float64
	// Seed feeds the initial placement. Fixed seeds make renders of the
	// same graph reproducible across runs.
	Seed int64
}

// DefaultLayoutConfig is sized for small mechanism graphs.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{Width: 800, Height: 600, Iterations: 50, Padding: 50, Seed: 1}
}

// ForceLayout computes element positions with a Fruchterman-Reingold style
// force simulation: all elements repel, jointed elements attract.
type ForceLayout struct {
	config LayoutConfig
}

// NewForceLayout creates a layout engine, filling zero config fields with
// defaults.
func NewForceLayout(config LayoutConfig) *ForceLayout {
	def := DefaultLayoutConfig()
	if config.Width == 0 {
		config.Width = def.Width
	}
	if config.Height == 0 {
		config.Height = def.Height
	}
	if config.Iterations == 0 {
		config.Iterations = def.Iterations
	}
	if config.Padding == 0 {
		config.Padding = def.Padding
	}
	return &ForceLayout{config: config}
}

// Compute returns a position for every element of the graph.
func (fl *ForceLayout) Compute(g *mechanism.Graph) map[mechanism.ElementID]Position {
	elems := g.Elements()
	positions := make(map[mechanism.ElementID]Position, len(elems))
	if len(elems) == 0 {
		return positions
	}
	if len(elems) == 1 {
		positions[elems[0].ID] = Position{X: fl.config.Width / 2, Y: fl.config.Height / 2}
		return positions
	}

	rng := rand.New(rand.NewSource(fl.config.Seed))
	for _, e := range elems {
		positions[e.ID] = Position{
			X: rng.Float64()*(fl.config.Width-2*fl.config.Padding) + fl.config.Padding,
			Y: rng.Float64()*(fl.config.Height-2*fl.config.Padding) + fl.config.Padding,
		}
	}

	adjacent := make(map[mechanism.ElementID]map[mechanism.ElementID]bool, len(elems))
	for _, e := range elems {
		adjacent[e.ID] = make(map[mechanism.ElementID]bool)
		for _, n := range g.Neighbors(e.ID) {
			adjacent[e.ID][n] = true
		}
	}

	k := math.Sqrt(fl.config.Width * fl.config.Height / float64(len(elems)))
	temperature := fl.config.Width / 10

	for iter := 0; iter < fl.config.Iterations; iter++ {
		forces := make(map[mechanism.ElementID]Position, len(elems))

		// Repulsion between every element pair.
		for i := range elems {
			for j := i + 1; j < len(elems); j++ {
				a, b := elems[i].ID, elems[j].ID
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Hypot(dx, dy)
				if dist < 0.01 {
					dist = 0.01
				}
				force := k * k / dist
				fx := dx / dist * force
				fy := dy / dist * force
				forces[a] = Position{X: forces[a].X + fx, Y: forces[a].Y + fy}
				forces[b] = Position{X: forces[b].X - fx, Y: forces[b].Y - fy}
			}
		}

		// Attraction along joints.
		for _, e := range elems {
			for n := range adjacent[e.ID] {
				dx := positions[e.ID].X - positions[n].X
				dy := positions[e.ID].Y - positions[n].Y
				dist := math.Hypot(dx, dy)
				if dist < 0.01 {
					continue
				}
				force := dist * dist / k
				forces[e.ID] = Position{
					X: forces[e.ID].X - dx/dist*force,
					Y: forces[e.ID].Y - dy/dist*force,
				}
			}
		}

		// Apply with linear cooling, clamped into the padded canvas.
		cool := 1 - float64(iter)/float64(fl.config.Iterations)
		for _, e := range elems {
			fx, fy := forces[e.ID].X, forces[e.ID].Y
			force := math.Hypot(fx, fy)
			if force == 0 {
				continue
			}
			step := math.Min(force, temperature) * cool
			positions[e.ID] = Position{
				X: clamp(positions[e.ID].X+fx/force*step, fl.config.Padding, fl.config.Width-fl.config.Padding),
				Y: clamp(positions[e.ID].Y+fy/force*step, fl.config.Padding, fl.config.Height-fl.config.Padding),
			}
		}
	}
	return positions
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
