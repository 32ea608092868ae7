// Package behavior defines elemental functions (EFs) — the required
// behaviors a synthesized mechanism must exhibit — and a structural
// validator that checks whether a mechanism graph exhibits them.
package behavior

import (
	"strconv"
	"strings"

	"github.com/codesymm/mechsynth/pkg/mechanism"
)

// EFType classifies an elemental function.
type EFType string

const (
	// TypeDirectActuation (Type-1.1): one element's effort input drives
	// another element's motion output.
	TypeDirectActuation EFType = "Type-1.1"
	// TypeDecoupling (Type-1.2): an element's motion or effort is decoupled
	// from another element (independent or metamorphic behavior).
	TypeDecoupling EFType = "Type-1.2"
	// TypeGeometricStop (Type-2): a motion is constrained to zero beyond a
	// limit.
	TypeGeometricStop EFType = "Type-2"
	// TypeReturn (Type-3): a released element's motion reverses under
	// stored energy.
	TypeReturn EFType = "Type-3"
)

// Valid reports whether t is one of the four EF classes.
func (t EFType) Valid() bool {
	switch t {
	case TypeDirectActuation, TypeDecoupling, TypeGeometricStop, TypeReturn:
		return true
	}
	return false
}

// Sign is an effort or motion direction relative to the reference state.
type Sign string

const (
	Decrease Sign = "-"
	None     Sign = "0"
	Increase Sign = "+"
)

// Valid reports whether s is one of -, 0, +.
func (s Sign) Valid() bool {
	return s == Decrease || s == None || s == Increase
}

// State is one entry of an EF's behavior vector: the (effort, motion) pair
// for a participating element.
type State struct {
	Element string `json:"element"`
	Effort  Sign   `json:"effort"`
	Motion  Sign   `json:"motion"`
}

// EF is a required elemental function. Read-only once loaded from the task
// specification; the engine only evaluates it against candidate graphs.
type EF struct {
	ID          string  `json:"ef_id"`
	Type        EFType  `json:"type"`
	Description string  `json:"description"`
	Behavior    []State `json:"behavior"`
}

// ResolveElement maps a task element reference like "E2" onto the graph
// element with the matching positional ID. Returns false when the reference
// does not parse or the element is absent from the graph.
func ResolveElement(g *mechanism.Graph, ref string) (mechanism.ElementID, bool) {
	if len(ref) < 2 || !strings.HasPrefix(ref, "E") {
		return 0, false
	}
	n, err := strconv.Atoi(ref[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	id := mechanism.ElementID(n)
	if !g.HasElement(id) {
		return 0, false
	}
	return id, true
}
