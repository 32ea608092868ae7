package behavior

import (
	"github.com/codesymm/mechsynth/pkg/mechanism"
)

// Behavior tags the validator pattern-matches on. Rules attach them to
// joints; the DOF formula never sees them.
const (
	TagStopper  = "stopper"
	TagSpring   = "spring"
	TagDamper   = "damper"
	TagVariable = "variable"
)

// Satisfies reports whether the graph structurally exhibits the elemental
// function. It is a conservative structural proxy: it checks for the
// presence of the right class of topological feature, it does not simulate
// motion. Pure and idempotent — the graph is never modified.
func Satisfies(g *mechanism.Graph, ef EF) bool {
	if !g.IsConnected() {
		return false
	}
	dof, err := g.DegreesOfFreedom()
	if err != nil || dof < 0 {
		return false
	}

	switch ef.Type {
	case TypeDirectActuation:
		return satisfiesDirectActuation(g, ef, dof)
	case TypeDecoupling:
		return satisfiesDecoupling(g, ef)
	case TypeGeometricStop:
		return satisfiesGeometricStop(g, ef)
	case TypeReturn:
		return satisfiesReturn(g, ef)
	}
	return false
}

// SatisfiedSet evaluates every EF against the graph and returns the IDs and
// types currently satisfied. The engine recomputes this after every accepted
// transformation; no EF type is special-cased.
func SatisfiedSet(g *mechanism.Graph, efs []EF) (map[string]bool, map[EFType]bool) {
	ids := make(map[string]bool)
	types := make(map[EFType]bool)
	for _, ef := range efs {
		if Satisfies(g, ef) {
			ids[ef.ID] = true
			types[ef.Type] = true
		}
	}
	return ids, types
}

// satisfiesDirectActuation checks Type-1.1: an actuatable mechanism (DOF >=
// 1) with a lower/higher-pair path — no Fixed-only barrier — from an
// effort-input element to a motion-output element.
func satisfiesDirectActuation(g *mechanism.Graph, ef EF, dof int) bool {
	if dof < 1 {
		return false
	}
	var effort, motion []mechanism.ElementID
	var hasEffort, hasMotion bool
	for _, s := range ef.Behavior {
		if s.Effort != None {
			hasEffort = true
			if id, ok := ResolveElement(g, s.Element); ok {
				effort = append(effort, id)
			}
		}
		if s.Motion != None {
			hasMotion = true
			if id, ok := ResolveElement(g, s.Element); ok {
				motion = append(motion, id)
			}
		}
	}
	if !hasEffort || !hasMotion {
		return false
	}
	// Behavior vectors that do not resolve onto this graph's elements fall
	// back to the effort/motion presence check.
	if len(effort) == 0 || len(motion) == 0 {
		return true
	}
	nonFixed := func(j mechanism.Joint) bool { return j.Type != mechanism.Fixed }
	for _, e := range effort {
		for _, m := range motion {
			if g.PathWithout(e, m, nonFixed) {
				return true
			}
		}
	}
	return false
}

// satisfiesDecoupling checks Type-1.2: the two referenced elements must not
// be forced into simultaneous motion. A joint tagged "variable" acts as the
// decoupler; failing that, the elements must fall into different rigid
// sub-chains once Fixed joints are ignored. Tag-based detection is a
// documented approximation of true kinematic independence.
func satisfiesDecoupling(g *mechanism.Graph, ef EF) bool {
	a, b, ok := firstTwoElements(g, ef)
	if !ok {
		return hasTaggedJoint(g, TagVariable)
	}
	if !g.ConnectedIgnoringFixed(a, b) {
		return true
	}
	return hasTaggedJoint(g, TagVariable)
}

// satisfiesGeometricStop checks Type-2: a Fixed joint or a joint tagged
// "stopper" incident to the element whose motion must be zero beyond the
// limit.
func satisfiesGeometricStop(g *mechanism.Graph, ef EF) bool {
	stopJoint := func(j mechanism.Joint) bool {
		return j.Type == mechanism.Fixed || j.Tag == TagStopper
	}
	var resolved bool
	for _, s := range ef.Behavior {
		if s.Motion != None {
			continue
		}
		id, ok := ResolveElement(g, s.Element)
		if !ok {
			continue
		}
		resolved = true
		for _, j := range g.JointsIncident(id) {
			if stopJoint(j) {
				return true
			}
		}
	}
	if resolved {
		return false
	}
	// No constrained element resolves onto this graph: accept any stopper
	// feature.
	for _, j := range g.Joints() {
		if stopJoint(j) {
			return true
		}
	}
	return false
}

// satisfiesReturn checks Type-3: a force/return joint ("spring" or
// "damper") incident to the element expected to reverse motion.
func satisfiesReturn(g *mechanism.Graph, ef EF) bool {
	returnJoint := func(j mechanism.Joint) bool {
		return j.Tag == TagSpring || j.Tag == TagDamper
	}
	var resolved bool
	for _, s := range ef.Behavior {
		if s.Motion == None {
			continue
		}
		id, ok := ResolveElement(g, s.Element)
		if !ok {
			continue
		}
		resolved = true
		for _, j := range g.JointsIncident(id) {
			if returnJoint(j) {
				return true
			}
		}
	}
	if resolved {
		return false
	}
	for _, j := range g.Joints() {
		if returnJoint(j) {
			return true
		}
	}
	return false
}

func firstTwoElements(g *mechanism.Graph, ef EF) (a, b mechanism.ElementID, ok bool) {
	var found []mechanism.ElementID
	seen := make(map[mechanism.ElementID]bool)
	for _, s := range ef.Behavior {
		id, resolved := ResolveElement(g, s.Element)
		if !resolved || seen[id] {
			continue
		}
		seen[id] = true
		found = append(found, id)
		if len(found) == 2 {
			return found[0], found[1], true
		}
	}
	return 0, 0, false
}

func hasTaggedJoint(g *mechanism.Graph, tag string) bool {
	for _, j := range g.Joints() {
		if j.Tag == tag {
			return true
		}
	}
	return false
}
