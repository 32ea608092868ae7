package mechanism

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is the topology of a multi-state mechanical device: a set of rigid
// elements joined by typed kinematic pairs. It is an undirected multigraph;
// parallel joints between the same element pair are allowed.
//
// Graphs are value-like: the synthesis search never mutates a graph that has
// been enqueued, it clones and edits the clone. No global state is touched.
type Graph struct {
	elements  map[ElementID]Element
	joints    map[JointID]Joint
	nextElem  ElementID
	nextJoint JointID
}

// NewGraph creates an empty mechanism graph.
func NewGraph() *Graph {
	return &Graph{
		elements: make(map[ElementID]Element),
		joints:   make(map[JointID]Joint),
	}
}

// AddElement adds a rigid element and returns its ID. IDs are sequential
// from 0 so that task element references like "E2" resolve positionally.
func (g *Graph) AddElement(label string, role Role) ElementID {
	id := g.nextElem
	g.nextElem++
	g.elements[id] = Element{ID: id, Label: label, Role: role}
	return id
}

// AddJoint connects two existing elements with a joint of the given type.
// Returns ErrInvalidReference if either endpoint is absent and
// ErrUnknownJointType for a type outside R/P/X/F. Self-joints are rejected:
// a joint connects exactly two distinct elements.
func (g *Graph) AddJoint(t JointType, a, b ElementID, tag string) (JointID, error) {
	if !t.Valid() {
		return 0, &GraphError{Op: "AddJoint", Entity: "joint", ID: -1, Cause: ErrUnknownJointType}
	}
	if a == b {
		return 0, elementError("AddJoint", a, fmt.Errorf("self-joint not allowed: %w", ErrInvalidReference))
	}
	if _, ok := g.elements[a]; !ok {
		return 0, elementError("AddJoint", a, ErrInvalidReference)
	}
	if _, ok := g.elements[b]; !ok {
		return 0, elementError("AddJoint", b, ErrInvalidReference)
	}
	if a > b {
		a, b = b, a
	}
	id := g.nextJoint
	g.nextJoint++
	g.joints[id] = Joint{ID: id, Type: t, A: a, B: b, Tag: tag}
	return id, nil
}

// Clone returns a deep, independent copy. Element and joint IDs are
// preserved so sibling search branches see identical references. O(E+J).
func (g *Graph) Clone() *Graph {
	c := &Graph{
		elements:  make(map[ElementID]Element, len(g.elements)),
		joints:    make(map[JointID]Joint, len(g.joints)),
		nextElem:  g.nextElem,
		nextJoint: g.nextJoint,
	}
	for id, e := range g.elements {
		c.elements[id] = e
	}
	for id, j := range g.joints {
		c.joints[id] = j
	}
	return c
}

// ElementCount returns the number of elements (n0 in Grubler's formula).
func (g *Graph) ElementCount() int { return len(g.elements) }

// JointCount returns the number of joints.
func (g *Graph) JointCount() int { return len(g.joints) }

// Element looks up an element by ID.
func (g *Graph) Element(id ElementID) (Element, bool) {
	e, ok := g.elements[id]
	return e, ok
}

// HasElement reports whether id exists in the graph.
func (g *Graph) HasElement(id ElementID) bool {
	_, ok := g.elements[id]
	return ok
}

// Elements returns all elements ordered by ID. Ordered iteration keeps
// synthesis runs reproducible.
func (g *Graph) Elements() []Element {
	out := make([]Element, 0, len(g.elements))
	for _, e := range g.elements {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Joints returns all joints ordered by ID.
func (g *Graph) Joints() []Joint {
	out := make([]Joint, 0, len(g.joints))
	for _, j := range g.joints {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// JointsIncident returns the joints touching the given element, ordered by ID.
func (g *Graph) JointsIncident(id ElementID) []Joint {
	var out []Joint
	for _, j := range g.Joints() {
		if j.Incident(id) {
			out = append(out, j)
		}
	}
	return out
}

// JointsBetween returns all parallel joints between a and b, ordered by ID.
func (g *Graph) JointsBetween(a, b ElementID) []Joint {
	if a > b {
		a, b = b, a
	}
	var out []Joint
	for _, j := range g.Joints() {
		if j.A == a && j.B == b {
			out = append(out, j)
		}
	}
	return out
}

// Neighbors returns the set of elements sharing at least one joint with id,
// ordered by ID.
func (g *Graph) Neighbors(id ElementID) []ElementID {
	seen := make(map[ElementID]bool)
	for _, j := range g.joints {
		if j.Incident(id) {
			seen[j.Other(id)] = true
		}
	}
	out := make([]ElementID, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DegreesOfFreedom computes mobility via Grubler's formula
//
//	F = 3*(n0 - n-1 - 1) - 2*n1 - n2
//
// where n0 is the element count, n-1 the fixed-joint count, n1 the count of
// lower pairs (R, P) and n2 the count of higher pairs (X). Behavior tags do
// not participate. Returns ErrUndefinedDOF for fewer than two elements.
func (g *Graph) DegreesOfFreedom() (int, error) {
	n0 := len(g.elements)
	if n0 < 2 {
		return 0, &GraphError{Op: "DegreesOfFreedom", Entity: "graph", ID: -1, Cause: ErrUndefinedDOF}
	}
	var nFixed, nLower, nHigher int
	for _, j := range g.joints {
		switch {
		case j.Type == Fixed:
			nFixed++
		case j.Type.IsLowerPair():
			nLower++
		case j.Type == HigherPair:
			nHigher++
		}
	}
	return 3*(n0-nFixed-1) - 2*nLower - nHigher, nil
}

// IsConnected reports whether every element is reachable from every other
// through joints of any type. The empty graph and a single element count as
// connected; any isolated element makes the graph disconnected.
func (g *Graph) IsConnected() bool {
	if len(g.elements) <= 1 {
		return true
	}
	var start ElementID = -1
	for id := range g.elements {
		if start < 0 || id < start {
			start = id
		}
	}
	visited := map[ElementID]bool{start: true}
	queue := []ElementID{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, j := range g.joints {
			if !j.Incident(cur) {
				continue
			}
			next := j.Other(cur)
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return len(visited) == len(g.elements)
}

// ConnectedIgnoringFixed reports whether a and b are joined by a path that
// uses only non-Fixed joints. Used by the validator to detect rigid
// sub-chains that move independently.
func (g *Graph) ConnectedIgnoringFixed(a, b ElementID) bool {
	return g.pathExists(a, b, func(j Joint) bool { return j.Type != Fixed })
}

// PathWithout reports whether a path from a to b exists using only joints
// accepted by the filter.
func (g *Graph) PathWithout(a, b ElementID, accept func(Joint) bool) bool {
	return g.pathExists(a, b, accept)
}

func (g *Graph) pathExists(a, b ElementID, accept func(Joint) bool) bool {
	if !g.HasElement(a) || !g.HasElement(b) {
		return false
	}
	if a == b {
		return true
	}
	visited := map[ElementID]bool{a: true}
	queue := []ElementID{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, j := range g.joints {
			if !j.Incident(cur) || !accept(j) {
				continue
			}
			next := j.Other(cur)
			if next == b {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// Signature returns a canonical string for the element/joint multiset. Two
// graphs produced by the same edit sequence in any order over the same seed
// share a signature, which bounds search branching on repeated rule orders.
func (g *Graph) Signature() string {
	elems := make([]string, 0, len(g.elements))
	for _, e := range g.Elements() {
		elems = append(elems, fmt.Sprintf("e:%s/%s", e.Label, e.Role))
	}
	sort.Strings(elems)
	joints := make([]string, 0, len(g.joints))
	for _, j := range g.Joints() {
		joints = append(joints, fmt.Sprintf("j:%s/%s:%d-%d", j.Type, j.Tag, j.A, j.B))
	}
	sort.Strings(joints)
	var b strings.Builder
	for _, s := range elems {
		b.WriteString(s)
		b.WriteByte('|')
	}
	for _, s := range joints {
		b.WriteString(s)
		b.WriteByte('|')
	}
	return b.String()
}

// String renders a short human-readable summary for logs and reports.
func (g *Graph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mechanism with %d elements, %d joints", len(g.elements), len(g.joints))
	if dof, err := g.DegreesOfFreedom(); err == nil {
		fmt.Fprintf(&b, ", DOF %d", dof)
	}
	for _, j := range g.Joints() {
		la := g.elements[j.A].Label
		lb := g.elements[j.B].Label
		fmt.Fprintf(&b, "\n  %s-%s: %s", la, lb, j.Type)
		if j.Tag != "" {
			fmt.Fprintf(&b, " (%s)", j.Tag)
		}
	}
	return b.String()
}
