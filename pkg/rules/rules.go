// Package rules implements the transformation rule engine: a static catalog
// of graph-edit operations keyed by source and target behavior class, and
// the machinery to apply them to mechanism graphs without mutating the
// original.
package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/codesymm/mechsynth/pkg/behavior"
	"github.com/codesymm/mechsynth/pkg/mechanism"
)

// Operation names the graph edit a rule performs.
type Operation string

const (
	// OpAddElement adds a bare element. The resulting candidate is
	// disconnected until a later edit attaches it, so the engine will
	// reject it on its own.
	OpAddElement Operation = "add_element"
	// OpAddJoint adds a joint between two existing elements.
	OpAddJoint Operation = "add_joint"
	// OpAddElementWithJoint adds an element and a joint binding it to a
	// deterministically chosen anchor element.
	OpAddElementWithJoint Operation = "add_element_with_joint"
)

// Valid reports whether op is a known edit operation.
func (op Operation) Valid() bool {
	switch op {
	case OpAddElement, OpAddJoint, OpAddElementWithJoint:
		return true
	}
	return false
}

// Rule is a single transformation: applying its edit to a mechanism that
// already satisfies SourceType is meant to additionally satisfy TargetType.
// Rules are loaded once and shared read-only across all search runs.
type Rule struct {
	ID           string              `json:"rule_id"`
	SourceType   behavior.EFType     `json:"source_type"`
	TargetType   behavior.EFType     `json:"target_type"`
	Operation    Operation           `json:"operation"`
	JointType    mechanism.JointType `json:"joint_type,omitempty"`
	JointTag     string              `json:"joint_tag,omitempty"`
	ElementLabel string              `json:"element_label,omitempty"`
	Cost         int                 `json:"cost"`
	Description  string              `json:"description"`
}

// Validate checks the rule's static fields.
func (r Rule) Validate() error {
	if r.ID == "" {
		return errors.New("rule has empty id")
	}
	if !r.SourceType.Valid() {
		return fmt.Errorf("rule %s: invalid source type %q", r.ID, r.SourceType)
	}
	if !r.TargetType.Valid() {
		return fmt.Errorf("rule %s: invalid target type %q", r.ID, r.TargetType)
	}
	if !r.Operation.Valid() {
		return fmt.Errorf("rule %s: invalid operation %q", r.ID, r.Operation)
	}
	if r.Cost < 1 {
		return fmt.Errorf("rule %s: cost must be >= 1, got %d", r.ID, r.Cost)
	}
	if r.Operation != OpAddElement && !r.JointType.Valid() {
		return fmt.Errorf("rule %s: operation %s needs a joint type", r.ID, r.Operation)
	}
	return nil
}

// ApplicableRules returns every rule whose source type is already satisfied
// and whose target type matches the wanted type, ordered ascending by cost
// with ties broken by rule ID. Deterministic ordering keeps search runs
// reproducible.
func ApplicableRules(catalog []Rule, satisfied map[behavior.EFType]bool, target behavior.EFType) []Rule {
	var out []Rule
	seen := make(map[string]bool)
	for _, r := range catalog {
		if r.TargetType != target || !satisfied[r.SourceType] || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost != out[j].Cost {
			return out[i].Cost < out[j].Cost
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Apply executes the rule's edit operation on a clone of g and returns the
// clone; g itself is never touched. Returns ErrUnsatisfiableRule when the
// graph offers no anchor for the edit — the caller treats that as "no
// candidate produced", not a fatal error.
func Apply(r Rule, g *mechanism.Graph) (*mechanism.Graph, error) {
	c := g.Clone()
	switch r.Operation {
	case OpAddElement:
		c.AddElement(r.ElementLabel, mechanism.RoleNone)
		return c, nil

	case OpAddJoint:
		a, b, ok := freePair(c, r.JointType)
		if !ok {
			return nil, fmt.Errorf("rule %s: %w", r.ID, mechanism.ErrUnsatisfiableRule)
		}
		if _, err := c.AddJoint(r.JointType, a, b, r.JointTag); err != nil {
			return nil, err
		}
		return c, nil

	case OpAddElementWithJoint:
		anchor, ok := anchorElement(c)
		if !ok {
			return nil, fmt.Errorf("rule %s: %w", r.ID, mechanism.ErrUnsatisfiableRule)
		}
		added := c.AddElement(r.ElementLabel, mechanism.RoleNone)
		if _, err := c.AddJoint(r.JointType, anchor, added, r.JointTag); err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("rule %s: unknown operation %q", r.ID, r.Operation)
}

// freePair picks the lowest-ID pair of distinct elements not already joined
// by a joint of the given type. Lowest-first selection keeps rule
// application deterministic.
func freePair(g *mechanism.Graph, jt mechanism.JointType) (mechanism.ElementID, mechanism.ElementID, bool) {
	elems := g.Elements()
	for i := 0; i < len(elems); i++ {
		for j := i + 1; j < len(elems); j++ {
			a, b := elems[i].ID, elems[j].ID
			if !hasJointOfType(g, a, b, jt) {
				return a, b, true
			}
		}
	}
	return 0, 0, false
}

func hasJointOfType(g *mechanism.Graph, a, b mechanism.ElementID, jt mechanism.JointType) bool {
	for _, j := range g.JointsBetween(a, b) {
		if j.Type == jt {
			return true
		}
	}
	return false
}

// anchorElement picks the element a new functional part attaches to: the
// lowest-ID non-ground element carrying a prismatic joint (the sliding
// output in the catalogs this engine ships with), else the lowest-ID
// non-ground element, else the lowest-ID element.
func anchorElement(g *mechanism.Graph) (mechanism.ElementID, bool) {
	elems := g.Elements()
	if len(elems) == 0 {
		return 0, false
	}
	for _, e := range elems {
		if e.Role == mechanism.RoleGround {
			continue
		}
		for _, j := range g.JointsIncident(e.ID) {
			if j.Type == mechanism.Prismatic {
				return e.ID, true
			}
		}
	}
	for _, e := range elems {
		if e.Role != mechanism.RoleGround {
			return e.ID, true
		}
	}
	return elems[0].ID, true
}
