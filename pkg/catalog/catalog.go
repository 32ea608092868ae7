// Package catalog loads the knowledge base: the building-block mechanisms
// used as search seeds and the transformation-rule catalog the engine
// applies to them. Both ship as embedded defaults and can be overridden
// from external JSON files.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/codesymm/mechsynth/pkg/behavior"
	"github.com/codesymm/mechsynth/pkg/mechanism"
	"github.com/codesymm/mechsynth/pkg/rules"
)

// ElementDef declares one element of a building block. Position in the
// slice is the element's ID.
type ElementDef struct {
	Label string         `json:"label"`
	Role  mechanism.Role `json:"role,omitempty"`
}

// JointDef declares one joint of a building block by element index.
type JointDef struct {
	Type mechanism.JointType `json:"type"`
	A    int                 `json:"a"`
	B    int                 `json:"b"`
	Tag  string              `json:"tag,omitempty"`
}

// SatisfiedEF advertises a behavior vector the block exhibits out of the
// box. Rule-based seed retrieval matches task EFs against these.
type SatisfiedEF struct {
	Type     behavior.EFType  `json:"type"`
	Behavior []behavior.State `json:"behavior"`
}

// Block is one building-block mechanism of the knowledge base.
type Block struct {
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	TextDescription  string        `json:"text_description"`
	MotionConversion string        `json:"motion_conversion"`
	NumElements      int           `json:"num_elements"`
	Elements         []ElementDef  `json:"elements"`
	Joints           []JointDef    `json:"joints"`
	SatisfiesEFs     []SatisfiedEF `json:"satisfies_efs"`
}

// BuildGraph instantiates the block's topology as a mechanism graph.
func BuildGraph(b Block) (*mechanism.Graph, error) {
	g := mechanism.NewGraph()
	ids := make([]mechanism.ElementID, len(b.Elements))
	for i, e := range b.Elements {
		ids[i] = g.AddElement(e.Label, e.Role)
	}
	for _, j := range b.Joints {
		if j.A < 0 || j.A >= len(ids) || j.B < 0 || j.B >= len(ids) {
			return nil, fmt.Errorf("catalog: block %q: joint endpoint out of range (%d, %d)", b.Name, j.A, j.B)
		}
		if _, err := g.AddJoint(j.Type, ids[j.A], ids[j.B], j.Tag); err != nil {
			return nil, fmt.Errorf("catalog: block %q: %w", b.Name, err)
		}
	}
	return g, nil
}

// Validate checks the block's declaration for internal consistency.
func (b Block) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("catalog: block with empty name")
	}
	if len(b.Elements) < 2 {
		return fmt.Errorf("catalog: block %q: needs at least 2 elements", b.Name)
	}
	if b.NumElements != 0 && b.NumElements != len(b.Elements) {
		return fmt.Errorf("catalog: block %q: num_elements %d does not match %d declared elements",
			b.Name, b.NumElements, len(b.Elements))
	}
	for _, j := range b.Joints {
		if !j.Type.Valid() {
			return fmt.Errorf("catalog: block %q: unknown joint type %q", b.Name, j.Type)
		}
	}
	for _, ef := range b.SatisfiesEFs {
		if !ef.Type.Valid() {
			return fmt.Errorf("catalog: block %q: unknown EF type %q", b.Name, ef.Type)
		}
	}
	return nil
}

type blocksFile struct {
	Mechanisms []Block `json:"mechanisms"`
}

type rulesFile struct {
	Rules []rules.Rule `json:"rules"`
}

// ParseBlocks decodes and validates a building-blocks catalog.
func ParseBlocks(data []byte) ([]Block, error) {
	var f blocksFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode building blocks: %w", err)
	}
	if len(f.Mechanisms) == 0 {
		return nil, fmt.Errorf("catalog: no mechanisms declared")
	}
	for _, b := range f.Mechanisms {
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Mechanisms, nil
}

// ParseRules decodes and validates a transformation-rule catalog.
func ParseRules(data []byte) ([]rules.Rule, error) {
	var f rulesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode rules: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("catalog: no rules declared")
	}
	for _, r := range f.Rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	return f.Rules, nil
}

// LoadBlocks reads a building-blocks catalog from a file.
func LoadBlocks(path string) ([]Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return ParseBlocks(data)
}

// LoadRules reads a transformation-rule catalog from a file.
func LoadRules(path string) ([]rules.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return ParseRules(data)
}

// FindBlock returns the block with the given name.
func FindBlock(blocks []Block, name string) (Block, bool) {
	for _, b := range blocks {
		if b.Name == name {
			return b, true
		}
	}
	return Block{}, false
}

// BehaviorMatches reports whether two behavior vectors agree position by
// position on effort and motion signs. Element references are ignored:
// the vectors describe abstract roles, not concrete graph elements.
func BehaviorMatches(a, b []behavior.State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Effort != b[i].Effort || a[i].Motion != b[i].Motion {
			return false
		}
	}
	return true
}
