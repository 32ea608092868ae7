// Package task loads and validates design task specifications: the named
// elements of the target device, its discrete operating states, and the
// elemental functions the synthesized mechanism must satisfy.
package task

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/codesymm/mechsynth/pkg/behavior"
)

// State is one discrete operating state of the target device, e.g. a latch
// that is extended, retracted or locked.
type State struct {
	ID          string `json:"state_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Task is a design task specification. Element keys use positional
// references ("E0", "E1", ...) that EF behavior vectors point back into.
type Task struct {
	Name        string            `json:"task_name" validate:"required"`
	Description string            `json:"description"`
	Elements    map[string]string `json:"elements" validate:"required,min=1"`
	States      []State           `json:"states" validate:"dive"`
	EFs         []behavior.EF     `json:"elemental_functions" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Parse decodes and validates a task specification.
func Parse(data []byte) (*Task, error) {
	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("task: decode: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads and parses a task specification from a file.
func Load(path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("task: read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("task: %s: %w", path, err)
	}
	return t, nil
}

// Validate checks structural constraints plus the cross-references the
// struct tags cannot express: EF types and signs must be valid, and every
// behavior vector must point at a declared element.
func (t *Task) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("task %q: %w", t.Name, err)
	}
	seen := make(map[string]bool, len(t.EFs))
	for _, ef := range t.EFs {
		if ef.ID == "" {
			return fmt.Errorf("task %q: elemental function with empty ef_id", t.Name)
		}
		if seen[ef.ID] {
			return fmt.Errorf("task %q: duplicate elemental function %s", t.Name, ef.ID)
		}
		seen[ef.ID] = true
		if !ef.Type.Valid() {
			return fmt.Errorf("task %q: %s: unknown type %q", t.Name, ef.ID, ef.Type)
		}
		if len(ef.Behavior) == 0 {
			return fmt.Errorf("task %q: %s: empty behavior vector", t.Name, ef.ID)
		}
		for _, s := range ef.Behavior {
			if _, ok := t.Elements[s.Element]; !ok {
				return fmt.Errorf("task %q: %s: behavior references undeclared element %q", t.Name, ef.ID, s.Element)
			}
			if !s.Effort.Valid() || !s.Motion.Valid() {
				return fmt.Errorf("task %q: %s: invalid sign on element %s", t.Name, ef.ID, s.Element)
			}
		}
	}
	return nil
}

// FirstDirectActuation returns the first Type-1.1 EF in declaration order.
// Seed retrieval anchors on it; a task without one cannot start a search.
func (t *Task) FirstDirectActuation() (behavior.EF, bool) {
	for _, ef := range t.EFs {
		if ef.Type == behavior.TypeDirectActuation {
			return ef, true
		}
	}
	return behavior.EF{}, false
}

// ElementRefs returns the declared element references in sorted order.
func (t *Task) ElementRefs() []string {
	refs := make([]string, 0, len(t.Elements))
	for ref := range t.Elements {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

// FullText concatenates the task description with every EF description.
// Seed filtering scans it for motion-intent keywords.
func (t *Task) FullText() string {
	out := t.Description
	for _, ef := range t.EFs {
		if ef.Description == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += ef.Description
	}
	return out
}
