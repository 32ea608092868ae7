package catalog

import (
	_ "embed"

	"github.com/codesymm/mechsynth/pkg/rules"
)

//go:embed defaults/building_blocks.json
var defaultBlocksJSON []byte

//go:embed defaults/transformation_rules.json
var defaultRulesJSON []byte

// DefaultBlocks returns the embedded building-block catalog.
func DefaultBlocks() ([]Block, error) {
	return ParseBlocks(defaultBlocksJSON)
}

// DefaultRules returns the embedded transformation-rule catalog.
func DefaultRules() ([]rules.Rule, error) {
	return ParseRules(defaultRulesJSON)
}
