package ranking

import (
	"strings"

	"github.com/codesymm/mechsynth/pkg/behavior"
	"github.com/codesymm/mechsynth/pkg/catalog"
	"github.com/codesymm/mechsynth/pkg/engine"
	"github.com/codesymm/mechsynth/pkg/logging"
)

// DefaultThreshold is the minimum ranking score for a block to become a
// seed.
const DefaultThreshold = 0.1

// translationKeywords mark a task whose output motion is linear; blocks
// converting rotation to rotation are filtered out for such tasks.
var translationKeywords = []string{
	"linear", "translate", "translation", "slider", "retract", "inward", "bolt",
}

// SeedOptions tune seed selection.
type SeedOptions struct {
	// Threshold is the minimum score; zero means DefaultThreshold.
	Threshold float64
}

// SelectSeeds turns ranked blocks into search seeds. Blocks are dropped
// when they score at or below the threshold, when their motion conversion
// contradicts the task's translation intent, or when their topology is not
// a connected single-input mechanism.
func SelectSeeds(ranked []RankedMechanism, blocks []catalog.Block, taskText string, opts SeedOptions, log logging.Logger) ([]engine.Seed, error) {
	if log == nil {
		log = logging.Nop()
	}
	log = log.With(logging.Component("ranking"))
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	needsTranslation := hasTranslationIntent(taskText)

	var seeds []engine.Seed
	for _, r := range ranked {
		if r.Score <= threshold {
			continue
		}
		block, ok := catalog.FindBlock(blocks, r.Name)
		if !ok {
			log.Warn("ranked mechanism not in catalog", logging.String("name", r.Name))
			continue
		}
		if needsTranslation && strings.Contains(strings.ToLower(block.MotionConversion), "rotation to rotation") {
			log.Debug("skipping block, motion type mismatch", logging.String("name", r.Name))
			continue
		}
		g, err := catalog.BuildGraph(block)
		if err != nil {
			return nil, err
		}
		dof, err := g.DegreesOfFreedom()
		if err != nil || dof != 1 || !g.IsConnected() {
			log.Debug("skipping block, not a single-input mechanism",
				logging.String("name", r.Name), logging.DOF(dof))
			continue
		}
		seeds = append(seeds, engine.Seed{
			Name:   block.Name,
			Source: "ai_retrieval",
			Score:  r.Score,
			Graph:  g,
		})
	}
	log.Info("seed selection complete", logging.Count(len(seeds)))
	return seeds, nil
}

// RuleBasedSeeds matches the anchor EF's behavior vector exactly against
// each block's advertised behaviors. The offline alternative to ranking.
func RuleBasedSeeds(anchor behavior.EF, blocks []catalog.Block, log logging.Logger) ([]engine.Seed, error) {
	if log == nil {
		log = logging.Nop()
	}
	log = log.With(logging.Component("ranking"))

	var seeds []engine.Seed
	for _, block := range blocks {
		for _, satisfied := range block.SatisfiesEFs {
			if !catalog.BehaviorMatches(anchor.Behavior, satisfied.Behavior) {
				continue
			}
			g, err := catalog.BuildGraph(block)
			if err != nil {
				return nil, err
			}
			seeds = append(seeds, engine.Seed{
				Name:   block.Name,
				Source: "knowledge_base",
				Score:  1,
				Graph:  g,
			})
			log.Debug("behavior match", logging.String("name", block.Name), logging.EFID(anchor.ID))
			break
		}
	}
	log.Info("rule-based seed selection complete", logging.Count(len(seeds)))
	return seeds, nil
}

func hasTranslationIntent(text string) bool {
	text = strings.ToLower(text)
	for _, k := range translationKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
