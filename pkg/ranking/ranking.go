// Package ranking scores knowledge-base building blocks against a design
// task and turns the best matches into search seeds. Two rankers are
// provided: a remote LLM ranker and a deterministic lexical one used as
// fallback and for offline runs.
package ranking

import (
	"context"
	"sort"
	"strings"

	"github.com/codesymm/mechsynth/pkg/behavior"
	"github.com/codesymm/mechsynth/pkg/catalog"
	"github.com/codesymm/mechsynth/pkg/logging"
	"github.com/codesymm/mechsynth/pkg/metrics"
)

// RankedMechanism is one scored building block.
type RankedMechanism struct {
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// Ranker scores building blocks against a task, highest first.
type Ranker interface {
	Rank(ctx context.Context, description string, efs []behavior.EF, blocks []catalog.Block) ([]RankedMechanism, error)
	Name() string
}

// defaultScore is assigned to blocks the ranker did not mention, so every
// block appears in the output below the selection threshold.
const defaultScore = 0.1

// sortRanked orders by score descending with name as the deterministic
// tie-breaker.
func sortRanked(out []RankedMechanism) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
}

// LexicalRanker scores blocks by token overlap between the task text and
// the block's descriptions. Fully deterministic and dependency-free; used
// when no LLM is configured or reachable.
type LexicalRanker struct {
	log     logging.Logger
	metrics *metrics.Registry
}

// NewLexicalRanker creates a lexical ranker. Nil logger and registry fall
// back to no-op and process defaults.
func NewLexicalRanker(log logging.Logger, reg *metrics.Registry) *LexicalRanker {
	if log == nil {
		log = logging.Nop()
	}
	if reg == nil {
		reg = metrics.Default()
	}
	return &LexicalRanker{log: log, metrics: reg}
}

// Name identifies the ranker in logs and metrics.
func (r *LexicalRanker) Name() string { return "lexical" }

// Rank never fails; with an empty query every block gets a flat neutral
// score.
func (r *LexicalRanker) Rank(_ context.Context, description string, efs []behavior.EF, blocks []catalog.Block) ([]RankedMechanism, error) {
	query := tokenize(queryText(description, efs))
	out := make([]RankedMechanism, 0, len(blocks))
	for _, b := range blocks {
		score := 0.5
		if len(query) > 0 {
			doc := tokenize(b.Description + " " + b.TextDescription + " " + b.MotionConversion)
			score = overlap(query, doc)
		}
		out = append(out, RankedMechanism{Name: b.Name, Score: score})
	}
	sortRanked(out)
	r.metrics.RecordRankingCall(r.Name(), nil)
	r.log.Debug("lexical ranking complete", logging.Component("ranking"), logging.Count(len(out)))
	return out, nil
}

func queryText(description string, efs []behavior.EF) string {
	var sb strings.Builder
	sb.WriteString(description)
	for _, ef := range efs {
		sb.WriteByte(' ')
		sb.WriteString(ef.Description)
	}
	return sb.String()
}

// stopwords are too common to signal anything about motion or function.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "its": true, "with": true,
	"that": true, "into": true, "from": true, "can": true, "lets": true,
	"used": true, "two": true, "per": true,
}

func tokenize(s string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(tok) > 2 && !stopwords[tok] {
			out[tok] = true
		}
	}
	return out
}

// overlap is the fraction of query tokens present in the document.
func overlap(query, doc map[string]bool) float64 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for tok := range query {
		if doc[tok] {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}

// WithFallback wraps a primary ranker so that any error falls through to
// the fallback instead of aborting seed retrieval.
func WithFallback(primary, fallback Ranker, log logging.Logger) Ranker {
	if log == nil {
		log = logging.Nop()
	}
	return &fallbackRanker{primary: primary, fallback: fallback, log: log}
}

type fallbackRanker struct {
	primary  Ranker
	fallback Ranker
	log      logging.Logger
}

func (r *fallbackRanker) Name() string { return r.primary.Name() }

func (r *fallbackRanker) Rank(ctx context.Context, description string, efs []behavior.EF, blocks []catalog.Block) ([]RankedMechanism, error) {
	out, err := r.primary.Rank(ctx, description, efs, blocks)
	if err == nil {
		return out, nil
	}
	r.log.Warn("primary ranker failed, using fallback",
		logging.Component("ranking"),
		logging.String("primary", r.primary.Name()),
		logging.String("fallback", r.fallback.Name()),
		logging.Err(err))
	return r.fallback.Rank(ctx, description, efs, blocks)
}
