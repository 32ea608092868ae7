// Package engine implements the heuristic type-synthesis search: a
// best-first (A*-style) exploration that grows a seed mechanism graph by
// applying transformation rules until every required elemental function is
// structurally satisfied.
//
// The heuristic (count of unsatisfied EFs) is informative but not proven
// admissible against rule costs, so the returned path is a valid synthesis,
// not necessarily the cheapest one. That trade-off favors convergence speed
// over exactness.
package engine

import (
	"container/heap"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/codesymm/mechsynth/pkg/behavior"
	"github.com/codesymm/mechsynth/pkg/logging"
	"github.com/codesymm/mechsynth/pkg/mechanism"
	"github.com/codesymm/mechsynth/pkg/metrics"
	"github.com/codesymm/mechsynth/pkg/rules"
)

// Status is the terminal state of a per-seed search.
type Status string

const (
	// StatusGoal means every required EF was satisfied.
	StatusGoal Status = "goal"
	// StatusExhausted means the frontier emptied or the iteration budget
	// ran out before reaching the goal. Non-fatal: other seeds still run.
	StatusExhausted Status = "exhausted"
)

// Options bound a search run.
type Options struct {
	// MaxIterations caps the number of frontier pops per seed.
	MaxIterations int
	// MaxDOF rejects candidates whose mobility exceeds it. Zero disables
	// the upper bound; negative DOF is always rejected.
	MaxDOF int
}

// Seed is an initial mechanism proposed as a search starting point.
type Seed struct {
	Name   string
	Source string
	Score  float64
	Graph  *mechanism.Graph
}

// Result is the outcome of one per-seed search.
type Result struct {
	RunID        uuid.UUID
	SeedName     string
	Status       Status
	Graph        *mechanism.Graph
	Path         []string
	SatisfiedEFs []string
	Cost         int
	Iterations   int
	Trace        *Trace
}

// Goal reports whether the search reached the goal state.
func (r Result) Goal() bool { return r.Status == StatusGoal }

// Engine runs independent per-seed searches over a shared read-only rule
// catalog. Each search owns its frontier and visited set; no state is
// shared between seeds.
type Engine struct {
	catalog []rules.Rule
	opts    Options
	log     logging.Logger
	metrics *metrics.Registry
}

// New creates a synthesis engine. A nil logger discards logs; a nil
// registry falls back to the process-wide one.
func New(catalog []rules.Rule, opts Options, log logging.Logger, reg *metrics.Registry) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	if reg == nil {
		reg = metrics.Default()
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 100
	}
	return &Engine{catalog: catalog, opts: opts, log: log, metrics: reg}
}

// RunAll searches every seed in order and returns one result per seed.
// Exhaustion is a normal per-seed outcome and never aborts sibling
// searches; only a defect (an invalid element reference inside a rule
// application) stops the run.
func (e *Engine) RunAll(ctx context.Context, seeds []Seed, efs []behavior.EF) ([]Result, error) {
	results := make([]Result, 0, len(seeds))
	for _, seed := range seeds {
		res, err := e.Run(ctx, seed, efs)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Run performs one best-first search from the seed graph.
func (e *Engine) Run(ctx context.Context, seed Seed, efs []behavior.EF) (Result, error) {
	runID := uuid.New()
	log := e.log.With(logging.Component("engine"), logging.SeedName(seed.Name), logging.String("run_id", runID.String()))
	timer := logging.Timed(log, "search finished")
	start := time.Now()

	trace := &Trace{}
	satisfied, types := behavior.SatisfiedSet(seed.Graph, efs)
	trace.record(0, StepInitial, seed.Graph, satisfied)

	startNode := &Node{
		Graph:          seed.Graph,
		SatisfiedEFs:   satisfied,
		SatisfiedTypes: types,
		H:              len(efs) - len(satisfied),
	}
	startNode.F = startNode.G + startNode.H

	open := &frontier{}
	heap.Init(open)
	heap.Push(open, startNode)
	seq := 1

	visited := map[string]bool{seed.Graph.Signature(): true}
	best := startNode

	log.Info("search started",
		logging.Count(len(efs)),
		logging.Int("pre_satisfied", len(satisfied)),
		logging.Int("max_iterations", e.opts.MaxIterations))

	iterations := 0
	for open.Len() > 0 && iterations < e.opts.MaxIterations {
		if ctx.Err() != nil {
			log.Warn("search cancelled", logging.Err(ctx.Err()))
			break
		}
		iterations++
		e.metrics.IterationsTotal.Inc()
		e.metrics.FrontierSize.Set(float64(open.Len()))

		current := heap.Pop(open).(*Node)
		if better(current, best) {
			best = current
		}

		if len(current.SatisfiedEFs) == len(efs) {
			trace.record(iterations, StepFinal, current.Graph, current.SatisfiedEFs)
			e.metrics.RecordSearch(metrics.OutcomeGoal, time.Since(start))
			timer.End()
			log.Info("goal reached",
				logging.Iteration(iterations),
				logging.Cost(current.G),
				logging.Any("path", current.Path))
			return e.result(runID, seed, StatusGoal, current, iterations, trace), nil
		}

		nextEF, ok := nextUnsatisfied(efs, current.SatisfiedEFs)
		if !ok {
			continue
		}
		applicable := rules.ApplicableRules(e.catalog, current.SatisfiedTypes, nextEF.Type)
		log.Debug("expanding node",
			logging.Iteration(iterations),
			logging.EFID(nextEF.ID),
			logging.Count(len(applicable)))
		if len(applicable) == 0 {
			continue
		}

		for _, rule := range applicable {
			candidate, err := rules.Apply(rule, current.Graph)
			if err != nil {
				if errors.Is(err, mechanism.ErrUnsatisfiableRule) {
					e.metrics.RecordRejection(metrics.ReasonUnsatisfiable)
					continue
				}
				// Anything else is a defect in the rule catalog or graph
				// data, surfaced immediately.
				timer.EndError(err)
				return Result{}, err
			}

			if !candidate.IsConnected() {
				e.metrics.RecordRejection(metrics.ReasonDisconnected)
				continue
			}
			dof, err := candidate.DegreesOfFreedom()
			if err != nil || dof < 0 || (e.opts.MaxDOF > 0 && dof > e.opts.MaxDOF) {
				e.metrics.RecordRejection(metrics.ReasonInvalidDOF)
				continue
			}

			sig := candidate.Signature()
			if visited[sig] {
				e.metrics.RecordRejection(metrics.ReasonVisited)
				continue
			}
			visited[sig] = true

			// Dynamic tracking: recompute the full satisfied set instead
			// of assuming the rule's target was gained.
			ids, typs := behavior.SatisfiedSet(candidate, efs)
			child := &Node{
				Graph:          candidate,
				Path:           appendPath(current.Path, rule.ID),
				SatisfiedEFs:   ids,
				SatisfiedTypes: typs,
				G:              current.G + rule.Cost,
				H:              len(efs) - len(ids),
				seq:            seq,
			}
			child.F = child.G + child.H
			seq++

			heap.Push(open, child)
			trace.record(iterations, rule.ID, candidate, ids)
			e.metrics.RecordRuleApplied(rule.ID)
			log.Debug("candidate enqueued",
				logging.RuleID(rule.ID),
				logging.Cost(child.G),
				logging.DOF(dof),
				logging.Int("unsatisfied", child.H))
		}
	}

	e.metrics.RecordSearch(metrics.OutcomeExhausted, time.Since(start))
	timer.End()
	log.Info("search exhausted",
		logging.Iteration(iterations),
		logging.Int("frontier", open.Len()),
		logging.Int("best_satisfied", len(best.SatisfiedEFs)))
	return e.result(runID, seed, StatusExhausted, best, iterations, trace), nil
}

func (e *Engine) result(runID uuid.UUID, seed Seed, status Status, node *Node, iterations int, trace *Trace) Result {
	return Result{
		RunID:        runID,
		SeedName:     seed.Name,
		Status:       status,
		Graph:        node.Graph,
		Path:         node.Path,
		SatisfiedEFs: sortedKeys(node.SatisfiedEFs),
		Cost:         node.G,
		Iterations:   iterations,
		Trace:        trace,
	}
}

// better prefers more satisfied EFs, then lower F. Used only to pick the
// node reported on exhaustion.
func better(a, b *Node) bool {
	if len(a.SatisfiedEFs) != len(b.SatisfiedEFs) {
		return len(a.SatisfiedEFs) > len(b.SatisfiedEFs)
	}
	return a.F < b.F
}

// nextUnsatisfied returns the open EF with the lowest ID. All open EFs are
// retried across iterations — any of them may become reachable as the
// satisfied-type set grows — but expansion always targets the lowest one
// for determinism.
func nextUnsatisfied(efs []behavior.EF, satisfied map[string]bool) (behavior.EF, bool) {
	var pick behavior.EF
	found := false
	for _, ef := range efs {
		if satisfied[ef.ID] {
			continue
		}
		if !found || efIDLess(ef.ID, pick.ID) {
			pick = ef
			found = true
		}
	}
	return pick, found
}

// efIDLess orders EF IDs numerically when both carry a numeric suffix
// ("EF2" < "EF10"), falling back to lexicographic order.
func efIDLess(a, b string) bool {
	na, aok := numericSuffix(a)
	nb, bok := numericSuffix(b)
	if aok && bok && na != nb {
		return na < nb
	}
	return a < b
}

func numericSuffix(s string) (int, bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func appendPath(path []string, ruleID string) []string {
	out := make([]string, 0, len(path)+1)
	out = append(out, path...)
	return append(out, ruleID)
}
