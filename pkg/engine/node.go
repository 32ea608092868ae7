package engine

import (
	"github.com/codesymm/mechsynth/pkg/behavior"
	"github.com/codesymm/mechsynth/pkg/mechanism"
)

// Node is one state in the search space: a graph snapshot plus the path of
// rule IDs that produced it and the behavior classes it currently
// satisfies. Nodes are immutable once enqueued; expansion clones the graph.
type Node struct {
	Graph          *mechanism.Graph
	Path           []string
	SatisfiedEFs   map[string]bool
	SatisfiedTypes map[behavior.EFType]bool

	// G is accumulated rule cost, H the count of unsatisfied EFs and
	// F = G + H the frontier priority.
	G int
	H int
	F int

	// seq is the insertion order, the final tie-breaker. FIFO among equal
	// (F, G) keeps runs reproducible.
	seq int
}

// frontier is a min-heap ordered by F, then G, then insertion order.
// It implements container/heap.Interface.
type frontier []*Node

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].F != f[j].F {
		return f[i].F < f[j].F
	}
	if f[i].G != f[j].G {
		return f[i].G < f[j].G
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(*Node)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return item
}
