/*
Package lattice models decoder input as a directed acyclic word lattice.

A lattice has nodes 0…n over integerized labels; a plain sentence is the
degenerate lattice with exactly one arc per token. Ambiguous input (e.g.
alternative tokenizations, speech recognition output) uses the Python
lattice format, see plf.go.
*/
package lattice

import (
	"fmt"
	"math"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'joshua.lattice'.
func tracer() tracing.Trace {
	return tracing.Select("joshua.lattice")
}

// Arc is a labeled transition between two lattice nodes.
type Arc struct {
	Label joshua.SymID // integerized word label
	Head  int          // node this arc points to
	Cost  float64      // input cost, 0 for plain sentences
}

// Node is a lattice vertex. Arcs leave the node in insertion order.
type Node struct {
	ID       int
	Outgoing []Arc
}

// Lattice is a DAG over source positions. Node ids are topologically
// ordered: every arc points from a lower id to a strictly higher one.
type Lattice struct {
	nodes []Node
	dist  [][]float64 // dist[i][j] = minimum number of arcs from i to j
}

// FromTokens builds the linear lattice for a token sequence: one node per
// boundary, one zero-cost arc per token.
func FromTokens(ids []joshua.SymID) *Lattice {
	l := &Lattice{nodes: make([]Node, len(ids)+1)}
	for i := range l.nodes {
		l.nodes[i].ID = i
	}
	for i, id := range ids {
		l.nodes[i].Outgoing = []Arc{{Label: id, Head: i + 1}}
	}
	l.computeDistances()
	return l
}

// newLattice wraps pre-built nodes; used by the PLF reader.
func newLattice(nodes []Node) *Lattice {
	l := &Lattice{nodes: nodes}
	l.computeDistances()
	return l
}

// Size returns the number of nodes. The distinguished source length n is
// Size()-1.
func (l *Lattice) Size() int {
	return len(l.nodes)
}

// Width returns the source span length n, i.e. the index of the final node.
func (l *Lattice) Width() int {
	return len(l.nodes) - 1
}

// Node returns the node with the given id.
func (l *Lattice) Node(i int) *Node {
	return &l.nodes[i]
}

// Distance returns the minimum number of arcs on a path from node i to
// node j, or +Inf if no path exists.
func (l *Lattice) Distance(i, j int) float64 {
	return l.dist[i][j]
}

// HasPath reports whether node j is reachable from node i.
func (l *Lattice) HasPath(i, j int) bool {
	return i < j && !math.IsInf(l.dist[i][j], 1)
}

// Arc-count shortest paths over all node pairs. Since node ids are
// topologically ordered a single backward sweep suffices.
func (l *Lattice) computeDistances() {
	n := len(l.nodes)
	l.dist = make([][]float64, n)
	for i := range l.dist {
		l.dist[i] = make([]float64, n)
		for j := range l.dist[i] {
			if i != j {
				l.dist[i][j] = math.Inf(1)
			}
		}
	}
	for i := n - 1; i >= 0; i-- {
		for _, arc := range l.nodes[i].Outgoing {
			if arc.Head <= i || arc.Head >= n {
				panic(fmt.Sprintf("lattice arc %d→%d violates topological order", i, arc.Head))
			}
			for j := arc.Head; j < n; j++ {
				if d := 1 + l.dist[arc.Head][j]; d < l.dist[i][j] {
					l.dist[i][j] = d
				}
			}
		}
	}
	tracer().Debugf("lattice with %d nodes, source length %d", n, n-1)
}

func (l *Lattice) String() string {
	s := fmt.Sprintf("lattice[%d nodes]", len(l.nodes))
	for _, node := range l.nodes {
		for _, arc := range node.Outgoing {
			s += fmt.Sprintf(" %d-%d→%d", node.ID, arc.Label, arc.Head)
		}
	}
	return s
}
