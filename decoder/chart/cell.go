/*
Package chart implements the CKY-style bottom-up chart parser at the core
of the decoder: chart cells over source spans, the dot chart recognizing
rule right-hand sides, cube pruning, and the unary-rule closure. The result
of a parse is a translation hypergraph rooted at the goal symbol.
*/
package chart

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/npillmayer/schuko/tracing"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/decoder/ff"
	"github.com/Dearborn-Open-AI/joshua/decoder/hypergraph"
	"github.com/Dearborn-Open-AI/joshua/grammar"
)

// tracer traces with key 'joshua.chart'.
func tracer() tracing.Trace {
	return tracing.Select("joshua.chart")
}

// SuperNode bundles, within a single cell, all hypergraph nodes sharing a
// left-hand side. Never empty; after a cell sort, Nodes[0] is the 1-best
// by forest score.
type SuperNode struct {
	I, J  int
	LHS   joshua.SymID
	Nodes []*hypergraph.HGNode
}

func (sn *SuperNode) String() string {
	return fmt.Sprintf("super[%d %s |%d|]", sn.LHS, joshua.Span{sn.I, sn.J}, len(sn.Nodes))
}

// Cell is the hypergraph fragment for one source span. Nodes are indexed
// by (lhs, dp-state) signature; insertion order is remembered so that all
// iteration is deterministic.
type Cell struct {
	chart *Chart
	i, j  int

	nodes   map[string]*hypergraph.HGNode // signature → node
	ordered *arraylist.List               // *HGNode in insertion order
	super   map[joshua.SymID]*SuperNode

	sorted    []*hypergraph.HGNode // score-descending view, lazily computed
	sortValid bool

	bestEstimate float64 // best pruning score of a newly opened node, inside-beam reference
	nAdded       int
	nMerged      int
	nPruned      int
}

func newCell(chart *Chart, i, j int) *Cell {
	return &Cell{
		chart:   chart,
		i:       i,
		j:       j,
		nodes:   make(map[string]*hypergraph.HGNode),
		ordered: arraylist.New(),
		super:   make(map[joshua.SymID]*SuperNode),
	}
}

// Span returns the source span this cell covers.
func (c *Cell) Span() joshua.Span {
	return joshua.Span{c.i, c.j}
}

// AddHyperEdge inserts one scored hyperedge. If a node with the same
// (lhs, dp-state) identity exists, the edge is merged into it; otherwise a
// new node is created. With pruneInsideBeam, a candidate that would open a
// new node scoring below the cell's best minus the beam width is dropped;
// edges merging into an existing node are never pruned. Returns the node
// the edge ended up in, or nil when pruned.
func (c *Cell) AddHyperEdge(result ff.NodeResult, rule *grammar.Rule,
	tails []*hypergraph.HGNode, sourcePath []joshua.SymID, pruneInsideBeam bool) *hypergraph.HGNode {
	//
	edge := &hypergraph.HyperEdge{
		Rule:       rule,
		Tails:      tails,
		SourcePath: sourcePath,
		Transition: result.Transition,
	}
	signature := hypergraph.Signature(rule.LHS, result.States)
	tracer().Debugf("add hyperedge %v: %s", c.Span(), rule.Format(c.chart.vocab))
	if node, ok := c.nodes[signature]; ok {
		node.AddEdge(edge, result.Viterbi)
		if est := result.PruningScore(); est > node.Estimate {
			node.Estimate = est
		}
		c.nMerged++
		c.sortValid = false
		return node
	}
	estimate := result.PruningScore()
	if pruneInsideBeam && c.chart.config.BeamWidth > 0 && c.nAdded > 0 &&
		estimate < c.bestEstimate-c.chart.config.BeamWidth {
		c.nPruned++
		return nil
	}
	node := &hypergraph.HGNode{
		I:        c.i,
		J:        c.j,
		LHS:      rule.LHS,
		States:   result.States,
		Estimate: estimate,
		Serial:   c.chart.nextNodeSerial(),
	}
	node.AddEdge(edge, result.Viterbi)
	c.nodes[signature] = node
	c.ordered.Add(node)
	c.superNodeFor(rule.LHS).Nodes = append(c.superNodeFor(rule.LHS).Nodes, node)
	if c.nAdded == 0 || estimate > c.bestEstimate {
		c.bestEstimate = estimate
	}
	c.nAdded++
	c.sortValid = false
	return node
}

func (c *Cell) superNodeFor(lhs joshua.SymID) *SuperNode {
	sn, ok := c.super[lhs]
	if !ok {
		sn = &SuperNode{I: c.i, J: c.j, LHS: lhs}
		c.super[lhs] = sn
	}
	return sn
}

// SuperNode returns the bundle for an lhs, or nil.
func (c *Cell) SuperNode(lhs joshua.SymID) *SuperNode {
	return c.super[lhs]
}

// SuperNodes returns the cell's supernodes ordered by lhs id, for
// deterministic iteration.
func (c *Cell) SuperNodes() []*SuperNode {
	sns := make([]*SuperNode, 0, len(c.super))
	for _, sn := range c.super {
		sns = append(sns, sn)
	}
	sort.Slice(sns, func(a, b int) bool { return sns[a].LHS < sns[b].LHS })
	return sns
}

// Nodes returns the cell's nodes in insertion order.
func (c *Cell) Nodes() []*hypergraph.HGNode {
	nodes := make([]*hypergraph.HGNode, 0, c.ordered.Size())
	it := c.ordered.Iterator()
	for it.Next() {
		nodes = append(nodes, it.Value().(*hypergraph.HGNode))
	}
	return nodes
}

// SortedNodes returns the cell's nodes by forest score descending, ties by
// insertion order. The view is cached until the next insertion; sorting
// also re-establishes the score order inside every supernode.
func (c *Cell) SortedNodes() []*hypergraph.HGNode {
	if c.sortValid {
		return c.sorted
	}
	c.sorted = c.Nodes()
	sortNodesByScore(c.sorted)
	for _, sn := range c.super {
		sortNodesByScore(sn.Nodes)
	}
	c.sortValid = true
	return c.sorted
}

func sortNodesByScore(nodes []*hypergraph.HGNode) {
	sort.SliceStable(nodes, func(a, b int) bool {
		if nodes[a].Score != nodes[b].Score {
			return nodes[a].Score > nodes[b].Score
		}
		return nodes[a].Serial < nodes[b].Serial
	})
}

// Size returns the number of nodes in the cell.
func (c *Cell) Size() int {
	return c.ordered.Size()
}

func (c *Cell) String() string {
	return fmt.Sprintf("cell%s |%d nodes, %d merged, %d pruned|",
		joshua.Span{c.i, c.j}, c.nAdded, c.nMerged, c.nPruned)
}
