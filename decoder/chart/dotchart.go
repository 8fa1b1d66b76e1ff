package chart

import (
	"fmt"

	"github.com/cnf/structhash"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/grammar"
)

// DotNode is a partial match of rule right-hand sides over a span: the
// trie node reached from the root, plus one antecedent supernode per
// nonterminal edge walked. Antecedent spans tile (i…j) left to right.
type DotNode struct {
	i, j        int
	trieNode    *grammar.TrieNode
	antecedents []*SuperNode
	sourcePath  []joshua.SymID // arc labels and marked nonterminals from the root
	serial      int            // chart-wide id, identifies the node in cube states
}

// Span returns the covered source span.
func (d *DotNode) Span() joshua.Span {
	return joshua.Span{d.i, d.j}
}

func (d *DotNode) String() string {
	return fmt.Sprintf("dot%s |%d antecedents|", d.Span(), len(d.antecedents))
}

// extended derives a new dot node by consuming either a terminal arc
// (super == nil) or a matched supernode.
func (d *DotNode) extended(j int, trieNode *grammar.TrieNode, label joshua.SymID, super *SuperNode) *DotNode {
	next := &DotNode{
		i:        d.i,
		j:        j,
		trieNode: trieNode,
	}
	next.antecedents = append([]*SuperNode{}, d.antecedents...)
	if super != nil {
		next.antecedents = append(next.antecedents, super)
	}
	next.sourcePath = append(append([]joshua.SymID{}, d.sourcePath...), label)
	return next
}

// identity deduplicates dot nodes within a dot cell by (trieNode,
// antecedents). Supernodes are identified by their cell span and lhs.
func (d *DotNode) identity() string {
	ants := make([][3]int, len(d.antecedents))
	for k, sn := range d.antecedents {
		ants[k] = [3]int{sn.I, sn.J, int(sn.LHS)}
	}
	h, err := structhash.Hash(struct {
		Trie string
		Ants [][3]int
	}{Trie: fmt.Sprintf("%p", d.trieNode), Ants: ants}, 1)
	if err != nil {
		panic(err)
	}
	return h
}

// --- DotChart --------------------------------------------------------------

// dotCell keeps the dot nodes terminating at one span.
type dotCell struct {
	nodes []*DotNode
	index map[string]bool
}

func (dc *dotCell) add(d *DotNode) bool {
	id := d.identity()
	if dc.index == nil {
		dc.index = make(map[string]bool)
	}
	if dc.index[id] {
		return false
	}
	dc.index[id] = true
	dc.nodes = append(dc.nodes, d)
	return true
}

// DotChart is the per-grammar partial-match accumulator for the dot-chart
// CKY strategy.
type DotChart struct {
	chart   *Chart
	g       grammar.Grammar
	matcher NonterminalMatcher
	cells   []*dotCell // (n+1)² dense, indexed i*(n+1)+j
}

func newDotChart(chart *Chart, g grammar.Grammar, matcher NonterminalMatcher) *DotChart {
	n := chart.n
	dc := &DotChart{
		chart:   chart,
		g:       g,
		matcher: matcher,
		cells:   make([]*dotCell, (n+1)*(n+1)),
	}
	return dc
}

func (dc *DotChart) cell(i, j int) *dotCell {
	idx := i*(dc.chart.n+1) + j
	if dc.cells[idx] == nil {
		dc.cells[idx] = &dotCell{}
	}
	return dc.cells[idx]
}

// seedRootItems registers the trie-root dot node at every position, so
// that terminal extension can start anywhere in the lattice.
func (dc *DotChart) seedRootItems() {
	for i := 0; i < dc.chart.n; i++ {
		dc.addDotNode(&DotNode{i: i, j: i, trieNode: dc.g.TrieRoot()})
	}
}

func (dc *DotChart) addDotNode(d *DotNode) {
	d.serial = dc.chart.nextDotSerial()
	if dc.cell(d.i, d.j).add(d) {
		tracer().Debugf("dot chart: added %v", d)
	}
}

// expandDotCell extends every dot node ending at some k < j across the
// remainder (k…j): by a terminal arc k→j, or by a supernode residing in
// the (completed) cell (k…j). The full-span case k == i is deferred to
// startDotItems, which runs after the cell is complete.
func (dc *DotChart) expandDotCell(i, j int) {
	for k := i; k < j; k++ {
		dnodes := dc.cell(i, k).nodes
		if len(dnodes) == 0 {
			continue
		}
		for _, arc := range dc.chart.lattice.Node(k).Outgoing {
			if arc.Head != j {
				continue
			}
			for _, d := range dnodes {
				if child := d.trieNode.Match(arc.Label); child != nil {
					dc.addDotNode(d.extended(j, child, arc.Label, nil))
				}
			}
		}
		if k == i {
			continue
		}
		cell := dc.chart.cellIfPresent(k, j)
		if cell == nil {
			continue
		}
		for _, sn := range cell.SuperNodes() {
			for _, d := range dnodes {
				for _, child := range dc.matcher.Match(d.trieNode, sn.LHS) {
					dc.addDotNode(d.extended(j, child, sn.LHS.Mark(), sn))
				}
			}
		}
	}
}

// startDotItems starts new dot nodes whose first consumed symbol is a
// nonterminal spanning the whole of (i…j). Runs after the span has been
// completed, so the cell's supernodes are final.
func (dc *DotChart) startDotItems(i, j int) {
	cell := dc.chart.cellIfPresent(i, j)
	if cell == nil {
		return
	}
	root := &DotNode{i: i, j: i, trieNode: dc.g.TrieRoot()}
	for _, sn := range cell.SuperNodes() {
		for _, child := range dc.matcher.Match(root.trieNode, sn.LHS) {
			dc.addDotNode(root.extended(j, child, sn.LHS.Mark(), sn))
		}
	}
}

// dotNodesAt returns the dot nodes terminating at (i…j).
func (dc *DotChart) dotNodesAt(i, j int) []*DotNode {
	return dc.cell(i, j).nodes
}
