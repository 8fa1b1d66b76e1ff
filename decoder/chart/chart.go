package chart

import (
	"fmt"
	"math"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/corpus"
	"github.com/Dearborn-Open-AI/joshua/decoder"
	"github.com/Dearborn-Open-AI/joshua/decoder/ff"
	"github.com/Dearborn-Open-AI/joshua/decoder/hypergraph"
	"github.com/Dearborn-Open-AI/joshua/decoder/segment"
	"github.com/Dearborn-Open-AI/joshua/grammar"
	"github.com/Dearborn-Open-AI/joshua/lattice"
)

// Chart is the per-sentence parse chart. It owns every cell and node it
// creates; grammars and feature functions are read-only collaborators and
// outlive it. Single-threaded: parallelism belongs at sentence
// granularity, outside this package.
type Chart struct {
	sentence *segment.Sentence
	lattice  *lattice.Lattice
	ffs      []ff.FeatureFunction
	grammars []grammar.Grammar
	matchers []NonterminalMatcher
	vocab    *corpus.Vocabulary
	config   decoder.Config

	goalSymbolID joshua.SymID
	constraint   ff.StateConstraint

	n         int
	cells     []*Cell // (n+1)² dense, indexed i*(n+1)+j, lazily filled
	dotCharts []*DotChart

	nodeSerial int
	dotSerial  int
}

// New builds a chart for one sentence. Feature functions implementing
// SourceAware receive the sentence here, exactly once.
func New(sentence *segment.Sentence, ffs []ff.FeatureFunction, grammars []grammar.Grammar,
	goalSymbolID joshua.SymID, vocab *corpus.Vocabulary, config decoder.Config) *Chart {
	//
	lat := sentence.Lattice()
	ch := &Chart{
		sentence:     sentence,
		lattice:      lat,
		ffs:          ffs,
		grammars:     grammars,
		vocab:        vocab,
		config:       config,
		goalSymbolID: goalSymbolID.Unmark(),
		n:            lat.Width(),
	}
	ch.cells = make([]*Cell, (ch.n+1)*(ch.n+1))
	ch.matchers = make([]NonterminalMatcher, len(grammars))
	for gi, g := range grammars {
		ch.matchers[gi] = NewMatcher(g, vocab)
	}
	for _, f := range ffs {
		if sa, ok := f.(ff.SourceAware); ok {
			sa.SetSource(sentence)
		}
	}
	if sentence.IsConstrained() { // forced-target decoding
		ch.constraint = ff.NewTargetConstraint(sentence)
	}
	return ch
}

// SetGoalSymbolID overrides the goal symbol.
func (ch *Chart) SetGoalSymbolID(id joshua.SymID) {
	ch.goalSymbolID = id.Unmark()
}

// SetStateConstraint installs a constraint gating hyperedge insertion,
// used for forced-target decoding.
func (ch *Chart) SetStateConstraint(sc ff.StateConstraint) {
	ch.constraint = sc
}

func (ch *Chart) stateLegal(states []joshua.DPState) bool {
	return ch.constraint == nil || ch.constraint.IsLegal(states)
}

// Cell returns the cell for span (i…j), creating it lazily.
func (ch *Chart) Cell(i, j int) *Cell {
	if i < 0 || j > ch.n || i >= j {
		panic(fmt.Sprintf("chart cell for invalid span (%d…%d)", i, j))
	}
	idx := i*(ch.n+1) + j
	if ch.cells[idx] == nil {
		ch.cells[idx] = newCell(ch, i, j)
	}
	return ch.cells[idx]
}

// cellIfPresent returns the cell for (i…j) without creating it.
func (ch *Chart) cellIfPresent(i, j int) *Cell {
	return ch.cells[i*(ch.n+1)+j]
}

func (ch *Chart) nextNodeSerial() int {
	ch.nodeSerial++
	return ch.nodeSerial
}

func (ch *Chart) nextDotSerial() int {
	ch.dotSerial++
	return ch.dotSerial
}

func (ch *Chart) cancelled() bool {
	return ch.config.Cancelled != nil && ch.config.Cancelled()
}

// AddAxiom injects a terminal production directly into the cell at
// (i…j) — the hook the external OOV loader uses.
func (ch *Chart) AddAxiom(i, j int, rule *grammar.Rule, sourcePath []joshua.SymID) *hypergraph.HGNode {
	result := ff.ComputeNodeResult(ch.ffs, rule, nil, i, j, sourcePath)
	return ch.Cell(i, j).AddHyperEdge(result, rule, nil, sourcePath, false)
}

// --- CKY with dot chart ----------------------------------------------------

// Expand parses bottom-up by increasing span width, driving one dot chart
// per grammar. Returns the goal-rooted hypergraph, or nil when no
// derivation covers the input.
func (ch *Chart) Expand() *hypergraph.HyperGraph {
	ch.dotCharts = make([]*DotChart, len(ch.grammars))
	for gi, g := range ch.grammars {
		ch.dotCharts[gi] = newDotChart(ch, g, ch.matchers[gi])
		ch.dotCharts[gi].seedRootItems()
	}
	for width := 1; width <= ch.n; width++ {
		for i := 0; i+width <= ch.n; i++ {
			j := i + width
			if ch.cancelled() {
				tracer().Infof("decoding cancelled at span %v", joshua.Span{i, j})
				return nil
			}
			if math.IsInf(ch.lattice.Distance(i, j), 1) {
				continue // path-infeasible span
			}
			for _, dc := range ch.dotCharts {
				dc.expandDotCell(i, j)
			}
			ch.completeSpan(i, j)
			ch.addUnaryNodes(i, j)
			for _, dc := range ch.dotCharts {
				dc.startDotItems(i, j)
			}
			if cell := ch.cellIfPresent(i, j); cell != nil {
				cell.SortedNodes()
			}
		}
	}
	return ch.assembleGoal()
}

// completeSpan collects the dot nodes terminating at (i…j) whose trie node
// holds rules, and runs one cube-pruning round over them.
func (ch *Chart) completeSpan(i, j int) {
	engine := newCubePruneEngine(ch, i, j)
	for gi, dc := range ch.dotCharts {
		if !ch.grammars[gi].HasRuleForSpan(i, j, ch.lattice.Distance(i, j)) {
			continue
		}
		for _, d := range dc.dotNodesAt(i, j) {
			if d.trieNode.HasRules() {
				engine.seed(d)
			}
		}
	}
	engine.run()
}

// --- CKY+ without dot chart ------------------------------------------------

// ExpandSansDotChart parses without dot-chart bookkeeping: rule matches
// over each span are enumerated in place by walking the tries against the
// lattice and the already-completed cells.
func (ch *Chart) ExpandSansDotChart() *hypergraph.HyperGraph {
	for i := ch.n - 1; i >= 0; i-- {
		for j := i + 1; j <= ch.n; j++ {
			if ch.cancelled() {
				tracer().Infof("decoding cancelled at span %v", joshua.Span{i, j})
				return nil
			}
			if !ch.lattice.HasPath(i, j) {
				continue
			}
			engine := newCubePruneEngine(ch, i, j)
			for gi, g := range ch.grammars {
				if !g.HasRuleForSpan(i, j, ch.lattice.Distance(i, j)) {
					continue
				}
				ch.consume(engine, ch.matchers[gi], &DotNode{i: i, j: i, trieNode: g.TrieRoot()}, j)
			}
			engine.run()
			ch.addUnaryNodes(i, j)
			if cell := ch.cellIfPresent(i, j); cell != nil {
				cell.SortedNodes()
			}
		}
	}
	return ch.assembleGoal()
}

// consume recursively extends a partial trie match that has covered
// (d.i…d.j) toward the target position j: across terminal arcs, and
// across nonterminals of completed cells. Matches arriving exactly at j
// with rules attached seed the span's cube engine. A first symbol
// spanning the entire (i…j) is excluded — those are unary applications,
// closed separately.
func (ch *Chart) consume(engine *CubePruneEngine, m NonterminalMatcher, d *DotNode, j int) {
	k := d.j
	if k == j {
		if d.trieNode.HasRules() {
			d.serial = ch.nextDotSerial()
			engine.seed(d)
		}
		return
	}
	for _, arc := range ch.lattice.Node(k).Outgoing {
		if arc.Head > j {
			continue
		}
		if child := d.trieNode.Match(arc.Label); child != nil {
			ch.consume(engine, m, d.extended(arc.Head, child, arc.Label, nil), j)
		}
	}
	for l := k + 1; l <= j; l++ {
		if k == d.i && l == j {
			continue
		}
		cell := ch.cellIfPresent(k, l)
		if cell == nil {
			continue
		}
		for _, sn := range cell.SuperNodes() {
			for _, child := range m.Match(d.trieNode, sn.LHS) {
				ch.consume(engine, m, d.extended(l, child, sn.LHS.Mark(), sn), j)
			}
		}
	}
}

// --- Goal assembly ---------------------------------------------------------

// assembleGoal transitions from the full-span cell to a single synthetic
// goal node: every node labeled with the goal symbol contributes one
// zero-rule hyperedge.
func (ch *Chart) assembleGoal() *hypergraph.HyperGraph {
	cell := ch.cellIfPresent(0, ch.n)
	if cell == nil {
		tracer().Errorf("no complete item in Cell[%d,%d]", 0, ch.n)
		return nil
	}
	goal := &hypergraph.HGNode{I: 0, J: ch.n, LHS: ch.goalSymbolID, Serial: ch.nextNodeSerial()}
	var goalBin []*hypergraph.HGNode
	for _, node := range cell.SortedNodes() {
		if node.LHS != ch.goalSymbolID {
			continue
		}
		goalBin = append(goalBin, node)
		edge := &hypergraph.HyperEdge{Tails: []*hypergraph.HGNode{node}}
		goal.AddEdge(edge, node.Score)
	}
	if len(goalBin) == 0 {
		tracer().Errorf("no complete item in Cell[%d,%d]", 0, ch.n)
		return nil
	}
	hg := &hypergraph.HyperGraph{
		Root:      goal,
		GoalBin:   goalBin,
		NodeCount: ch.nodeSerial,
	}
	tracer().Infof("decoded sentence %d: viterbi score %.4f", ch.sentence.ID, hg.ViterbiScore())
	return hg
}
