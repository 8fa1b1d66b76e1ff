package chart

import (
	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/Dearborn-Open-AI/joshua/decoder/ff"
	"github.com/Dearborn-Open-AI/joshua/decoder/hypergraph"
	"github.com/Dearborn-Open-AI/joshua/grammar"
)

// The cube for a dot node with R antecedents is an (R+1)-dimensional
// lattice of rule × tail choices. Expansion is best-first from the corner
// [1,1,…,1]; no monotonicity of feature scores is assumed, so a visited
// set keeps the same combination — reachable along multiple axes — from
// being pushed twice.

// cubeState is one position in the cube: ranks[0] indexes the sorted rule
// list (1-based), ranks[k>0] indexes antecedents[k-1].Nodes.
type cubeState struct {
	dot    *DotNode
	rules  []*grammar.Rule
	ranks  []int
	tails  []*hypergraph.HGNode
	result ff.NodeResult
	seq    int // heap insertion counter, breaks score ties
}

func (s *cubeState) rule() *grammar.Rule {
	return s.rules[s.ranks[0]-1]
}

// identity implements state equality: ranks, rule list and dot node
// coincide. The dot serial covers both the rule list and the antecedents.
func (s *cubeState) identity() string {
	h, err := structhash.Hash(struct {
		Dot   int
		Ranks []int
	}{Dot: s.dot.serial, Ranks: s.ranks}, 1)
	if err != nil {
		panic(err)
	}
	return h
}

// CubePruneEngine pops up to popLimit ranked candidates for one span and
// inserts the accepted ones into the target cell.
type CubePruneEngine struct {
	chart   *Chart
	cell    *Cell
	heap    *binaryheap.Heap
	visited map[string]bool
	seq     int
	pops    int
}

func newCubePruneEngine(chart *Chart, i, j int) *CubePruneEngine {
	cp := &CubePruneEngine{
		chart:   chart,
		cell:    chart.Cell(i, j),
		visited: make(map[string]bool),
	}
	cp.heap = binaryheap.NewWith(func(a, b interface{}) int {
		sa, sb := a.(*cubeState), b.(*cubeState)
		if sa.result.PruningScore() != sb.result.PruningScore() {
			if sa.result.PruningScore() > sb.result.PruningScore() {
				return -1
			}
			return 1
		}
		return sa.seq - sb.seq
	})
	return cp
}

// seed primes the engine from one dot node. Terminal rules (arity 0) skip
// the cube entirely: every rule is emitted to the cell directly, gated
// only by the state constraint.
func (cp *CubePruneEngine) seed(d *DotNode) {
	rc := d.trieNode.Collection()
	if rc == nil || rc.Size() == 0 {
		return
	}
	rules := rc.Sorted()
	if len(d.antecedents) == 0 {
		for _, rule := range rules {
			result := ff.ComputeNodeResult(cp.chart.ffs, rule, nil, d.i, d.j, d.sourcePath)
			if !cp.chart.stateLegal(result.States) {
				continue
			}
			cp.cell.AddHyperEdge(result, rule, nil, d.sourcePath, false)
		}
		return
	}
	ranks := make([]int, len(d.antecedents)+1)
	for k := range ranks {
		ranks[k] = 1
	}
	cp.push(d, rules, ranks)
}

// push computes the result for a cube position and offers it to the heap,
// unless the position was visited before or a rank is out of bounds.
func (cp *CubePruneEngine) push(d *DotNode, rules []*grammar.Rule, ranks []int) {
	if ranks[0] > len(rules) {
		return
	}
	tails := make([]*hypergraph.HGNode, len(d.antecedents))
	for k, sn := range d.antecedents {
		if ranks[k+1] > len(sn.Nodes) {
			return
		}
		tails[k] = sn.Nodes[ranks[k+1]-1]
	}
	s := &cubeState{dot: d, rules: rules, ranks: ranks, tails: tails}
	id := s.identity()
	if cp.visited[id] {
		return
	}
	cp.visited[id] = true
	rule := s.rule()
	s.result = ff.ComputeNodeResult(cp.chart.ffs, rule, tails, d.i, d.j, d.sourcePath)
	s.seq = cp.seq
	cp.seq++
	cp.heap.Push(s)
}

// run pops candidates best-first until the heap drains or the pop limit
// is reached; 0 means unbounded. Each accepted pop becomes a hyperedge in
// the cell, and the pop's neighbors along every cube axis are pushed.
func (cp *CubePruneEngine) run() {
	popLimit := cp.chart.config.PopLimit
	for !cp.heap.Empty() {
		if popLimit > 0 && cp.pops >= popLimit {
			break
		}
		v, _ := cp.heap.Pop()
		s := v.(*cubeState)
		cp.pops++
		if cp.chart.stateLegal(s.result.States) {
			cp.cell.AddHyperEdge(s.result, s.rule(), s.tails, s.dot.sourcePath, true)
		}
		for k := range s.ranks {
			next := append([]int{}, s.ranks...)
			next[k]++
			cp.push(s.dot, s.rules, next)
		}
	}
	tracer().Debugf("cube pruning %v: %d pops, %d states", cp.cell.Span(), cp.pops, cp.seq)
}
