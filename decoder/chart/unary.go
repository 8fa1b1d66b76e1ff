package chart

import (
	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/decoder/ff"
	"github.com/Dearborn-Open-AI/joshua/decoder/hypergraph"
)

// addUnaryNodes closes the cell under unary rules with an agenda. Every
// node on the agenda is expanded, starting with all nodes already in the
// cell; nodes created during closure are queued only while their lhs is
// unseen, so a cheaper unary cycle discovered later is dropped. The cutoff assumes unary chain costs obey a rough
// triangle inequality — a pragmatic termination condition, not a formal
// guarantee.
func (ch *Chart) addUnaryNodes(i, j int) {
	cell := ch.cellIfPresent(i, j)
	if cell == nil {
		return
	}
	queue := append([]*hypergraph.HGNode{}, cell.Nodes()...)
	seen := make(map[joshua.SymID]bool)
	queued := make(map[*hypergraph.HGNode]bool)
	for _, node := range queue {
		queued[node] = true
	}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		seen[node.LHS] = true
		for _, g := range ch.grammars {
			if !g.HasRuleForSpan(i, j, ch.lattice.Distance(i, j)) {
				continue
			}
			child := g.TrieRoot().Match(node.LHS.Mark())
			if child == nil {
				continue
			}
			rc := child.Collection()
			if rc == nil || rc.Size() == 0 || rc.Arity() != 1 {
				continue
			}
			tails := []*hypergraph.HGNode{node}
			for _, rule := range rc.Sorted() {
				result := ff.ComputeNodeResult(ch.ffs, rule, tails, i, j, nil)
				if !ch.stateLegal(result.States) {
					continue
				}
				resNode := cell.AddHyperEdge(result, rule, tails, nil, false)
				if resNode != nil && !seen[resNode.LHS] && !queued[resNode] {
					queued[resNode] = true
					queue = append(queue, resNode)
				}
			}
		}
	}
	tracer().Debugf("unary closure %v: %d lhs expanded", joshua.Span{i, j}, len(seen))
}
