/*
Package hypergraph holds the translation forest the chart parser produces.

The forest is an and-or graph: HGNodes are or-nodes (choice points labeled
with a span, a nonterminal and a DP state), HyperEdges are and-nodes (one
derivation option, a rule plus ordered tail nodes). Nodes are shared
between derivations; no cycles arise because spans strictly decrease along
tails.
*/
package hypergraph

import (
	"fmt"

	"github.com/cnf/structhash"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/corpus"
	"github.com/Dearborn-Open-AI/joshua/grammar"
)

// HGNode is an or-node: all derivations of one nonterminal over one span
// that agree on their DP states.
type HGNode struct {
	I, J     int
	LHS      joshua.SymID     // unmarked nonterminal id
	States   []joshua.DPState // DP states, in feature-function order
	Incoming []*HyperEdge
	BestEdge *HyperEdge // incoming edge with the best viterbi score
	Score    float64    // viterbi (inside) score of BestEdge
	Estimate float64    // Score plus future-cost estimate, used for pruning
	Serial   int        // chart-wide insertion number, breaks ordering ties
}

// HyperEdge is an and-node: one way of building its head node.
type HyperEdge struct {
	Rule       *grammar.Rule
	Tails      []*HGNode      // ordered antecedents, nil for terminal rules
	SourcePath []joshua.SymID // lattice arc labels and marked nonterminals matched by the rule
	Transition float64        // score contributed by this edge alone
}

// Signature identifies a node within its cell: nodes with equal LHS and
// equal DP-state signatures are merged. The span is not part of the
// signature, cells are per-span anyway.
func Signature(lhs joshua.SymID, states []joshua.DPState) string {
	sigs := make([]string, len(states))
	for k, s := range states {
		sigs[k] = s.Signature()
	}
	h, err := structhash.Hash(struct {
		LHS  joshua.SymID
		Sigs []string
	}{LHS: lhs, Sigs: sigs}, 1)
	if err != nil { // no reason for this to happen, but API demands it
		panic(err)
	}
	return h
}

// Signature returns the node's merge identity.
func (n *HGNode) Signature() string {
	return Signature(n.LHS, n.States)
}

// AddEdge attaches an incoming edge and keeps the viterbi bookkeeping.
// The edge's score is its transition plus the tail nodes' viterbi scores.
func (n *HGNode) AddEdge(e *HyperEdge, score float64) {
	n.Incoming = append(n.Incoming, e)
	if n.BestEdge == nil || score > n.Score {
		n.BestEdge = e
		n.Score = score
	}
}

func (n *HGNode) String() string {
	return fmt.Sprintf("node[%d %s]", n.LHS, joshua.Span{n.I, n.J})
}

// --- HyperGraph ------------------------------------------------------------

// HyperGraph is the decoding result, rooted at the single best goal node.
type HyperGraph struct {
	Root      *HGNode
	GoalBin   []*HGNode // all goal nodes of the full span
	NodeCount int
	EdgeCount int
}

// ViterbiScore returns the best derivation score.
func (hg *HyperGraph) ViterbiScore() float64 {
	return hg.Root.Score
}

// ViterbiDerivation renders the 1-best target string by following best
// edges from the root. Target-side entries -k substitute the k-th tail.
func (hg *HyperGraph) ViterbiDerivation(vocab *corpus.Vocabulary) string {
	words := viterbiWords(hg.Root, vocab, nil)
	s := ""
	for i, w := range words {
		if i > 0 {
			s += " "
		}
		s += w
	}
	return s
}

func viterbiWords(n *HGNode, vocab *corpus.Vocabulary, out []string) []string {
	e := n.BestEdge
	if e == nil {
		return out
	}
	if e.Rule == nil { // goal edge: pass through the single tail
		return viterbiWords(e.Tails[0], vocab, out)
	}
	for _, t := range e.Rule.Target {
		if t < 0 {
			out = viterbiWords(e.Tails[-t-1], vocab, out)
		} else {
			out = append(out, vocab.String(t))
		}
	}
	return out
}
