package grammar

import (
	"github.com/Dearborn-Open-AI/joshua"
)

// TrieNode is one state of the prefix automaton indexing rules by their
// source RHS. Edges are labeled with terminal ids or marked nonterminal
// ids. A node optionally carries the collection of rules whose source RHS
// ends here.
type TrieNode struct {
	children   map[joshua.SymID]*TrieNode
	collection *RuleCollection
}

// Match follows the edge with the given label, or returns nil.
func (t *TrieNode) Match(label joshua.SymID) *TrieNode {
	if t.children == nil {
		return nil
	}
	return t.children[label]
}

// Collection returns the rules ending at this node, or nil.
func (t *TrieNode) Collection() *RuleCollection {
	return t.collection
}

// HasRules reports whether a non-empty rule collection ends here.
func (t *TrieNode) HasRules() bool {
	return t.collection != nil && t.collection.Size() > 0
}

// HasExtensions reports whether any edge leaves this node.
func (t *TrieNode) HasExtensions() bool {
	return len(t.children) > 0
}

// EachEdge calls the mapper for every outgoing edge. Used by the regexp
// nonterminal matcher, which has to inspect all edge labels.
func (t *TrieNode) EachEdge(mapper func(label joshua.SymID, child *TrieNode)) {
	for label, child := range t.children {
		mapper(label, child)
	}
}

// extend returns the child for label, creating it if necessary.
func (t *TrieNode) extend(label joshua.SymID) *TrieNode {
	if t.children == nil {
		t.children = make(map[joshua.SymID]*TrieNode)
	}
	child := t.children[label]
	if child == nil {
		child = &TrieNode{}
		t.children[label] = child
	}
	return child
}

// --- Grammar ---------------------------------------------------------------

// Grammar is the contract the chart parser consumes. Implementations own
// their rules and trie nodes; both outlive any chart built from them.
type Grammar interface {
	// TrieRoot returns the root of the prefix automaton.
	TrieRoot() *TrieNode
	// IsRegexp reports whether nonterminal edge labels are regular
	// expressions rather than exact symbols.
	IsRegexp() bool
	// HasRuleForSpan gates rule application per source span; pathLength
	// is the lattice arc distance of the span.
	HasRuleForSpan(i, j int, pathLength float64) bool
}

// MemoryGrammar is the in-memory Grammar implementation filled by AddRule,
// by the text reader, or by the glue-grammar constructor.
type MemoryGrammar struct {
	root      *TrieNode
	ruleCount int
	spanLimit int  // maximum lattice path length of a span rules of this grammar may cover, 0 = unlimited
	regexp    bool // nonterminal edges are regular expressions
}

// NewMemoryGrammar creates an empty grammar. A spanLimit of 0 leaves rule
// application unrestricted.
func NewMemoryGrammar(spanLimit int) *MemoryGrammar {
	return &MemoryGrammar{root: &TrieNode{}, spanLimit: spanLimit}
}

// SetRegexp marks the grammar's nonterminal edges as regular expressions.
func (g *MemoryGrammar) SetRegexp(b bool) {
	g.regexp = b
}

// TrieRoot is part of the Grammar interface.
func (g *MemoryGrammar) TrieRoot() *TrieNode {
	return g.root
}

// IsRegexp is part of the Grammar interface.
func (g *MemoryGrammar) IsRegexp() bool {
	return g.regexp
}

// HasRuleForSpan is part of the Grammar interface.
func (g *MemoryGrammar) HasRuleForSpan(i, j int, pathLength float64) bool {
	if g.spanLimit <= 0 {
		return true
	}
	return pathLength <= float64(g.spanLimit)
}

// AddRule walks the trie along the rule's source RHS and files the rule at
// the final node.
func (g *MemoryGrammar) AddRule(r *Rule) {
	node := g.root
	for _, sym := range r.Source {
		node = node.extend(sym)
	}
	if node.collection == nil {
		node.collection = &RuleCollection{SourceSide: r.Source}
	}
	node.collection.Add(r)
	g.ruleCount++
}

// Size returns the number of rules added.
func (g *MemoryGrammar) Size() int {
	return g.ruleCount
}

// EstimateScores fixes the sorting estimate of every rule. Call once after
// loading, before handing the grammar to a chart.
func (g *MemoryGrammar) EstimateScores(weights []float64) {
	g.eachCollection(g.root, func(rc *RuleCollection) {
		for _, r := range rc.Rules() {
			r.EstimateScore(weights)
		}
	})
}

func (g *MemoryGrammar) eachCollection(node *TrieNode, mapper func(*RuleCollection)) {
	if node.collection != nil {
		mapper(node.collection)
	}
	for _, child := range node.children {
		g.eachCollection(child, mapper)
	}
}
