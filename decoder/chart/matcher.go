package chart

import (
	"regexp"
	"sort"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/corpus"
	"github.com/Dearborn-Open-AI/joshua/grammar"
)

// NonterminalMatcher links trie edges to chart items: given a trie node
// and the lhs of an antecedent supernode, it returns the trie children
// reachable by consuming that nonterminal. Deterministic and pure.
type NonterminalMatcher interface {
	Match(node *grammar.TrieNode, lhs joshua.SymID) []*grammar.TrieNode
}

// NewMatcher selects the matcher variant for a grammar.
func NewMatcher(g grammar.Grammar, vocab *corpus.Vocabulary) NonterminalMatcher {
	if g.IsRegexp() {
		return &regexpMatcher{
			vocab:    vocab,
			patterns: make(map[joshua.SymID]*regexp.Regexp),
			verdicts: make(map[[2]joshua.SymID]bool),
		}
	}
	return exactMatcher{}
}

// exactMatcher requires the trie edge label to equal the antecedent's lhs.
type exactMatcher struct{}

// Match is part of the NonterminalMatcher interface.
func (exactMatcher) Match(node *grammar.TrieNode, lhs joshua.SymID) []*grammar.TrieNode {
	if child := node.Match(lhs.Mark()); child != nil {
		return []*grammar.TrieNode{child}
	}
	return nil
}

// regexpMatcher treats nonterminal edge labels as regular expressions over
// the textual form of the antecedent's lhs. Compiled patterns and match
// verdicts are cached.
type regexpMatcher struct {
	vocab    *corpus.Vocabulary
	patterns map[joshua.SymID]*regexp.Regexp
	verdicts map[[2]joshua.SymID]bool
}

// Match is part of the NonterminalMatcher interface.
func (m *regexpMatcher) Match(node *grammar.TrieNode, lhs joshua.SymID) []*grammar.TrieNode {
	type edge struct {
		label joshua.SymID
		child *grammar.TrieNode
	}
	var edges []edge
	node.EachEdge(func(label joshua.SymID, child *grammar.TrieNode) {
		if label.IsNonterminal() && m.matches(label, lhs) {
			edges = append(edges, edge{label, child})
		}
	})
	sort.Slice(edges, func(a, b int) bool { return edges[a].label > edges[b].label })
	children := make([]*grammar.TrieNode, len(edges))
	for k, e := range edges {
		children[k] = e.child
	}
	return children
}

func (m *regexpMatcher) matches(label, lhs joshua.SymID) bool {
	key := [2]joshua.SymID{label, lhs}
	if verdict, ok := m.verdicts[key]; ok {
		return verdict
	}
	re, ok := m.patterns[label]
	if !ok {
		compiled, err := regexp.Compile("^" + m.vocab.String(label) + "$")
		if err != nil {
			tracer().Errorf("bad nonterminal pattern %q: %v", m.vocab.String(label), err)
		}
		re = compiled // nil for uncompilable patterns, matches nothing
		m.patterns[label] = re
	}
	verdict := re != nil && re.MatchString(m.vocab.String(lhs))
	m.verdicts[key] = verdict
	return verdict
}
