/*
Package grammar indexes synchronous context-free rules for the decoder.

Rules are held in collections sharing a source right-hand side, and the
collections hang off a trie whose edges are labeled with integerized
terminals and nonterminals. The chart parser walks this trie while it
recognizes rule right-hand sides over input spans.
*/
package grammar

import (
	"fmt"
	"sort"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/corpus"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'joshua.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("joshua.grammar")
}

// Rule is one synchronous rule. Rules are immutable after grammar loading.
//
// Source holds terminals as plain vocabulary ids and nonterminals as
// marked (negated) ids. Target uses plain ids for terminals; a negative
// entry -k references the k-th source nonterminal (1-based), so that
// derivation extraction can substitute the right antecedent.
type Rule struct {
	LHS    joshua.SymID   // unmarked id of the left-hand-side nonterminal
	Source []joshua.SymID // source RHS
	Target []joshua.SymID // target RHS
	Scores []float64      // precomputed feature vector

	arity    int
	estimate float64 // stable sorting score, set by EstimateScore
	serial   int     // insertion order within its collection, breaks sorting ties
}

// NewRule assembles a rule and computes its arity.
func NewRule(lhs joshua.SymID, source, target []joshua.SymID, scores []float64) *Rule {
	r := &Rule{LHS: lhs.Unmark(), Source: source, Target: target, Scores: scores}
	for _, s := range source {
		if s.IsNonterminal() {
			r.arity++
		}
	}
	return r
}

// Arity returns the number of nonterminals in the source RHS.
func (r *Rule) Arity() int {
	return r.arity
}

// EstimateScore fixes the rule's sorting score as the dot product of its
// feature vector with the given weights. Called once during grammar
// preparation; the estimate is stable afterwards.
func (r *Rule) EstimateScore(weights []float64) float64 {
	r.estimate = 0
	for i, s := range r.Scores {
		if i < len(weights) {
			r.estimate += s * weights[i]
		}
	}
	return r.estimate
}

// Estimate returns the score fixed by EstimateScore.
func (r *Rule) Estimate() float64 {
	return r.estimate
}

// Format renders the rule against a vocabulary in the grammar file
// syntax; the chart traces every applied rule this way.
func (r *Rule) Format(vocab *corpus.Vocabulary) string {
	target := ""
	for i, id := range r.Target {
		if i > 0 {
			target += " "
		}
		if id < 0 {
			target += fmt.Sprintf("[%d]", -id)
		} else {
			target += vocab.String(id)
		}
	}
	return fmt.Sprintf("[%s] ||| %s ||| %s", vocab.String(r.LHS), vocab.Phrase(r.Source), target)
}

func (r *Rule) String() string {
	return fmt.Sprintf("rule[%d → %v / %v]", r.LHS, r.Source, r.Target)
}

// --- Rule collections ------------------------------------------------------

// RuleCollection bundles the rules sharing one source RHS pattern, i.e. the
// rules attached to a single trie node.
type RuleCollection struct {
	SourceSide []joshua.SymID // the shared source RHS
	rules      []*Rule
	sorted     bool
}

// Add appends a rule; insertion order is remembered for tie-breaking.
func (rc *RuleCollection) Add(r *Rule) {
	r.serial = len(rc.rules)
	rc.rules = append(rc.rules, r)
	rc.sorted = false
}

// Rules returns the collection's rules. They are in insertion order until
// Sorted is called, which reorders them in place.
func (rc *RuleCollection) Rules() []*Rule {
	return rc.rules
}

// Arity returns the nonterminal count of the shared source side.
func (rc *RuleCollection) Arity() int {
	a := 0
	for _, s := range rc.SourceSide {
		if s.IsNonterminal() {
			a++
		}
	}
	return a
}

// Sorted returns the rules ordered by estimated score, best first. Ties
// keep insertion order. The sorted order is cached until the next Add; the
// estimates are stable after grammar preparation, so the cached order stays
// valid.
func (rc *RuleCollection) Sorted() []*Rule {
	if !rc.sorted {
		sort.SliceStable(rc.rules, func(i, j int) bool {
			if rc.rules[i].estimate != rc.rules[j].estimate {
				return rc.rules[i].estimate > rc.rules[j].estimate
			}
			return rc.rules[i].serial < rc.rules[j].serial
		})
		rc.sorted = true
	}
	return rc.rules
}

// Size returns the number of rules in the collection.
func (rc *RuleCollection) Size() int {
	return len(rc.rules)
}
