/*
Package ff defines the feature-scoring interfaces the chart parser
consumes, and a handful of basic feature functions.

Feature functions are read-only during decoding. A feature that needs
per-sentence context implements SourceAware and receives the sentence once,
at chart construction. Heavyweight features (language models, lexical
scores) live outside this module; they plug in through the same interface.
*/
package ff

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/decoder/hypergraph"
	"github.com/Dearborn-Open-AI/joshua/decoder/segment"
	"github.com/Dearborn-Open-AI/joshua/grammar"
)

// tracer traces with key 'joshua.decoder'.
func tracer() tracing.Trace {
	return tracing.Select("joshua.decoder")
}

// FeatureFunction scores hyperedges. Implementations must be pure with
// respect to decoding: equal inputs yield equal scores and states.
type FeatureFunction interface {
	Name() string
	// Transition scores applying rule with the given tail nodes over span
	// (i…j). Stateful features additionally return the resulting DP state;
	// stateless features return nil.
	Transition(rule *grammar.Rule, tails []*hypergraph.HGNode, i, j int, sourcePath []joshua.SymID) (float64, joshua.DPState)
	// FutureCost estimates the outside cost of a DP state this feature
	// produced. Stateless features return 0.
	FutureCost(state joshua.DPState) float64
}

// SourceAware features hold per-sentence context; the chart invokes
// SetSource exactly once, at construction.
type SourceAware interface {
	SetSource(s *segment.Sentence)
}

// StateConstraint gates hyperedge insertion during constrained decoding.
// Must be pure and deterministic.
type StateConstraint interface {
	IsLegal(states []joshua.DPState) bool
}

// ConstraintFunc adapts a plain predicate to the StateConstraint interface.
type ConstraintFunc func(states []joshua.DPState) bool

// IsLegal is part of the StateConstraint interface.
func (f ConstraintFunc) IsLegal(states []joshua.DPState) bool {
	return f(states)
}

// --- Node results ----------------------------------------------------------

// NodeResult is the outcome of scoring one candidate hyperedge.
type NodeResult struct {
	Transition float64          // score added by this edge
	Viterbi    float64          // transition plus tail viterbi scores
	Future     float64          // outside estimate for the resulting states
	States     []joshua.DPState // resulting DP states, feature order
}

// PruningScore orders candidates in the cube-pruning heap.
func (r NodeResult) PruningScore() float64 {
	return r.Viterbi + r.Future
}

// ComputeNodeResult scores a candidate hyperedge: it runs every feature
// function, sums transitions and future estimates, and collects the DP
// states. Pure in all arguments.
func ComputeNodeResult(ffs []FeatureFunction, rule *grammar.Rule, tails []*hypergraph.HGNode,
	i, j int, sourcePath []joshua.SymID) NodeResult {
	//
	var result NodeResult
	for _, f := range ffs {
		score, state := f.Transition(rule, tails, i, j, sourcePath)
		result.Transition += score
		if state != nil {
			result.States = append(result.States, state)
			result.Future += f.FutureCost(state)
		}
	}
	result.Viterbi = result.Transition
	for _, t := range tails {
		result.Viterbi += t.Score
	}
	return result
}
