package ff

import (
	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/decoder/hypergraph"
	"github.com/Dearborn-Open-AI/joshua/grammar"
)

// RuleScore applies the rule's precomputed feature vector via the estimate
// fixed during grammar preparation. This is usually the first feature in
// every decoder configuration.
type RuleScore struct{}

// Name is part of the FeatureFunction interface.
func (RuleScore) Name() string { return "RuleScore" }

// Transition is part of the FeatureFunction interface.
func (RuleScore) Transition(rule *grammar.Rule, tails []*hypergraph.HGNode, i, j int, sourcePath []joshua.SymID) (float64, joshua.DPState) {
	return rule.Estimate(), nil
}

// FutureCost is part of the FeatureFunction interface.
func (RuleScore) FutureCost(joshua.DPState) float64 { return 0 }

// WordPenalty penalizes each target-side terminal.
type WordPenalty struct {
	Weight float64 // typically negative
}

// Name is part of the FeatureFunction interface.
func (f WordPenalty) Name() string { return "WordPenalty" }

// Transition is part of the FeatureFunction interface.
func (f WordPenalty) Transition(rule *grammar.Rule, tails []*hypergraph.HGNode, i, j int, sourcePath []joshua.SymID) (float64, joshua.DPState) {
	n := 0
	for _, t := range rule.Target {
		if t > 0 {
			n++
		}
	}
	return f.Weight * float64(n), nil
}

// FutureCost is part of the FeatureFunction interface.
func (f WordPenalty) FutureCost(joshua.DPState) float64 { return 0 }

// PhrasePenalty adds a constant per applied rule.
type PhrasePenalty struct {
	Weight float64
}

// Name is part of the FeatureFunction interface.
func (f PhrasePenalty) Name() string { return "PhrasePenalty" }

// Transition is part of the FeatureFunction interface.
func (f PhrasePenalty) Transition(rule *grammar.Rule, tails []*hypergraph.HGNode, i, j int, sourcePath []joshua.SymID) (float64, joshua.DPState) {
	return f.Weight, nil
}

// FutureCost is part of the FeatureFunction interface.
func (f PhrasePenalty) FutureCost(joshua.DPState) float64 { return 0 }
