package ff

import (
	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/decoder/segment"
)

// TargetYield is implemented by DP states that commit to target-side
// words, as language-model context states do. TargetConstraint inspects
// these during forced-target decoding; states without a yield are not
// constrained.
type TargetYield interface {
	TargetWords() []joshua.SymID
}

// TargetConstraint gates hyperedges against a sentence's forced target:
// a candidate is admitted only while every committed target word sequence
// is a prefix of the forced string, so constrained decoding cannot wander
// off the reference.
type TargetConstraint struct {
	target []joshua.SymID
}

// NewTargetConstraint builds the constraint for a sentence carrying a
// forced target.
func NewTargetConstraint(s *segment.Sentence) *TargetConstraint {
	return &TargetConstraint{target: s.Target()}
}

// IsLegal is part of the StateConstraint interface.
func (tc *TargetConstraint) IsLegal(states []joshua.DPState) bool {
	for _, state := range states {
		y, ok := state.(TargetYield)
		if !ok {
			continue
		}
		if !tc.isPrefix(y.TargetWords()) {
			return false
		}
	}
	return true
}

func (tc *TargetConstraint) isPrefix(words []joshua.SymID) bool {
	if len(words) > len(tc.target) {
		return false
	}
	for k, w := range words {
		if tc.target[k] != w {
			return false
		}
	}
	return true
}
