package joshua

import "fmt"

// --- Spans ------------------------------------------------------------

// Span is a half-open run of source positions: [i…j) covers input tokens
// i…j-1. Chart cells, hypergraph nodes and partial rule matches all carry
// one. The CKY driver works through spans by increasing width; whether a
// span is feasible at all depends on the input lattice, not on the span
// itself (see lattice.Lattice.HasPath).
type Span [2]int

// Start returns the first source position covered.
func (s Span) Start() int {
	return s[0]
}

// End returns the position just behind the last covered token.
func (s Span) End() int {
	return s[1]
}

// Width returns the number of source positions covered — the outer
// iteration order of the chart.
func (s Span) Width() int {
	return s[1] - s[0]
}

func (s Span) String() string {
	return fmt.Sprintf("[%d…%d)", s[0], s[1])
}

// --- DP states --------------------------------------------------------

// DPState is an opaque dynamic-programming state produced by a feature
// function, e.g. language-model boundary words. Hypergraph nodes within a
// chart cell are merged when their left-hand sides and DP-state signatures
// coincide.
type DPState interface {
	// Signature is a stable identity; equal signatures mean equal states.
	Signature() string
}

// --- Symbols ----------------------------------------------------------

// SymID is an integerized grammar symbol, issued by a corpus.Vocabulary.
// Terminal occurrences carry the vocabulary id as is; nonterminal
// occurrences within rule right-hand sides are marked by negating the id.
type SymID int

// IsNonterminal is true for symbol occurrences marked as nonterminals.
func (id SymID) IsNonterminal() bool {
	return id < 0
}

// Mark returns the nonterminal-marked form of a vocabulary id.
func (id SymID) Mark() SymID {
	if id > 0 {
		return -id
	}
	return id
}

// Unmark strips the nonterminal marker, yielding the vocabulary id.
func (id SymID) Unmark() SymID {
	if id < 0 {
		return -id
	}
	return id
}
