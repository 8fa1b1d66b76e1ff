/*
Package segment wraps one unit of decoder input: a sentence or word
lattice, its integerized form, and an optional forced target string.
*/
package segment

import (
	"strings"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/corpus"
	"github.com/Dearborn-Open-AI/joshua/lattice"
)

// Sentence is one input segment. The lattice view is the canonical form;
// plain token input is wrapped into a linear lattice at construction.
type Sentence struct {
	ID     int
	Source string
	lat    *lattice.Lattice
	target []joshua.SymID // forced decoding target, nil if unconstrained
}

// NewSentence integerizes an input line. Lines in Python lattice format
// are parsed as lattices; anything else is whitespace-tokenized.
func NewSentence(id int, line string, vocab *corpus.Vocabulary) (*Sentence, error) {
	s := &Sentence{ID: id, Source: line}
	if lattice.IsPLF(line) {
		lat, err := lattice.FromPLF(line, vocab)
		if err != nil {
			return nil, err
		}
		s.lat = lat
		return s, nil
	}
	s.lat = lattice.FromTokens(vocab.IDs(strings.Fields(line)))
	return s, nil
}

// FromLattice wraps a pre-built lattice.
func FromLattice(id int, lat *lattice.Lattice) *Sentence {
	return &Sentence{ID: id, lat: lat}
}

// Lattice returns the integerized input lattice.
func (s *Sentence) Lattice() *lattice.Lattice {
	return s.lat
}

// Length returns the source span length n.
func (s *Sentence) Length() int {
	return s.lat.Width()
}

// HasPath reports whether the lattice connects positions i and j.
func (s *Sentence) HasPath(i, j int) bool {
	return s.lat.HasPath(i, j)
}

// SetTarget installs a forced target string, enabling constrained decoding.
func (s *Sentence) SetTarget(words []joshua.SymID) {
	s.target = words
}

// Target returns the forced target, or nil.
func (s *Sentence) Target() []joshua.SymID {
	return s.target
}

// IsConstrained reports whether a forced target is present.
func (s *Sentence) IsConstrained() bool {
	return s.target != nil
}
