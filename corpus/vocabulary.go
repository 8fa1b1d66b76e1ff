/*
Package corpus provides the vocabulary: a bijection between symbol strings
and integer ids.

Ids are issued during grammar and input loading; decoding itself only ever
reads the mapping. The vocabulary is therefore guarded by a read-write mutex
and shared as an injected handle, never as process-global state.
*/
package corpus

import (
	"fmt"
	"sync"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'joshua.decoder'.
func tracer() tracing.Trace {
	return tracing.Select("joshua.decoder")
}

// Reserved symbol strings. They are interned into every vocabulary on
// creation, so their ids are stable across grammars.
const (
	StartSym = "<s>"
	StopSym  = "</s>"
	GoalSym  = "GOAL"
	UnkSym   = "<unk>"
)

// Vocabulary maps symbol strings to integer ids and back. Id 0 is never
// issued; it is reserved as a null symbol.
type Vocabulary struct {
	mu      sync.RWMutex
	ids     map[string]joshua.SymID
	strings []string // index = id
}

// NewVocabulary creates a vocabulary with the reserved symbols interned.
func NewVocabulary() *Vocabulary {
	v := &Vocabulary{
		ids:     make(map[string]joshua.SymID),
		strings: make([]string, 1, 64), // strings[0] = null symbol
	}
	v.ID(UnkSym)
	v.ID(StartSym)
	v.ID(StopSym)
	v.ID(GoalSym)
	return v
}

// ID returns the id for a symbol string, interning it if necessary.
func (v *Vocabulary) ID(s string) joshua.SymID {
	v.mu.RLock()
	id, ok := v.ids[s]
	v.mu.RUnlock()
	if ok {
		return id
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if id, ok = v.ids[s]; ok { // raced with another writer
		return id
	}
	id = joshua.SymID(len(v.strings))
	v.ids[s] = id
	v.strings = append(v.strings, s)
	return id
}

// String returns the symbol string for an id. Nonterminal-marked ids are
// unmarked first. Unknown ids map to the null string.
func (v *Vocabulary) String(id joshua.SymID) string {
	id = id.Unmark()
	v.mu.RLock()
	defer v.mu.RUnlock()
	if int(id) >= len(v.strings) {
		return ""
	}
	return v.strings[id]
}

// Known reports whether a symbol string has been interned.
func (v *Vocabulary) Known(s string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.ids[s]
	return ok
}

// Size returns the number of interned symbols, including the null symbol.
func (v *Vocabulary) Size() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.strings)
}

// IDs converts a slice of symbol strings, interning as needed.
func (v *Vocabulary) IDs(words []string) []joshua.SymID {
	ids := make([]joshua.SymID, len(words))
	for i, w := range words {
		ids[i] = v.ID(w)
	}
	return ids
}

// Phrase renders a sequence of ids as a space-separated string, a debugging
// helper used all over the decoder traces.
func (v *Vocabulary) Phrase(ids []joshua.SymID) string {
	s := ""
	for i, id := range ids {
		if i > 0 {
			s += " "
		}
		if id.IsNonterminal() {
			s += fmt.Sprintf("[%s]", v.String(id))
		} else {
			s += v.String(id)
		}
	}
	return s
}
