package grammar

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/corpus"
)

// Reader for the textual grammar format. One rule per line:
//
//    [X] ||| a [Y] b ||| b' [Y,1] ||| 0.5 0.3
//
// Source nonterminals are written [N]; target-side nonterminals carry a
// 1-based co-index [N,k] referencing the k-th source nonterminal. Empty
// lines and lines starting with '#' are skipped.

const fieldSep = "|||"

// Read parses a grammar from r, interning symbols into the vocabulary.
func Read(r io.Reader, vocab *corpus.Vocabulary, spanLimit int) (*MemoryGrammar, error) {
	g := NewMemoryGrammar(spanLimit)
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scan.Scan() {
		lineno++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rule, err := ParseRule(line, vocab)
		if err != nil {
			return nil, errors.Wrapf(err, "grammar line %d", lineno)
		}
		g.AddRule(rule)
	}
	if err := scan.Err(); err != nil {
		return nil, errors.Wrap(err, "reading grammar")
	}
	tracer().Infof("read grammar with %d rules", g.Size())
	return g, nil
}

// ParseRule parses a single grammar line.
func ParseRule(line string, vocab *corpus.Vocabulary) (*Rule, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) < 3 {
		return nil, errors.Errorf("expected at least 3 fields, got %d", len(fields))
	}
	lhsField := strings.TrimSpace(fields[0])
	if !isNonterminalToken(lhsField) {
		return nil, errors.Errorf("malformed LHS %q", lhsField)
	}
	lhs := vocab.ID(ntName(lhsField))
	source, srcArity, err := parseSourceSide(fields[1], vocab)
	if err != nil {
		return nil, err
	}
	target, err := parseTargetSide(fields[2], srcArity, vocab)
	if err != nil {
		return nil, err
	}
	var scores []float64
	if len(fields) > 3 {
		for _, f := range strings.Fields(fields[3]) {
			s, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "bad score %q", f)
			}
			scores = append(scores, s)
		}
	}
	return NewRule(lhs, source, target, scores), nil
}

func parseSourceSide(field string, vocab *corpus.Vocabulary) ([]joshua.SymID, int, error) {
	var syms []joshua.SymID
	arity := 0
	for _, tok := range strings.Fields(field) {
		if isNonterminalToken(tok) {
			syms = append(syms, vocab.ID(ntName(tok)).Mark())
			arity++
		} else {
			syms = append(syms, vocab.ID(tok))
		}
	}
	if len(syms) == 0 {
		return nil, 0, errors.New("empty source side")
	}
	return syms, arity, nil
}

func parseTargetSide(field string, srcArity int, vocab *corpus.Vocabulary) ([]joshua.SymID, error) {
	var syms []joshua.SymID
	for _, tok := range strings.Fields(field) {
		if isNonterminalToken(tok) {
			name := ntName(tok)
			index := 0
			if comma := strings.IndexByte(name, ','); comma >= 0 {
				k, err := strconv.Atoi(name[comma+1:])
				if err != nil {
					return nil, errors.Errorf("bad nonterminal co-index in %q", tok)
				}
				index = k
			} else {
				index = ntCount(syms) + 1
			}
			if index < 1 || index > srcArity {
				return nil, errors.Errorf("co-index %d out of range in %q", index, tok)
			}
			syms = append(syms, joshua.SymID(-index))
		} else {
			syms = append(syms, vocab.ID(tok))
		}
	}
	return syms, nil
}

// ntCount counts the nonterminal references seen so far, for rules that
// omit explicit co-indexes (then order is monotone).
func ntCount(syms []joshua.SymID) int {
	n := 0
	for _, s := range syms {
		if s < 0 {
			n++
		}
	}
	return n
}

func isNonterminalToken(tok string) bool {
	return len(tok) > 2 && tok[0] == '[' && tok[len(tok)-1] == ']'
}

func ntName(tok string) string {
	return tok[1 : len(tok)-1]
}

// --- Glue grammar ----------------------------------------------------------

// NewGlueGrammar builds the standard monotone glue grammar
//
//    [GOAL] ||| [X]        ||| [X,1]
//    [GOAL] ||| [GOAL] [X] ||| [GOAL,1] [X,2]
//
// guaranteeing that every span combination can be stitched together under
// the goal symbol. Glue rules carry an all-zero feature vector and are not
// span-limited.
func NewGlueGrammar(vocab *corpus.Vocabulary, defaultNT string) *MemoryGrammar {
	g := NewMemoryGrammar(0)
	goal := vocab.ID(corpus.GoalSym)
	x := vocab.ID(defaultNT)
	g.AddRule(NewRule(goal,
		[]joshua.SymID{x.Mark()},
		[]joshua.SymID{-1}, nil))
	g.AddRule(NewRule(goal,
		[]joshua.SymID{goal.Mark(), x.Mark()},
		[]joshua.SymID{-1, -2}, nil))
	return g
}
