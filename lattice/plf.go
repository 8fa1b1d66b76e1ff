package lattice

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/Dearborn-Open-AI/joshua"
	"github.com/Dearborn-Open-AI/joshua/corpus"
)

// Reader for the Python lattice format (PLF). A PLF lattice is a tuple of
// nodes; each node is a tuple of arcs; each arc is a triple
//
//    ('label', cost, distance)
//
// where distance counts nodes forward to the arc's head. Example with two
// alternative first words:
//
//    ((('ein',0.5,1),('in',0.5,1)),(('haus',1.0,1),),)
//
// The final node carries no tuple of its own.

// PLF token categories.
const (
	plfLParen int = iota + 1
	plfRParen
	plfComma
	plfString
	plfNumber
)

// plfLexer is compiled once; lexmachine DFA construction is not free.
var plfLexer = newPLFLexer()

func newPLFLexer() *lexmachine.Lexer {
	lexer := lexmachine.NewLexer()
	lexer.Add([]byte(`\(`), plfToken(plfLParen))
	lexer.Add([]byte(`\)`), plfToken(plfRParen))
	lexer.Add([]byte(`,`), plfToken(plfComma))
	lexer.Add([]byte(`'[^']*'`), plfToken(plfString))
	lexer.Add([]byte(`-?[0-9]+(\.[0-9]+)?([eE]-?[0-9]+)?`), plfToken(plfNumber))
	lexer.Add([]byte(`( |\t|\n|\r)+`), skipToken)
	if err := lexer.Compile(); err != nil {
		panic(errors.Wrap(err, "error compiling PLF DFA"))
	}
	return lexer
}

// plfToken is a pre-defined action which wraps a scanned match into a token.
func plfToken(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// skipToken is a pre-defined action which ignores the scanned match.
func skipToken(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// IsPLF guesses whether an input line is in Python lattice format.
func IsPLF(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "((")
}

// FromPLF parses a PLF line into a lattice, interning word labels into the
// vocabulary.
func FromPLF(line string, vocab *corpus.Vocabulary) (*Lattice, error) {
	scan, err := plfLexer.Scanner([]byte(line))
	if err != nil {
		return nil, errors.Wrap(err, "cannot scan PLF input")
	}
	p := &plfParser{scanner: scan, vocab: vocab}
	p.next()
	nodes, err := p.parseLattice()
	if err != nil {
		return nil, err
	}
	return newLattice(nodes), nil
}

type plfParser struct {
	scanner *lexmachine.Scanner
	vocab   *corpus.Vocabulary
	tok     *lexmachine.Token // lookahead, nil at EOF
}

func (p *plfParser) next() {
	tok, err, eof := p.scanner.Next()
	for err != nil {
		if ui, is := err.(*machines.UnconsumedInput); is {
			p.scanner.TC = ui.FailTC
		}
		tracer().Errorf("PLF scan error: %v", err)
		tok, err, eof = p.scanner.Next()
	}
	if eof {
		p.tok = nil
		return
	}
	p.tok = tok.(*lexmachine.Token)
}

func (p *plfParser) expect(id int) (string, error) {
	if p.tok == nil {
		return "", errors.New("unexpected end of PLF input")
	}
	if p.tok.Type != id {
		return "", errors.Errorf("unexpected PLF token %q", string(p.tok.Lexeme))
	}
	lexeme := string(p.tok.Lexeme)
	p.next()
	return lexeme, nil
}

// accept consumes the lookahead if it matches.
func (p *plfParser) accept(id int) bool {
	if p.tok != nil && p.tok.Type == id {
		p.next()
		return true
	}
	return false
}

// lattice = '(' node… ')'
func (p *plfParser) parseLattice() ([]Node, error) {
	if _, err := p.expect(plfLParen); err != nil {
		return nil, err
	}
	var nodes []Node
	for p.tok != nil && p.tok.Type == plfLParen {
		node := Node{ID: len(nodes)}
		arcs, err := p.parseNode(len(nodes))
		if err != nil {
			return nil, err
		}
		node.Outgoing = arcs
		nodes = append(nodes, node)
		p.accept(plfComma)
	}
	if _, err := p.expect(plfRParen); err != nil {
		return nil, err
	}
	// the final node is implicit in PLF
	nodes = append(nodes, Node{ID: len(nodes)})
	return nodes, nil
}

// node = '(' arc… ')'
func (p *plfParser) parseNode(tail int) ([]Arc, error) {
	if _, err := p.expect(plfLParen); err != nil {
		return nil, err
	}
	var arcs []Arc
	for p.tok != nil && p.tok.Type == plfLParen {
		arc, err := p.parseArc(tail)
		if err != nil {
			return nil, err
		}
		arcs = append(arcs, arc)
		p.accept(plfComma)
	}
	if _, err := p.expect(plfRParen); err != nil {
		return nil, err
	}
	return arcs, nil
}

// arc = '(' label ',' cost ',' distance ')'
func (p *plfParser) parseArc(tail int) (Arc, error) {
	var arc Arc
	if _, err := p.expect(plfLParen); err != nil {
		return arc, err
	}
	label, err := p.expect(plfString)
	if err != nil {
		return arc, err
	}
	arc.Label = joshua.SymID(p.vocab.ID(strings.Trim(label, "'")))
	if _, err = p.expect(plfComma); err != nil {
		return arc, err
	}
	costLexeme, err := p.expect(plfNumber)
	if err != nil {
		return arc, err
	}
	if arc.Cost, err = strconv.ParseFloat(costLexeme, 64); err != nil {
		return arc, errors.Wrapf(err, "bad PLF arc cost %q", costLexeme)
	}
	if _, err = p.expect(plfComma); err != nil {
		return arc, err
	}
	distLexeme, err := p.expect(plfNumber)
	if err != nil {
		return arc, err
	}
	dist, err := strconv.Atoi(distLexeme)
	if err != nil || dist < 1 {
		return arc, errors.Errorf("bad PLF arc distance %q", distLexeme)
	}
	arc.Head = tail + dist
	p.accept(plfComma)
	if _, err = p.expect(plfRParen); err != nil {
		return arc, err
	}
	return arc, nil
}
