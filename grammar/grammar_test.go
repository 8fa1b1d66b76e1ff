package grammar

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/Dearborn-Open-AI/joshua/corpus"
)

func TestParseRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.grammar")
	defer teardown()
	//
	v := corpus.NewVocabulary()
	r, err := ParseRule("[S] ||| das [NP] haus ||| the [NP,1] house ||| -0.5 0.2", v)
	if err != nil {
		t.Fatalf("cannot parse rule: %v", err)
	}
	if r.LHS != v.ID("S") {
		t.Errorf("wrong lhs %d", r.LHS)
	}
	if r.Arity() != 1 {
		t.Errorf("expected arity 1, have %d", r.Arity())
	}
	if len(r.Source) != 3 || !r.Source[1].IsNonterminal() {
		t.Errorf("unexpected source side %v", r.Source)
	}
	if len(r.Target) != 3 || r.Target[1] != -1 {
		t.Errorf("unexpected target side %v", r.Target)
	}
	if len(r.Scores) != 2 || r.Scores[0] != -0.5 {
		t.Errorf("unexpected scores %v", r.Scores)
	}
}

func TestParseRuleErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.grammar")
	defer teardown()
	//
	v := corpus.NewVocabulary()
	for _, bad := range []string{
		"no separators at all",
		"S ||| a ||| b",
		"[S] |||  ||| b",
		"[S] ||| [X] ||| [X,2]",
		"[S] ||| a ||| b ||| nonumber",
	} {
		if _, err := ParseRule(bad, v); err == nil {
			t.Errorf("expected parse error for %q", bad)
		}
	}
}

func TestReadGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.grammar")
	defer teardown()
	//
	v := corpus.NewVocabulary()
	text := `
# a tiny grammar
[X] ||| haus ||| house ||| -0.1
[X] ||| ein ||| a ||| -0.2
[S] ||| [X] [X] ||| [X,1] [X,2] ||| 0
`
	g, err := Read(strings.NewReader(text), v, 10)
	if err != nil {
		t.Fatalf("cannot read grammar: %v", err)
	}
	if g.Size() != 3 {
		t.Errorf("expected 3 rules, have %d", g.Size())
	}
	node := g.TrieRoot().Match(v.ID("haus"))
	if node == nil || !node.HasRules() {
		t.Fatalf("expected a rule collection under 'haus'")
	}
	if node.Collection().Arity() != 0 {
		t.Errorf("terminal collection should have arity 0")
	}
	if !g.HasRuleForSpan(0, 2, 2) || g.HasRuleForSpan(0, 11, 11) {
		t.Errorf("span limit not honored")
	}
}

func TestTrieWalk(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.grammar")
	defer teardown()
	//
	v := corpus.NewVocabulary()
	g := NewMemoryGrammar(0)
	r, _ := ParseRule("[S] ||| a [X] b ||| a [X,1] b ||| 0", v)
	g.AddRule(r)
	node := g.TrieRoot().Match(v.ID("a"))
	if node == nil {
		t.Fatal("expected trie edge for terminal a")
	}
	node = node.Match(v.ID("X").Mark())
	if node == nil {
		t.Fatal("expected trie edge for nonterminal [X]")
	}
	if node.HasRules() {
		t.Errorf("no collection expected mid-rule")
	}
	node = node.Match(v.ID("b"))
	if node == nil || !node.HasRules() {
		t.Fatalf("expected the rule at the end of its source side")
	}
	if node.HasExtensions() {
		t.Errorf("expected a trie leaf after the last source symbol")
	}
}

func TestSortedRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.grammar")
	defer teardown()
	//
	v := corpus.NewVocabulary()
	g := NewMemoryGrammar(0)
	for _, line := range []string{
		"[X] ||| a ||| u ||| -3",
		"[X] ||| a ||| v ||| -1",
		"[X] ||| a ||| w ||| -1",
	} {
		r, err := ParseRule(line, v)
		if err != nil {
			t.Fatal(err)
		}
		g.AddRule(r)
	}
	g.EstimateScores([]float64{1})
	rc := g.TrieRoot().Match(v.ID("a")).Collection()
	sorted := rc.Sorted()
	if sorted[0].Estimate() != -1 || sorted[2].Estimate() != -3 {
		t.Errorf("rules not sorted score-descending: %v", sorted)
	}
	// equal estimates keep insertion order
	if v.String(sorted[0].Target[0]) != "v" || v.String(sorted[1].Target[0]) != "w" {
		t.Errorf("tie-breaking by insertion order violated")
	}
}

func TestGlueGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.grammar")
	defer teardown()
	//
	v := corpus.NewVocabulary()
	g := NewGlueGrammar(v, "X")
	if g.Size() != 2 {
		t.Fatalf("expected 2 glue rules, have %d", g.Size())
	}
	goal := v.ID(corpus.GoalSym)
	x := v.ID("X")
	unary := g.TrieRoot().Match(x.Mark())
	if unary == nil || !unary.HasRules() || unary.Collection().Arity() != 1 {
		t.Errorf("expected unary glue rule GOAL → X")
	}
	binary := g.TrieRoot().Match(goal.Mark())
	if binary == nil {
		t.Fatal("expected glue edge for [GOAL]")
	}
	binary = binary.Match(x.Mark())
	if binary == nil || !binary.HasRules() {
		t.Errorf("expected glue rule GOAL → GOAL X")
	}
}
