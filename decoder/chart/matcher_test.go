package chart

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/Dearborn-Open-AI/joshua/corpus"
	"github.com/Dearborn-Open-AI/joshua/decoder/ff"
	"github.com/Dearborn-Open-AI/joshua/grammar"
)

func TestExactMatcher(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.chart")
	defer teardown()
	//
	vocab := corpus.NewVocabulary()
	g := testGrammar(t, vocab, []string{
		"[S] ||| [NP] [VP] ||| [NP,1] [VP,2] ||| 0",
	})
	m := NewMatcher(g, vocab)
	if _, isExact := m.(exactMatcher); !isExact {
		t.Fatalf("expected exact matcher for a non-regexp grammar")
	}
	if children := m.Match(g.TrieRoot(), vocab.ID("NP")); len(children) != 1 {
		t.Errorf("expected NP to match the NP edge, have %d children", len(children))
	}
	if children := m.Match(g.TrieRoot(), vocab.ID("VP")); len(children) != 0 {
		t.Errorf("expected VP not to match at the root, have %d children", len(children))
	}
}

func TestRegexpMatcher(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.chart")
	defer teardown()
	//
	vocab := corpus.NewVocabulary()
	g := testGrammar(t, vocab, []string{
		"[S] ||| [N.*] [N.*] ||| [N.*,1] [N.*,2] ||| 0",
	})
	g.SetRegexp(true)
	m := NewMatcher(g, vocab)
	for _, lhs := range []string{"NP", "NN"} {
		if children := m.Match(g.TrieRoot(), vocab.ID(lhs)); len(children) != 1 {
			t.Errorf("expected %s to match pattern N.*, have %d children", lhs, len(children))
		}
	}
	if children := m.Match(g.TrieRoot(), vocab.ID("VP")); len(children) != 0 {
		t.Errorf("expected VP not to match pattern N.*")
	}
	// verdicts are cached; a second query must agree
	if children := m.Match(g.TrieRoot(), vocab.ID("NP")); len(children) != 1 {
		t.Errorf("cached regexp verdict diverged")
	}
}

// End-to-end decode with a regexp grammar: the pattern edge accepts both
// preterminal labels.
func TestRegexpDecoding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.chart")
	defer teardown()
	//
	vocab := corpus.NewVocabulary()
	pre := testGrammar(t, vocab, []string{
		"[NP] ||| a ||| A ||| -1",
		"[NN] ||| b ||| B ||| -1",
	})
	re := testGrammar(t, vocab, []string{
		"[S] ||| [N.*] [N.*] ||| [N.*,1] [N.*,2] ||| 0",
	})
	re.SetRegexp(true)
	s := testSentence(t, "a b", vocab)
	ffs := []ff.FeatureFunction{ff.RuleScore{}}
	ch := New(s, ffs, []grammar.Grammar{pre, re}, vocab.ID("S"), vocab, exhaustive())
	hg := ch.Expand()
	if hg == nil {
		t.Fatal("expected a hypergraph, got none")
	}
	if hg.ViterbiScore() != -2 {
		t.Errorf("expected viterbi score -2, have %g", hg.ViterbiScore())
	}
	if d := hg.ViterbiDerivation(vocab); d != "A B" {
		t.Errorf("expected derivation \"A B\", have %q", d)
	}
}
