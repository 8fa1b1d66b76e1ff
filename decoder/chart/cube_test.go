package chart

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/Dearborn-Open-AI/joshua/corpus"
	"github.com/Dearborn-Open-AI/joshua/decoder"
	"github.com/Dearborn-Open-AI/joshua/decoder/ff"
	"github.com/Dearborn-Open-AI/joshua/grammar"
)

// cubeRules spans a 2-rules × 2-tails × 1-tail cube over (0…2) once the
// boundary feature splits the X nodes at (0…1).
var cubeRules = []string{
	"[X] ||| a ||| u ||| -3",
	"[X] ||| a ||| v ||| -1",
	"[X] ||| b ||| w ||| -1",
	"[S] ||| [X] [X] ||| [X,1] [X,2] ||| 0",
	"[S] ||| [X] [X] ||| [X,2] [X,1] ||| -0.5",
}

func cubeChart(t *testing.T, config decoder.Config) (*Chart, *corpus.Vocabulary) {
	vocab := corpus.NewVocabulary()
	g := testGrammar(t, vocab, cubeRules)
	s := testSentence(t, "a b", vocab)
	ffs := []ff.FeatureFunction{ff.RuleScore{}, boundaryFeature{}}
	ch := New(s, ffs, []grammar.Grammar{g}, vocab.ID("S"), vocab, config)
	return ch, vocab
}

// Exhaustive expansion reaches every rule × tail combination exactly
// once: 2 rules × 2 left tails × 1 right tail = 4 hyperedges, never more.
// A combination reached along two cube axes would double an edge if the
// visited set failed.
func TestCubeVisitsEachStateOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.chart")
	defer teardown()
	//
	ch, vocab := cubeChart(t, exhaustive())
	hg := ch.Expand()
	if hg == nil {
		t.Fatal("expected a hypergraph, got none")
	}
	sn := ch.cellIfPresent(0, 2).SuperNode(vocab.ID("S"))
	if sn == nil {
		t.Fatal("expected S nodes over (0…2)")
	}
	edges := 0
	for _, node := range sn.Nodes {
		edges += len(node.Incoming)
	}
	if edges != 4 {
		t.Errorf("expected exactly 4 hyperedges over the cube, have %d", edges)
	}
	if hg.ViterbiScore() != -2 {
		t.Errorf("expected best score -2, have %g", hg.ViterbiScore())
	}
}

// A narrow inside beam drops low-scoring new nodes instead of inserting
// them.
func TestInsideBeam(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.chart")
	defer teardown()
	//
	ch, vocab := cubeChart(t, decoder.Config{PopLimit: 0, UseDotChart: true, BeamWidth: 1})
	hg := ch.Expand()
	if hg == nil {
		t.Fatal("expected a hypergraph, got none")
	}
	if hg.ViterbiScore() != -2 {
		t.Errorf("expected best score -2, have %g", hg.ViterbiScore())
	}
	sn := ch.cellIfPresent(0, 2).SuperNode(vocab.ID("S"))
	// the candidates on the u tail score -4 and -4.5; the -4 one merges into
	// the w-boundary node, the -4.5 one would open a new node below the
	// cutoff -2 - 1 = -3
	for _, node := range sn.Nodes {
		if node.Score < -3 {
			t.Errorf("node %v should have been beam-pruned (score %g)", node, node.Score)
		}
	}
}

// A pop limit bounds accepted hyperedges per span.
func TestCubePopBound(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "joshua.chart")
	defer teardown()
	//
	ch, vocab := cubeChart(t, decoder.Config{PopLimit: 2, UseDotChart: true})
	hg := ch.Expand()
	if hg == nil {
		t.Fatal("expected a hypergraph, got none")
	}
	sn := ch.cellIfPresent(0, 2).SuperNode(vocab.ID("S"))
	edges := 0
	for _, node := range sn.Nodes {
		edges += len(node.Incoming)
	}
	if edges > 2 {
		t.Errorf("expected at most 2 pops over (0…2), have %d edges", edges)
	}
	// best-first popping still finds the best combination first
	if hg.ViterbiScore() != -2 {
		t.Errorf("expected best score -2 under pop limit, have %g", hg.ViterbiScore())
	}
}
