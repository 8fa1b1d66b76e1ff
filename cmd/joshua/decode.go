package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dearborn-Open-AI/joshua/corpus"
	"github.com/Dearborn-Open-AI/joshua/decoder"
	"github.com/Dearborn-Open-AI/joshua/decoder/chart"
	"github.com/Dearborn-Open-AI/joshua/decoder/ff"
	"github.com/Dearborn-Open-AI/joshua/decoder/hypergraph"
	"github.com/Dearborn-Open-AI/joshua/decoder/segment"
	"github.com/Dearborn-Open-AI/joshua/grammar"
)

var decodeFlags = struct {
	grammars    *[]string
	weights     *string
	goal        *string
	glue        *bool
	glueNT      *string
	spanLimit   *int
	popLimit    *int
	noDotChart  *bool
	wordPenalty *float64
	target      *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "decode",
		Short:   "Decode sentences from stdin, one per line",
		Example: `  cat input.txt | joshua decode -g grammar.txt --glue`,
		RunE:    runDecode,
	}
	rootCmd.AddCommand(cmd)
	// the shell subcommand shares these options, so they are persistent
	flags := rootCmd.PersistentFlags()
	decodeFlags.grammars = flags.StringSliceP("grammar", "g", nil, "grammar file (repeatable)")
	decodeFlags.weights = flags.StringP("weights", "w", "", "comma-separated feature weights")
	decodeFlags.goal = flags.String("goal", corpus.GoalSym, "goal nonterminal")
	decodeFlags.glue = flags.Bool("glue", false, "add the standard glue grammar")
	decodeFlags.glueNT = flags.String("glue-nt", "X", "nonterminal the glue grammar stitches")
	decodeFlags.spanLimit = flags.Int("span-limit", 20, "maximum source span for grammar rules")
	decodeFlags.popLimit = flags.Int("pop-limit", 100, "cube-pruning pops per span, 0 = unbounded")
	decodeFlags.noDotChart = flags.Bool("no-dot-chart", false, "use the CKY+ strategy without a dot chart")
	decodeFlags.wordPenalty = flags.Float64("word-penalty", 0, "penalty per target word")
	decodeFlags.target = flags.String("target", "", "forced target string (constrained decoding)")
}

type decodeEnv struct {
	vocab    *corpus.Vocabulary
	grammars []grammar.Grammar
	ffs      []ff.FeatureFunction
	config   decoder.Config
}

func newDecodeEnv() (*decodeEnv, error) {
	weights, err := parseWeights(*decodeFlags.weights)
	if err != nil {
		return nil, err
	}
	env := &decodeEnv{vocab: corpus.NewVocabulary()}
	env.grammars, err = loadGrammars(*decodeFlags.grammars, env.vocab, weights,
		*decodeFlags.spanLimit, *decodeFlags.glue, *decodeFlags.glueNT)
	if err != nil {
		return nil, err
	}
	env.ffs = []ff.FeatureFunction{ff.RuleScore{}}
	if *decodeFlags.wordPenalty != 0 {
		env.ffs = append(env.ffs, ff.WordPenalty{Weight: *decodeFlags.wordPenalty})
	}
	env.config = decoder.Config{
		PopLimit:    *decodeFlags.popLimit,
		UseDotChart: !*decodeFlags.noDotChart,
	}
	return env, nil
}

// decodeLine builds a chart for one input line and runs the selected
// strategy.
func (env *decodeEnv) decodeLine(id int, line string) (*hypergraph.HyperGraph, error) {
	s, err := segment.NewSentence(id, line, env.vocab)
	if err != nil {
		return nil, err
	}
	if *decodeFlags.target != "" {
		s.SetTarget(env.vocab.IDs(strings.Fields(*decodeFlags.target)))
	}
	ch := chart.New(s, env.ffs, env.grammars, env.vocab.ID(*decodeFlags.goal), env.vocab, env.config)
	if env.config.UseDotChart {
		return ch.Expand(), nil
	}
	return ch.ExpandSansDotChart(), nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	env, err := newDecodeEnv()
	if err != nil {
		return err
	}
	scan := bufio.NewScanner(os.Stdin)
	id := 0
	for scan.Scan() {
		line := scan.Text()
		hg, err := env.decodeLine(id, line)
		if err != nil {
			return err
		}
		if hg == nil {
			fmt.Printf("%d ||| ||| 0\n", id)
		} else {
			fmt.Printf("%d ||| %s ||| %.4f\n", id, hg.ViterbiDerivation(env.vocab), hg.ViterbiScore())
		}
		id++
	}
	return scan.Err()
}
