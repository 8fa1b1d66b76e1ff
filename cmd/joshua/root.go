package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Dearborn-Open-AI/joshua/corpus"
	"github.com/Dearborn-Open-AI/joshua/grammar"
)

var rootCmd = &cobra.Command{
	Use:   "joshua",
	Short: "Decode sentences with synchronous context-free grammars",
	Long: `joshua is a syntax-based statistical machine-translation decoder.
It parses source sentences (or word lattices in PLF format) bottom-up
with cube pruning and prints the best derivation found.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

var rootFlags = struct {
	trace *string
}{}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "Error", "trace level [Debug|Info|Error]")
	cobra.OnInitialize(initTracing)
}

func initTracing() {
	gtrace.CoreTracer = gologadapter.New()
	level := tracing.TraceLevelFromString(*rootFlags.trace)
	for _, key := range []string{"joshua.chart", "joshua.grammar", "joshua.lattice", "joshua.decoder"} {
		tracing.Select(key).SetTraceLevel(level)
	}
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// --- Shared helpers ---------------------------------------------------------

func parseWeights(spec string) ([]float64, error) {
	if spec == "" {
		return []float64{1}, nil
	}
	fields := strings.Split(spec, ",")
	weights := make([]float64, len(fields))
	for i, f := range fields {
		w, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "bad weight %q", f)
		}
		weights[i] = w
	}
	return weights, nil
}

func loadGrammars(paths []string, vocab *corpus.Vocabulary, weights []float64,
	spanLimit int, glue bool, glueNT string) ([]grammar.Grammar, error) {
	//
	var grammars []grammar.Grammar
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot open grammar %s", path)
		}
		g, err := grammar.Read(f, vocab, spanLimit)
		f.Close()
		if err != nil {
			return nil, err
		}
		g.EstimateScores(weights)
		grammars = append(grammars, g)
	}
	if glue {
		g := grammar.NewGlueGrammar(vocab, glueNT)
		g.EstimateScores(weights)
		grammars = append(grammars, g)
	}
	if len(grammars) == 0 {
		return nil, errors.New("no grammar given")
	}
	return grammars, nil
}
