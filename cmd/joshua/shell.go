package main

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// An interactive decode shell. Users type source sentences (or PLF
// lattices) and see the best derivation and its score; handy while
// developing a grammar.

func init() {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Decode interactively",
		RunE:  runShell,
	}
	rootCmd.AddCommand(cmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	env, err := newDecodeEnv()
	if err != nil {
		return err
	}
	repl, err := readline.New("joshua> ")
	if err != nil {
		return err
	}
	defer repl.Close()
	pterm.Info.Println("Type a source sentence, quit with <ctrl>D")
	id := 0
	for {
		line, err := repl.Readline()
		if err == readline.ErrInterrupt || err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		hg, err := env.decodeLine(id, line)
		id++
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if hg == nil {
			pterm.Warning.Println("no derivation")
			continue
		}
		pterm.Success.Printf("%s  (%.4f)\n", hg.ViterbiDerivation(env.vocab), hg.ViterbiScore())
	}
	return nil
}
