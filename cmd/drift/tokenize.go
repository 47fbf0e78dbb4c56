package main

import (
	"os"

	"github.com/spf13/cobra"

	"drift/internal/diag"
	"drift/internal/diagfmt"
	"drift/internal/lexer"
	"drift/internal/source"
)

var tokenizeCmd = &cobra.Command{
	Use:          "tokenize <file>",
	Short:        "Print the token stream for a drift source file",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runTokenize,
}

func runTokenize(cmd *cobra.Command, args []string) error {
	fileSet := source.NewFileSet()
	fileID, err := fileSet.Load(args[0])
	if err != nil {
		return err
	}
	file := fileSet.Get(fileID)

	bag := diag.NewBag(maxDiagnosticsFlag(cmd))
	tokens := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})

	if err := diagfmt.FormatTokensPretty(cmd.OutOrStdout(), tokens, fileSet); err != nil {
		return err
	}
	if bag.Len() > 0 {
		bag.Sort()
		diagfmt.Pretty(cmd.ErrOrStderr(), bag, fileSet, diagfmt.PrettyOpts{
			Color:     colorEnabled(cmd, os.Stderr),
			ShowNotes: true,
		})
	}
	return nil
}
