package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"drift/internal/lsp"
	"drift/internal/project"
)

var lspLogLevel string

func init() {
	lspCmd.Flags().StringVar(&lspLogLevel, "log-level", "error",
		"stderr log verbosity (debug|info|warn|error|silent)")
}

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the Drift language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	level, err := lsp.ParseLogLevel(lspLogLevel)
	if err != nil {
		return err
	}
	logger := lsp.NewLogger(os.Stderr, level, colorEnabled(cmd, os.Stderr))

	maxDiagnostics := maxDiagnosticsFlag(cmd)
	if wd, wdErr := os.Getwd(); wdErr == nil {
		if manifest, mErr := project.FindManifest(wd); mErr == nil && manifest.LSP.MaxDiagnostics > 0 {
			maxDiagnostics = manifest.LSP.MaxDiagnostics
		}
	}

	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Logger:         logger,
		MaxDiagnostics: maxDiagnostics,
	})
	if err := server.Run(); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
