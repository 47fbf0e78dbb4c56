package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"drift/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "drift",
	Short: "Drift language toolchain",
	Long:  `Drift is a small scripting language with a checker and a language server`,
}

func main() {
	// Версия для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func colorEnabled(cmd *cobra.Command, out *os.File) bool {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		mode = "auto"
	}
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(out)
	}
}

func maxDiagnosticsFlag(cmd *cobra.Command) int {
	value, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil || value <= 0 {
		return 100
	}
	return value
}
