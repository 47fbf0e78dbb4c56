package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"drift/internal/driver"
	"drift/internal/ui"
)

type checkOutcome struct {
	results []driver.CheckResult
	err     error
}

// runCheckWithUI drives the batch analysis behind a progress TUI. The
// analysis publishes events into a channel the Bubble Tea model consumes.
func runCheckWithUI(cmd *cobra.Command, files []string, opts driver.AnalyzeOptions) ([]driver.CheckResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		results, err := driver.AnalyzePaths(cmd.Context(), files, opts, driver.ChannelSink{Ch: events})
		outcomeCh <- checkOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("drift check", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	drainEvents(events)
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

// drainEvents consumes leftover progress events after the TUI exits.
// Без дренажа анализатор застрянет на заполненном канале событий.
func drainEvents(events <-chan driver.Event) {
	for range events {
	}
}
