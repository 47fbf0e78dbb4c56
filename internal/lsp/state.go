package lsp

// serverState tracks the LSP lifecycle. Transitions are driven exclusively
// by initialize/initialized/shutdown/exit messages.
type serverState uint8

const (
	stateUninitialized serverState = iota
	stateInitializing
	stateRunning
	stateShuttingDown
	stateExited
)

func (s serverState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateInitializing:
		return "initializing"
	case stateRunning:
		return "running"
	case stateShuttingDown:
		return "shutting-down"
	case stateExited:
		return "exited"
	}
	return "invalid"
}
