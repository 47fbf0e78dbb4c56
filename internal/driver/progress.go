package driver

// Stage identifies a pipeline phase for progress reporting.
type Stage uint8

const (
	StageNone Stage = iota
	StageParse
	StageResolve
)

// Status identifies the state of a file within a stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event is one progress update from a batch analysis run.
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

// ProgressSink receives progress events.
type ProgressSink interface {
	Publish(Event)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Publish(Event) {}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) Publish(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}
