package driver

// Status is where one program stands during a check.
type Status string

const (
	// StatusQueued indicates the program is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusLoading indicates the tree file is being read and built.
	StatusLoading Status = "loading"
	// StatusWorking indicates a pass is running; Event.Pass names it.
	StatusWorking Status = "working"
	// StatusDone indicates every pass ran without errors.
	StatusDone Status = "done"
	// StatusCached indicates the outcome was replayed from the disk cache.
	StatusCached Status = "cached"
	// StatusFailed indicates the program did not load or a pass reported
	// errors.
	StatusFailed Status = "failed"
)

// Event reports progress for one program.
type Event struct {
	File   string
	Status Status
	Pass   string
	// Step is the 1-based position of Pass among Steps passes.
	Step  int
	Steps int
	Err   error
}

// Finished reports whether ev is the last event of its program.
func (ev Event) Finished() bool {
	switch ev.Status {
	case StatusDone, StatusCached, StatusFailed:
		return true
	}
	return false
}

// ProgressSink consumes progress events. CheckAll calls it from several
// workers at once.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}

// finalEvent is the event closing the check of res.
func finalEvent(res *Result) Event {
	ev := Event{File: res.Path, Status: StatusDone}
	switch {
	case res.Err != nil:
		ev.Status, ev.Err = StatusFailed, res.Err
	case res.Cached:
		ev.Status = StatusCached
	case !res.Output.Succeeded():
		ev.Status = StatusFailed
	}
	return ev
}
