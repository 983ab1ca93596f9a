package eventlog

import "ftpmirror/mirror"

// MultiSink fans every event out to each child sink in order.
type MultiSink []mirror.EventSink

// Emit forwards the event to all sinks.
func (m MultiSink) Emit(ev mirror.Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}

// NopSink discards every event.
type NopSink struct{}

// Emit does nothing.
func (NopSink) Emit(mirror.Event) {}
