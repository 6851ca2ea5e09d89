package rootfind

import "fmt"

// EventKind classifies trace events.
type EventKind string

const (
	EventRoot        EventKind = "root"
	EventReject      EventKind = "reject"
	EventBrentFailed EventKind = "brent-failed"
	EventOutOfRange  EventKind = "out-of-range"
	EventExhausted   EventKind = "exhausted"
	EventRetry       EventKind = "retry"
	EventDepth       EventKind = "depth"
)

// Event is one diagnostic record of a search.
type Event struct {
	Kind   EventKind
	A, B   float64
	FA, FB float64
	X, FX  float64
	Delta  float64
	Depth  int
}

func (e Event) String() string {
	switch e.Kind {
	case EventRoot, EventReject:
		return fmt.Sprintf("%s x=%g f=%g in [%g, %g] (f=%g, %g)", e.Kind, e.X, e.FX, e.A, e.B, e.FA, e.FB)
	case EventRetry, EventExhausted, EventOutOfRange:
		return fmt.Sprintf("%s delta=%g at %g", e.Kind, e.Delta, e.A)
	case EventDepth:
		return fmt.Sprintf("%s %d", e.Kind, e.Depth)
	}
	return fmt.Sprintf("%s [%g, %g]", e.Kind, e.A, e.B)
}

// Trace collects search diagnostics. A nil *Trace records nothing.
// Limit caps the number of stored events (0 = unlimited); OnEvent, when
// set, sees every event regardless of Limit.
type Trace struct {
	Events  []Event
	Limit   int
	OnEvent func(Event)
}

func (t *Trace) add(e Event) {
	if t == nil {
		return
	}
	if t.OnEvent != nil {
		t.OnEvent(e)
	}
	if t.Limit > 0 && len(t.Events) >= t.Limit {
		return
	}
	t.Events = append(t.Events, e)
}

// Count returns the number of stored events of the given kind.
func (t *Trace) Count(k EventKind) int {
	if t == nil {
		return 0
	}
	n := 0
	for _, e := range t.Events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Reset drops stored events.
func (t *Trace) Reset() {
	if t != nil {
		t.Events = t.Events[:0]
	}
}
