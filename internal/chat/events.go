package chat

import "github.com/sandevgo/cropadvisor/internal/core"

type EventKind int

const (
	// EventUserTurn fires once the user turn is stored.
	EventUserTurn EventKind = iota
	// EventDelta carries a chunk of streamed text and the in-flight turn so far.
	EventDelta
	// EventComplete carries the finished assistant turn.
	EventComplete
	// EventDiscarded fires when an exchange is cancelled before completing,
	// and when a failed stream's partial turn is dropped for a fallback. Turn
	// is the removed turn, zero if nothing had been streamed yet.
	EventDiscarded
)

func (k EventKind) String() string {
	switch k {
	case EventUserTurn:
		return "user"
	case EventDelta:
		return "delta"
	case EventComplete:
		return "done"
	case EventDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind  EventKind
	Turn  core.Turn
	Delta string
	// Fallback is set on EventComplete when the answer was synthesized
	// locally because the transport failed.
	Fallback bool
}

// Observer is notified of exchange progress on the submitting goroutine.
// A nil Observer is allowed.
type Observer func(Event)

func (o Observer) emit(e Event) {
	if o != nil {
		o(e)
	}
}
