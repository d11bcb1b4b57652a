package chat

import (
	"sync"

	"github.com/sandevgo/cropadvisor/internal/core"
)

// Sink applies transport output for one exchange to the Store.
// Completion is idempotent and nothing is applied after it.
type Sink struct {
	store   *Store
	observe Observer

	mu     sync.Mutex
	busy   bool
	closed bool
	result *core.Turn
}

func NewSink(store *Store, observe Observer) *Sink {
	return &Sink{
		store:   store,
		observe: observe,
		busy:    true,
	}
}

func (s *Sink) OnDelta(text string) {
	s.mu.Lock()
	if s.closed || text == "" {
		s.mu.Unlock()
		return
	}
	turn := s.store.Accumulate(text)
	s.mu.Unlock()

	s.observe.emit(Event{Kind: EventDelta, Turn: turn, Delta: text})
}

// OnComplete finalizes the in-flight turn. A non-empty finalText is the
// authoritative answer and replaces any streamed text.
func (s *Sink) OnComplete(finalText string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.busy = false

	var (
		turn core.Turn
		ok   bool
	)
	if finalText != "" {
		s.store.Discard()
		turn, ok = s.store.Append(core.Turn{Role: core.RoleAssistant, Text: finalText}), true
	} else {
		turn, ok = s.store.Finalize()
	}
	if ok {
		s.result = &turn
	}
	s.mu.Unlock()

	if ok {
		s.observe.emit(Event{Kind: EventComplete, Turn: turn})
	}
}

// Abort ends the exchange without keeping any streamed text. It returns the
// in-flight turn it removed, if any.
func (s *Sink) Abort() (core.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		turn core.Turn
		ok   bool
	)
	if !s.closed {
		turn, ok = s.store.Discard()
	}
	s.closed = true
	s.busy = false
	s.result = nil
	return turn, ok
}

// Busy reports whether the exchange is still waiting for completion.
func (s *Sink) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Result returns the completed assistant turn. It is false until completion,
// and stays false when the transport completed without producing any text.
func (s *Sink) Result() (core.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return core.Turn{}, false
	}
	return *s.result, true
}
