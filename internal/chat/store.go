package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/cropadvisor/internal/core"
)

// Store is the ordered turn list of one conversation.
//
// At most one assistant turn is in flight at a time and it is always the last
// turn. When retain is positive, the oldest finalized turns are dropped whole
// once the store holds more than retain turns.
type Store struct {
	mu       sync.Mutex
	turns    []core.Turn
	inFlight bool
	retain   int
	now      func() time.Time
}

func NewStore(retain int) *Store {
	if retain < 0 {
		retain = 0
	}
	return &Store{
		retain: retain,
		now:    time.Now,
	}
}

// Append adds a completed turn and returns it with its id and timestamp set.
// An in-flight tail is finalized first so it never ends up mid-list.
func (s *Store) Append(turn core.Turn) core.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finalizeLocked()

	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = s.now()
	}
	turn.Final = true

	s.turns = append(s.turns, turn)
	s.trimLocked()
	return turn
}

// Accumulate appends delta to the in-flight assistant turn, seeding one if
// there is none, and returns the turn as it stands.
func (s *Store) Accumulate(delta string) core.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inFlight {
		s.turns = append(s.turns, core.Turn{
			ID:        uuid.NewString(),
			Role:      core.RoleAssistant,
			CreatedAt: s.now(),
		})
		s.inFlight = true
		s.trimLocked()
	}

	tail := &s.turns[len(s.turns)-1]
	tail.Text += delta
	return *tail
}

// Finalize marks the in-flight turn immutable. It reports false when nothing
// was in flight.
func (s *Store) Finalize() (core.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalizeLocked()
}

// Discard removes the in-flight turn without keeping any of its text.
func (s *Store) Discard() (core.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inFlight {
		return core.Turn{}, false
	}
	tail := s.turns[len(s.turns)-1]
	s.turns = s.turns[:len(s.turns)-1]
	s.inFlight = false
	return tail, true
}

// InFlight returns the turn currently receiving deltas, if any.
func (s *Store) InFlight() (core.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inFlight {
		return core.Turn{}, false
	}
	return s.turns[len(s.turns)-1], true
}

// Windowed returns the last n turns, oldest first. Turns are never split.
func (s *Store) Windowed(n int) []core.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 {
		return nil
	}
	start := 0
	if len(s.turns) > n {
		start = len(s.turns) - n
	}
	return cloneTurns(s.turns[start:])
}

// Turns returns a copy of every retained turn.
func (s *Store) Turns() []core.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTurns(s.turns)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Reset drops every turn, including one in flight.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	s.inFlight = false
}

func (s *Store) finalizeLocked() (core.Turn, bool) {
	if !s.inFlight {
		return core.Turn{}, false
	}
	tail := &s.turns[len(s.turns)-1]
	tail.Final = true
	s.inFlight = false
	return *tail, true
}

func (s *Store) trimLocked() {
	if s.retain == 0 || len(s.turns) <= s.retain {
		return
	}

	finalized := len(s.turns)
	if s.inFlight {
		finalized--
	}
	drop := min(len(s.turns)-s.retain, finalized)
	if drop <= 0 {
		return
	}

	kept := make([]core.Turn, len(s.turns)-drop)
	copy(kept, s.turns[drop:])
	s.turns = kept
}

func cloneTurns(turns []core.Turn) []core.Turn {
	if len(turns) == 0 {
		return nil
	}
	out := make([]core.Turn, len(turns))
	copy(out, turns)
	return out
}
