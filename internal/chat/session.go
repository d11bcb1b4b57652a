package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/internal/farm"
	"github.com/sandevgo/cropadvisor/internal/providers/llm"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

const (
	ImageOnlyText   = "[Image uploaded — please analyze this crop/soil issue]"
	maxDiagnosticSz = 200
)

var (
	ErrEmptyInput = errors.New("message is empty")
	ErrCanceled   = errors.New("exchange canceled")
	ErrClosed     = errors.New("session closed")
)

// Input is one farmer submission: text, an image, or both.
type Input struct {
	Text  string
	Image *core.Image
}

// Session runs exchanges for one conversation. A new submission cancels the
// one in flight, whose partial answer is discarded.
type Session struct {
	id        string
	store     *Store
	transport core.Transport
	settings  core.SettingsProvider
	window    int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	sink   *Sink
	closed bool
}

func NewSession(id string, store *Store, transport core.Transport, settings core.SettingsProvider, window int) *Session {
	return &Session{
		id:        id,
		store:     store,
		transport: transport,
		settings:  settings,
		window:    window,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Store() *Store {
	return s.store
}

// Busy reports whether an exchange is waiting for its answer.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink != nil && s.sink.Busy()
}

// Submit stores the user turn, asks the transport for an answer and blocks
// until the assistant turn is stored. Transport failures become a synthesized
// assistant turn and are never returned. ErrCanceled is returned when the
// exchange is cancelled by ctx, Cancel, Close or a newer Submit.
func (s *Session) Submit(ctx context.Context, in Input, observe Observer) (core.Turn, error) {
	text := strings.TrimSpace(in.Text)
	hasImage := in.Image != nil && len(in.Image.Data) > 0
	if text == "" && !hasImage {
		return core.Turn{}, ErrEmptyInput
	}
	if text == "" {
		text = ImageOnlyText
	}
	if !hasImage {
		in.Image = nil
	}

	sink := NewSink(s.store, observe)
	exCtx, finish, err := s.begin(ctx, sink)
	if err != nil {
		return core.Turn{}, err
	}
	defer finish()

	logger := log.FromCtx(ctx).With().Str("session", s.id).Logger()

	user := s.store.Append(core.Turn{Role: core.RoleUser, Text: text, Image: in.Image})
	observe.emit(Event{Kind: EventUserTurn, Turn: user})

	snapshot := farm.Build(exCtx, s.settings)
	req := core.ChatRequest{
		System:  farm.BuildPrompt(snapshot, hasImage),
		History: s.store.Windowed(s.window),
	}

	logger.Debug().
		Str("transport", string(s.transport.Strategy())).
		Int("history", len(req.History)).
		Bool("image", hasImage).
		Msg("sending exchange")

	sendErr := s.transport.Send(exCtx, req, sink)
	if sendErr == nil {
		if turn, ok := sink.Result(); ok {
			return turn, nil
		}
		sendErr = llm.ErrEmptyResponse
	}

	if exCtx.Err() != nil {
		dropped, _ := sink.Abort()
		observe.emit(Event{Kind: EventDiscarded, Turn: dropped})
		logger.Debug().Err(sendErr).Msg("exchange canceled")
		return core.Turn{}, ErrCanceled
	}

	logger.Warn().Err(sendErr).Msg("transport failed, answering locally")
	if dropped, ok := sink.Abort(); ok {
		observe.emit(Event{Kind: EventDiscarded, Turn: dropped})
	}

	turn := s.store.Append(core.Turn{
		Role: core.RoleAssistant,
		Text: s.failureText(snapshot, sendErr),
	})
	observe.emit(Event{Kind: EventComplete, Turn: turn, Fallback: true})
	return turn, nil
}

// begin waits out any exchange in flight and registers a new one. Nothing
// else touches the store until finish is called. sink may be nil for work
// that does not talk to the transport.
func (s *Session) begin(ctx context.Context, sink *Sink) (context.Context, func(), error) {
	s.mu.Lock()
	for s.done != nil {
		cancel, done := s.cancel, s.done
		s.mu.Unlock()
		cancel()
		<-done
		s.mu.Lock()
	}
	if s.closed {
		s.mu.Unlock()
		return nil, nil, ErrClosed
	}

	exCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done, s.sink = cancel, done, sink
	s.mu.Unlock()

	finish := func() {
		cancel()
		s.mu.Lock()
		if s.done == done {
			s.cancel, s.done, s.sink = nil, nil, nil
		}
		s.mu.Unlock()
		close(done)
	}
	return exCtx, finish, nil
}

// Cancel stops the exchange in flight, if any, and waits until its partial
// answer has been discarded.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
}

// Close cancels the exchange in flight and rejects further submissions.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Cancel()
}

// Reset cancels the exchange in flight and forgets the conversation. A
// Submit racing with it either completes before the reset or starts after it.
func (s *Session) Reset() {
	_, finish, err := s.begin(context.Background(), nil)
	if err != nil {
		// closed: no exchange can start any more
		s.store.Reset()
		return
	}
	defer finish()
	s.store.Reset()
}

func (s *Session) failureText(snapshot farm.Snapshot, err error) string {
	if s.transport.Strategy() == core.StrategySingleShot {
		return fmt.Sprintf("Sorry, I couldn't get an answer right now (%s). Please try again.", diagnostic(err))
	}

	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) || errors.Is(err, llm.ErrNoBody) || errors.Is(err, llm.ErrEmptyResponse) {
		return farm.FallbackAnswer(snapshot)
	}
	return farm.OfflineAnswer(snapshot)
}

func diagnostic(err error) string {
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if r := []rune(msg); len(r) > maxDiagnosticSz {
		msg = string(r[:maxDiagnosticSz-3]) + "..."
	}
	return msg
}
