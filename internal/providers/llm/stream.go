package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

const (
	imageNote        = "[Farmer uploaded an image of their crop/farm for analysis]"
	readBufferSize   = 4096
	maxErrorBodySize = 4096
)

// Stream talks to an OpenAI-style chat proxy that answers with an event stream.
type Stream struct {
	baseProvider
	stallTimeout time.Duration
}

type StreamConfig struct {
	ChatURL      string
	Token        string
	Model        string
	StallTimeout time.Duration
}

func NewStream(cfg StreamConfig) *Stream {
	return &Stream{
		baseProvider: newBaseProvider(cfg.ChatURL, cfg.Token, cfg.Model, 0),
		stallTimeout: cfg.StallTimeout,
	}
}

func (s *Stream) Strategy() core.Strategy {
	return core.StrategyStreaming
}

type streamRequest struct {
	Model    string         `json:"model,omitempty"`
	Stream   bool           `json:"stream"`
	Messages []core.Message `json:"messages"`
}

func (s *Stream) Send(ctx context.Context, req core.ChatRequest, sink core.DeltaSink) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	payload := streamRequest{
		Model:    s.model,
		Stream:   true,
		Messages: toMessages(req),
	}

	headers := map[string]string{"Accept": "text/event-stream"}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	resp, err := s.doRequest(ctx, http.MethodPost, "", payload, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return ErrNoBody
	}

	return s.consume(ctx, cancel, resp.Body, sink)
}

func (s *Stream) consume(ctx context.Context, cancel context.CancelCauseFunc, body io.Reader, sink core.DeltaSink) error {
	logger := log.FromCtx(ctx)

	if s.stallTimeout > 0 {
		timer := time.AfterFunc(s.stallTimeout, func() { cancel(ErrStalled) })
		defer timer.Stop()
		body = &stallReader{r: body, reset: func() { timer.Reset(s.stallTimeout) }}
	}

	parser := NewParser()
	buf := make([]byte, readBufferSize)
	deltas := 0

	for !parser.Done() {
		n, err := body.Read(buf)
		if n > 0 {
			for _, d := range parser.Feed(buf[:n]) {
				deltas++
				sink.OnDelta(d)
			}
		}
		if errors.Is(err, io.EOF) {
			for _, d := range parser.Close() {
				deltas++
				sink.OnDelta(d)
			}
			break
		}
		if err != nil {
			if cause := context.Cause(ctx); cause != nil {
				return fmt.Errorf("read stream: %w", cause)
			}
			return fmt.Errorf("read stream: %w", err)
		}
	}

	if dropped := parser.Dropped(); dropped > 0 {
		logger.Warn().Int("dropped", dropped).Msg("dropped malformed stream records")
	}
	logger.Debug().Int("deltas", deltas).Msg("stream finished")

	sink.OnComplete("")
	return nil
}

// stallReader pushes the stall deadline back on every read that returns data.
type stallReader struct {
	r     io.Reader
	reset func()
}

func (s *stallReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n > 0 {
		s.reset()
	}
	return n, err
}

func toMessages(req core.ChatRequest) []core.Message {
	messages := make([]core.Message, 0, len(req.History)+1)
	messages = append(messages, core.Message{Role: core.RoleSystem, Content: req.System})
	for _, t := range req.History {
		content := t.Text
		if t.HasImage() {
			content += "\n" + imageNote
		}
		messages = append(messages, core.Message{Role: t.Role, Content: content})
	}
	return messages
}
