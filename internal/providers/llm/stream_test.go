package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/cropadvisor/internal/core"
)

type recordingSink struct {
	deltas    []string
	completes []string
	onDelta   func(string)
}

func (r *recordingSink) OnDelta(text string) {
	r.deltas = append(r.deltas, text)
	if r.onDelta != nil {
		r.onDelta(text)
	}
}

func (r *recordingSink) OnComplete(finalText string) {
	r.completes = append(r.completes, finalText)
}

func (r *recordingSink) text() string {
	return strings.Join(r.deltas, "")
}

func streamServer(t *testing.T, chunks ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)
		for _, c := range chunks {
			_, _ = w.Write([]byte(c))
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRequest() core.ChatRequest {
	return core.ChatRequest{
		System: "You are a farm advisor.",
		History: []core.Turn{
			{Role: core.RoleUser, Text: "When should I irrigate?"},
		},
	}
}

func TestStream_Send_Request(t *testing.T) {
	var (
		gotHeader http.Header
		gotBody   streamRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte("data: [DONE]\n"))
	}))
	defer srv.Close()

	s := NewStream(StreamConfig{ChatURL: srv.URL, Token: "secret", Model: "farm-model"})
	req := core.ChatRequest{
		System: "briefing",
		History: []core.Turn{
			{Role: core.RoleUser, Text: "What is wrong with these leaves?", Image: &core.Image{MIMEType: "image/jpeg", Data: []byte{0xff}}},
			{Role: core.RoleAssistant, Text: "Looks like nitrogen deficiency."},
			{Role: core.RoleUser, Text: "What should I apply?"},
		},
	}

	require.NoError(t, s.Send(context.Background(), req, &recordingSink{}))

	assert.Equal(t, "Bearer secret", gotHeader.Get("Authorization"))
	assert.Equal(t, "text/event-stream", gotHeader.Get("Accept"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, core.AdvisorUserAgent, gotHeader.Get("User-Agent"))

	assert.True(t, gotBody.Stream)
	assert.Equal(t, "farm-model", gotBody.Model)
	assert.Equal(t, []core.Message{
		{Role: core.RoleSystem, Content: "briefing"},
		{Role: core.RoleUser, Content: "What is wrong with these leaves?\n" + imageNote},
		{Role: core.RoleAssistant, Content: "Looks like nitrogen deficiency."},
		{Role: core.RoleUser, Content: "What should I apply?"},
	}, gotBody.Messages)
}

func TestStream_Send_NoToken(t *testing.T) {
	var auth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Values("Authorization")
		_, _ = w.Write([]byte("data: [DONE]\n"))
	}))
	defer srv.Close()

	s := NewStream(StreamConfig{ChatURL: srv.URL})
	require.NoError(t, s.Send(context.Background(), testRequest(), &recordingSink{}))
	assert.Empty(t, auth)
}

func TestStream_Send_Deltas(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{
			name: "whole records",
			chunks: []string{
				`data: {"choices":[{"delta":{"content":"Irrigate "}}]}` + "\n\n",
				`data: {"choices":[{"delta":{"content":"tomorrow."}}]}` + "\n\n",
				"data: [DONE]\n\n",
			},
			want: "Irrigate tomorrow.",
		},
		{
			name: "records split mid-json",
			chunks: []string{
				`data: {"choices":[{"delta"`,
				`:{"content":"Hi"}}]}` + "\n",
				"data: [DO",
				"NE]\n",
			},
			want: "Hi",
		},
		{
			name: "multibyte split mid-rune",
			chunks: []string{
				"data: {\"choices\":[{\"delta\":{\"content\":\"\xe0\xa4",
				"\xa8\xe0\xa4\xae\xe0\xa5\x80\"}}]}\n",
			},
			want: "नमी",
		},
		{
			name: "stream ends without done",
			chunks: []string{
				`data: {"choices":[{"delta":{"content":"partial "}}]}` + "\n",
				`data: {"choices":[{"delta":{"content":"tail"}}]}`,
			},
			want: "partial tail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := streamServer(t, tt.chunks...)
			sink := &recordingSink{}

			err := NewStream(StreamConfig{ChatURL: srv.URL}).Send(context.Background(), testRequest(), sink)

			require.NoError(t, err)
			assert.Equal(t, tt.want, sink.text())
			assert.Equal(t, []string{""}, sink.completes)
		})
	}
}

func TestStream_Send_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down\n"))
	}))
	defer srv.Close()

	sink := &recordingSink{}
	err := NewStream(StreamConfig{ChatURL: srv.URL}).Send(context.Background(), testRequest(), sink)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream down", statusErr.Body)
	assert.Equal(t, "http 502: upstream down", err.Error())
	assert.Empty(t, sink.deltas)
	assert.Empty(t, sink.completes)
}

func TestStream_Send_NoBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := &recordingSink{}
	err := NewStream(StreamConfig{ChatURL: srv.URL}).Send(context.Background(), testRequest(), sink)

	assert.ErrorIs(t, err, ErrNoBody)
	assert.Empty(t, sink.completes)
}

func TestStream_Send_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewStream(StreamConfig{ChatURL: url}).Send(context.Background(), testRequest(), &recordingSink{})
	assert.Error(t, err)
}

func TestStream_Send_Stall(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`data: {"choices":[{"delta":{"content":"first"}}]}` + "\n"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	sink := &recordingSink{}
	s := NewStream(StreamConfig{ChatURL: srv.URL, StallTimeout: 50 * time.Millisecond})

	start := time.Now()
	err := s.Send(context.Background(), testRequest(), sink)

	assert.ErrorIs(t, err, ErrStalled)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, []string{"first"}, sink.deltas)
	assert.Empty(t, sink.completes)
}

func TestStream_Send_Cancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`data: {"choices":[{"delta":{"content":"first"}}]}` + "\n"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{onDelta: func(string) { cancel() }}
	err := NewStream(StreamConfig{ChatURL: srv.URL}).Send(ctx, testRequest(), sink)

	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Empty(t, sink.completes)
}
