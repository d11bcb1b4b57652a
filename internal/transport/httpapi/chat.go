package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sandevgo/cropadvisor/internal/chat"
	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

// maxRequestSize leaves room for a base64 encoded 10 MB photo.
const maxRequestSize = 15 << 20

type ChatRequest struct {
	Session string `json:"session"`
	Text    string `json:"text"`
	// Image is base64 in JSON.
	Image    []byte `json:"image"`
	MIMEType string `json:"mime_type"`
}

type TurnView struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	HasImage  bool      `json:"has_image"`
	Final     bool      `json:"final"`
	CreatedAt time.Time `json:"created_at"`
}

type deltaEvent struct {
	TurnID string `json:"turn_id"`
	Text   string `json:"text"`
}

type doneEvent struct {
	Session  string   `json:"session"`
	Turn     TurnView `json:"turn"`
	Fallback bool     `json:"fallback"`
}

func newTurnView(t core.Turn) TurnView {
	return TurnView{
		ID:        t.ID,
		Role:      t.Role,
		Text:      t.Text,
		HasImage:  t.HasImage(),
		Final:     t.Final,
		CreatedAt: t.CreatedAt,
	}
}

type ChatHandler struct {
	sessions *chat.Manager
}

func NewChatHandler(sessions *chat.Manager) *ChatHandler {
	return &ChatHandler{sessions: sessions}
}

// POST /api/chat
// Streams the answer as server-sent events: "delta" for each piece of text,
// "done" with the finished turn, then a final "data: [DONE]".
func (h *ChatHandler) Post(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestSize)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Image) == 0 {
		RespondError(c, http.StatusBadRequest, "empty_message", chat.ErrEmptyInput)
		return
	}

	in := chat.Input{Text: req.Text}
	if len(req.Image) > 0 {
		mime := req.MIMEType
		if mime == "" {
			mime = http.DetectContentType(req.Image)
		}
		if !strings.HasPrefix(mime, "image/") {
			RespondError(c, http.StatusBadRequest, "invalid_image", fmt.Errorf("unsupported image type %q", mime))
			return
		}
		in.Image = &core.Image{MIMEType: mime, Data: req.Image}
	}

	id := req.Session
	if id == "" {
		id = c.GetHeader(SessionHeader)
	}
	if id == "" {
		id = uuid.NewString()
	}

	ctx := c.Request.Context()
	logger := log.FromCtx(ctx)
	session := h.sessions.Session(ctx, id)

	c.Header(SessionHeader, id)
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	_, err := session.Submit(ctx, in, func(e chat.Event) {
		switch e.Kind {
		case chat.EventDelta:
			writeEvent(c, "delta", deltaEvent{TurnID: e.Turn.ID, Text: e.Delta})
		case chat.EventComplete:
			writeEvent(c, "done", doneEvent{Session: id, Turn: newTurnView(e.Turn), Fallback: e.Fallback})
		case chat.EventDiscarded:
			writeEvent(c, "discarded", deltaEvent{TurnID: e.Turn.ID})
		}
	})
	if err != nil && !errors.Is(err, chat.ErrCanceled) {
		logger.Error().Err(err).Str("session", id).Msg("chat submit failed")
		writeEvent(c, "error", APIError{Message: err.Error()})
	}

	_, _ = c.Writer.WriteString("data: [DONE]\n\n")
	c.Writer.Flush()
}

func writeEvent(c *gin.Context, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.FromCtx(c.Request.Context()).Warn().Err(err).Str("event", event).Msg("failed to marshal sse event")
		return
	}
	_, _ = fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
	c.Writer.Flush()
}

// GET /api/chat/:session
func (h *ChatHandler) Get(c *gin.Context) {
	id := c.Param("session")
	session, ok := h.sessions.Lookup(id)
	if !ok {
		RespondError(c, http.StatusNotFound, "session_not_found", fmt.Errorf("no conversation %q", id))
		return
	}

	turns := session.Store().Turns()
	views := make([]TurnView, 0, len(turns))
	for _, t := range turns {
		views = append(views, newTurnView(t))
	}
	RespondOK(c, gin.H{
		"session": id,
		"busy":    session.Busy(),
		"turns":   views,
	})
}

// DELETE /api/chat/:session
func (h *ChatHandler) Delete(c *gin.Context) {
	id := c.Param("session")
	if !h.sessions.Delete(id) {
		RespondError(c, http.StatusNotFound, "session_not_found", fmt.Errorf("no conversation %q", id))
		return
	}
	c.Status(http.StatusNoContent)
}
