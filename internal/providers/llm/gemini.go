package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/pkg/log"
	"google.golang.org/genai"
)

const defaultImageMIME = "image/jpeg"

// generator is the slice of *genai.Models the single-shot transport uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini answers each exchange with one generateContent call.
type Gemini struct {
	models generator
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{models: client.Models, model: model}, nil
}

func (g *Gemini) Strategy() core.Strategy {
	return core.StrategySingleShot
}

func (g *Gemini) Send(ctx context.Context, req core.ChatRequest, sink core.DeltaSink) error {
	parts := []*genai.Part{genai.NewPartFromText(composePrompt(req))}
	if n := len(req.History); n > 0 && req.History[n-1].HasImage() {
		img := req.History[n-1].Image
		mime := img.MIMEType
		if mime == "" {
			mime = defaultImageMIME
		}
		parts = append(parts, genai.NewPartFromBytes(img.Data, mime))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return ErrEmptyResponse
	}

	log.FromCtx(ctx).Debug().Str("model", g.model).Int("len", len(text)).Msg("gemini answered")
	sink.OnComplete(text)
	return nil
}

// composePrompt flattens briefing, earlier turns and the new message into a
// single prompt, since the call carries no separate history.
func composePrompt(req core.ChatRequest) string {
	var sb strings.Builder
	sb.WriteString(req.System)

	history := req.History
	var latest core.Turn
	if n := len(history); n > 0 {
		latest = history[n-1]
		history = history[:n-1]
	}

	if len(history) > 0 {
		sb.WriteString("\nCONVERSATION SO FAR:\n")
		for _, t := range history {
			speaker := "Farmer"
			if t.Role == core.RoleAssistant {
				speaker = "Advisor"
			}
			fmt.Fprintf(&sb, "%s: %s\n", speaker, t.Text)
		}
	}

	sb.WriteString("\nFARMER'S MESSAGE:\n")
	sb.WriteString(latest.Text)
	return sb.String()
}
