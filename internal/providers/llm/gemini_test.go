package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/sandevgo/cropadvisor/internal/core"
)

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestGemini_Send(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("  Apply 20 kg/acre of urea.\n")}
	g := &Gemini{models: gen, model: "gemini-test"}
	sink := &recordingSink{}

	req := core.ChatRequest{
		System: "briefing",
		History: []core.Turn{
			{Role: core.RoleUser, Text: "Is my nitrogen fine?"},
			{Role: core.RoleAssistant, Text: "Nitrogen is 72 mg/kg, within range."},
			{Role: core.RoleUser, Text: "What fertilizer next?"},
		},
	}

	require.NoError(t, g.Send(context.Background(), req, sink))

	assert.Equal(t, core.StrategySingleShot, g.Strategy())
	assert.Equal(t, "gemini-test", gen.model)
	assert.Empty(t, sink.deltas)
	assert.Equal(t, []string{"Apply 20 kg/acre of urea."}, sink.completes)

	require.Len(t, gen.contents, 1)
	assert.Equal(t, genai.RoleUser, gen.contents[0].Role)
	require.Len(t, gen.contents[0].Parts, 1)
	assert.Equal(t, "briefing\nCONVERSATION SO FAR:\n"+
		"Farmer: Is my nitrogen fine?\n"+
		"Advisor: Nitrogen is 72 mg/kg, within range.\n"+
		"\nFARMER'S MESSAGE:\nWhat fertilizer next?", gen.contents[0].Parts[0].Text)
}

func TestGemini_Send_Image(t *testing.T) {
	tests := []struct {
		name     string
		mime     string
		wantMIME string
	}{
		{name: "declared type", mime: "image/png", wantMIME: "image/png"},
		{name: "defaults to jpeg", mime: "", wantMIME: "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{resp: textResponse("Leaf blight.")}
			g := &Gemini{models: gen, model: "m"}

			req := core.ChatRequest{
				System: "briefing",
				History: []core.Turn{
					{Role: core.RoleUser, Text: "What is this?", Image: &core.Image{MIMEType: tt.mime, Data: []byte{1, 2, 3}}},
				},
			}
			require.NoError(t, g.Send(context.Background(), req, &recordingSink{}))

			parts := gen.contents[0].Parts
			require.Len(t, parts, 2)
			require.NotNil(t, parts[1].InlineData)
			assert.Equal(t, tt.wantMIME, parts[1].InlineData.MIMEType)
			assert.Equal(t, []byte{1, 2, 3}, parts[1].InlineData.Data)
			assert.Equal(t, "briefing\nFARMER'S MESSAGE:\nWhat is this?", parts[0].Text)
		})
	}
}

func TestGemini_Send_OlderImageNotResent(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse("ok")}
	g := &Gemini{models: gen, model: "m"}

	req := core.ChatRequest{History: []core.Turn{
		{Role: core.RoleUser, Text: "photo", Image: &core.Image{Data: []byte{9}}},
		{Role: core.RoleAssistant, Text: "seen"},
		{Role: core.RoleUser, Text: "and now?"},
	}}
	require.NoError(t, g.Send(context.Background(), req, &recordingSink{}))
	assert.Len(t, gen.contents[0].Parts, 1)
}

func TestGemini_Send_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		g := &Gemini{models: &fakeGenerator{err: boom}, model: "m"}
		sink := &recordingSink{}

		err := g.Send(context.Background(), testRequest(), sink)

		assert.ErrorIs(t, err, boom)
		assert.Empty(t, sink.completes)
	})

	t.Run("empty answer", func(t *testing.T) {
		g := &Gemini{models: &fakeGenerator{resp: textResponse("   ")}, model: "m"}
		sink := &recordingSink{}

		err := g.Send(context.Background(), testRequest(), sink)

		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.Empty(t, sink.completes)
	})

	t.Run("no candidates", func(t *testing.T) {
		g := &Gemini{models: &fakeGenerator{resp: &genai.GenerateContentResponse{}}, model: "m"}
		err := g.Send(context.Background(), testRequest(), &recordingSink{})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "m")
	assert.Error(t, err)
}
