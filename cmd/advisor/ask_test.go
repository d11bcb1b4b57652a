package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandevgo/cropadvisor/internal/chat"
	"github.com/sandevgo/cropadvisor/internal/core"
)

func TestPrintAnswer(t *testing.T) {
	assistant := func(text string) core.Turn {
		return core.Turn{Role: core.RoleAssistant, Text: text, Final: true}
	}

	tests := []struct {
		name   string
		events []chat.Event
		want   string
	}{
		{
			name: "streamed",
			events: []chat.Event{
				{Kind: chat.EventUserTurn, Turn: core.Turn{Role: core.RoleUser, Text: "hi"}},
				{Kind: chat.EventDelta, Delta: "Water "},
				{Kind: chat.EventDelta, Delta: "tonight."},
				{Kind: chat.EventComplete, Turn: assistant("Water tonight.")},
			},
			want: "Water tonight.\n",
		},
		{
			name:   "single shot",
			events: []chat.Event{{Kind: chat.EventComplete, Turn: assistant("Water tonight.")}},
			want:   "Water tonight.\n",
		},
		{
			name: "fallback after partial stream",
			events: []chat.Event{
				{Kind: chat.EventDelta, Delta: "Wat"},
				{Kind: chat.EventComplete, Turn: assistant("Offline answer"), Fallback: true},
			},
			want: "Wat\nOffline answer\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			observe := printAnswer(&out)
			for _, e := range tt.events {
				observe(e)
			}
			assert.Equal(t, tt.want, out.String())
		})
	}
}
