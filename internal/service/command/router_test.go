package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/internal/storage/memory"
)

type fakeSessions struct {
	reset []string
}

func (f *fakeSessions) Reset(sessionID string) bool {
	f.reset = append(f.reset, sessionID)
	return true
}

type failingCommand struct{}

func (failingCommand) Name() string        { return "fail" }
func (failingCommand) Description() string { return "always fails" }
func (failingCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	return "", errors.New("settings backend unavailable")
}

func TestRouter_Execute(t *testing.T) {
	sessions := &fakeSessions{}
	settings := memory.NewSettings(map[string]string{
		core.KeyFarmerName:    "Ramesh",
		core.KeyPhosphorus:    "28",
		core.KeySoilType:      "Loam",
		core.KeyActiveAlerts:  `["Aphids spotted on the east field"]`,
		core.KeySelectedCrops: `[{"crop":"Cotton"},{"crop":"Dragonfruit"}]`,
	})
	r := NewRouter(sessions, settings)
	r.Register(failingCommand{})
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		handled  bool
		contains []string
	}{
		{name: "plain question", input: "how much urea?", handled: false},
		{name: "unknown", input: "/weather", handled: true, contains: []string{"Unknown command: /weather"}},
		{name: "reset", input: "/reset", handled: true, contains: []string{"Conversation cleared"}},
		{name: "bot suffix and case", input: "  /RESET@cropadvisor_bot  ", handled: true, contains: []string{"Conversation cleared"}},
		{
			name:    "context",
			input:   "/context",
			handled: true,
			contains: []string{
				"**Farmer**  ›  Ramesh",
				"**Soil**  ›  Loam",
				"Phosphorus (P): 28 mg/kg [low]",
				"Aphids spotted on the east field",
				"/100",
			},
		},
		{
			name:    "crop sheet",
			input:   "/crop wheat",
			handled: true,
			contains: []string{
				"**Wheat**",
				"**Sowing**  ›  Nov-Dec",
				"**Fertilizer**  ›  DAP 50kg + Urea 65kg",
				"**Market Price**  ›  Rs 2275/quintal",
			},
		},
		{name: "crop calendar", input: "/crop", handled: true, contains: []string{"Crop Calendar", "› Cotton: sow May-Jun, harvest Nov-Jan"}},
		{name: "unknown crop", input: "/crop saffron", handled: true, contains: []string{"Command Error", `unknown crop "saffron"`, "wheat"}},
		{name: "help", input: "/help", handled: true, contains: []string{"/context - ", "/crop - ", "/help - ", "/reset - "}},
		{name: "error", input: "/fail", handled: true, contains: []string{"Command Error", "settings backend unavailable"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, handled := r.Execute(ctx, "chat-1", tt.input)
			assert.Equal(t, tt.handled, handled)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}

	assert.Equal(t, []string{"chat-1", "chat-1"}, sessions.reset)
}

func TestRouter_ListCommandsSorted(t *testing.T) {
	r := NewRouter(&fakeSessions{}, memory.NewSettings(nil))

	var names []string
	for _, cmd := range r.ListCommands() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"context", "crop", "help", "reset"}, names)
}
