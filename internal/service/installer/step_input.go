package installer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/cropadvisor/internal/core"
)

// InputStep asks for one free-text value. Steps whose skip func returns true
// complete immediately.
type InputStep struct {
	prompt   string
	required bool
	input    textinput.Model
	apply    func(state *InstallState, value string) error
	skip     func(state *InstallState) bool
	err      error
}

type inputOption func(*InputStep)

func secret() inputOption {
	return func(s *InputStep) {
		s.input.EchoMode = textinput.EchoPassword
		s.input.EchoCharacter = '•'
	}
}

func required() inputOption {
	return func(s *InputStep) { s.required = true }
}

func when(pred func(state *InstallState) bool) inputOption {
	return func(s *InputStep) {
		s.skip = func(state *InstallState) bool { return !pred(state) }
	}
}

func NewInputStep(prompt, placeholder string, apply func(*InstallState, string) error, opts ...inputOption) *InputStep {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = placeholder

	s := &InputStep{prompt: prompt, input: ti, apply: apply}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.skip != nil && s.skip(state) {
		return nil, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		value := strings.TrimSpace(s.input.Value())
		if value == "" && s.required {
			s.err = fmt.Errorf("a value is required")
			return s, nil
		}
		if err := s.apply(state, value); err != nil {
			s.err = err
			return s, nil
		}
		return nil, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.prompt + "\n\n")
	b.WriteString(s.input.View() + "\n\n")
	if s.err != nil {
		b.WriteString(errorStyle.Render(s.err.Error()) + "\n\n")
	}
	if s.required {
		b.WriteString("(press enter to confirm)\n")
	} else {
		b.WriteString("(press enter to confirm, leave empty to skip)\n")
	}
	return b.String()
}

func streaming(state *InstallState) bool  { return state.Streaming() }
func singleShot(state *InstallState) bool { return !state.Streaming() }

func withTelegram(state *InstallState) bool { return state.Telegram.Token != "" }

func profile(key string) func(*InstallState, string) error {
	return func(state *InstallState, value string) error {
		if value != "" {
			state.Profile[key] = value
		}
		return nil
	}
}

func transportSteps() []Step {
	return []Step{
		NewInputStep("Chat endpoint URL:", "https://example.com/functions/v1/farm-chat",
			func(s *InstallState, v string) error { s.Stream.ChatURL = v; return nil },
			required(), when(streaming)),
		NewInputStep("Chat endpoint token (bearer):", "eyJhbGciOi...",
			func(s *InstallState, v string) error { s.Stream.Token = v; return nil },
			secret(), when(streaming)),
		NewInputStep("Gemini API key:", "AIza...",
			func(s *InstallState, v string) error { s.Gemini.APIKey = v; return nil },
			secret(), required(), when(singleShot)),
	}
}

func profileSteps() []Step {
	return []Step{
		NewInputStep("Farmer name:", "Ramesh Kumar", profile(core.KeyFarmerName)),
		NewInputStep("Farm location:", "Village: Khed, Dist: Pune, Maharashtra", profile(core.KeyFarmLocation)),
		NewInputStep("Soil type:", "Black Cotton Soil", profile(core.KeySoilType)),
	}
}

func telegramSteps() []Step {
	return []Step{
		NewInputStep("Telegram bot token:", "123456789:ABCDEF...",
			func(s *InstallState, v string) error { s.Telegram.Token = v; return nil },
			secret()),
		NewInputStep("Telegram owner user ID (empty lets every chat in):", "123456789",
			func(s *InstallState, v string) error {
				if v == "" {
					return nil
				}
				id, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					return fmt.Errorf("owner ID must be a number")
				}
				s.Telegram.OwnerID = id
				return nil
			},
			when(withTelegram)),
	}
}
