package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type choice struct {
	value string
	label string
}

// ChoiceStep picks one option from a fixed list.
type ChoiceStep struct {
	prompt  string
	choices []choice
	cursor  int
	apply   func(state *InstallState, value string)
}

func NewTransportStep() Step {
	return &ChoiceStep{
		prompt: "How should the advisor reach its model?",
		choices: []choice{
			{value: "streaming", label: "Streaming chat proxy (OpenAI-style, answers appear as they are written)"},
			{value: "single-shot", label: "Google Gemini API (one complete answer per question)"},
		},
		apply: func(state *InstallState, value string) { state.App.Transport = value },
	}
}

func NewSettingsBackendStep() Step {
	return &ChoiceStep{
		prompt: "Where should the farm profile and sensor readings be stored?",
		choices: []choice{
			{value: "sqlite", label: "Local SQLite file"},
			{value: "redis", label: "Redis (shared between several advisors)"},
			{value: "memory", label: "In memory (forgotten on restart)"},
		},
		apply: func(state *InstallState, value string) { state.App.SettingsBackend = value },
	}
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			s.apply(state, s.choices[s.cursor].value)
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.prompt + "\n\n")
	for i, c := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", c.label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", c.label)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
