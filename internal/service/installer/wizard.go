package installer

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/cropadvisor/internal/service/ui"
)

var (
	itemStyle  = ui.DescStyle.PaddingLeft(2)
	selStyle   = ui.UsageStyle.PaddingLeft(2)
	errorStyle = ui.ErrorStyle.Bold(true)
)

// Step represents a single step in the setup wizard
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

type nextMsg struct{}

func getSteps(dir string, force bool) []Step {
	steps := []Step{NewTransportStep()}
	steps = append(steps, transportSteps()...)
	steps = append(steps, NewSettingsBackendStep())
	steps = append(steps, profileSteps()...)
	steps = append(steps, telegramSteps()...)
	return append(steps, NewSaveEnvStep(dir, force))
}

// model is the main Bubble Tea model that orchestrates the steps
type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	quitting    bool
	width       int
	height      int
}

func initialModel(dir string, force bool) model {
	return model{
		steps: getSteps(dir, force),
		state: NewInstallState(),
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 {
		return m.steps[0].Init()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	nextStep, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)
	if nextStep != nil {
		m.steps[m.currentStep] = nextStep
		return m, cmd
	}

	// step done; skipped steps complete on their first update, so nudge the
	// next one with a nextMsg
	m.currentStep++
	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}
	next := func() tea.Msg { return nextMsg{} }
	return m, tea.Batch(m.steps[m.currentStep].Init(), next)
}

func (m model) View() string {
	if m.quitting {
		return "Setup cancelled.\n"
	}
	if m.currentStep >= len(m.steps) {
		return "Configuration complete!\n"
	}
	return ui.TitleStyle.Render("CropAdvisor setup 🌾") + "\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard asks for the configuration interactively and writes dir/.env.
func RunWizard(dir string, force bool) (*InstallState, error) {
	p := tea.NewProgram(initialModel(dir, force), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	finalModel := m.(model)
	if finalModel.quitting {
		return nil, fmt.Errorf("setup interrupted")
	}
	if finalModel.currentStep < len(finalModel.steps) {
		return nil, fmt.Errorf("setup did not finish")
	}

	return finalModel.state, nil
}
