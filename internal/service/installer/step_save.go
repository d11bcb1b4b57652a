package installer

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
)

// SaveEnvStep writes the collected configuration to the .env file.
type SaveEnvStep struct {
	dir   string
	force bool
	err   error
	saved bool
}

func NewSaveEnvStep(dir string, force bool) Step {
	return &SaveEnvStep{dir: dir, force: force}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	if err := SaveEnv(s.dir, state, s.force); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// SaveEnv writes state to dir/.env. An existing file is only replaced when
// force is set.
func SaveEnv(dir string, state *InstallState, force bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(dir, ".env")
	if _, err := os.Stat(envPath); err == nil && !force {
		return fmt.Errorf(".env file already exists at %s", envPath)
	}

	content, err := state.EnvFile()
	if err != nil {
		return fmt.Errorf("failed to render .env: %w", err)
	}

	return os.WriteFile(envPath, []byte(content), 0600)
}
