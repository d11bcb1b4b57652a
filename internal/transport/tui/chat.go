package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/cropadvisor/internal/chat"
	"github.com/sandevgo/cropadvisor/internal/core"
	"github.com/sandevgo/cropadvisor/internal/service/ui"
	"github.com/sandevgo/cropadvisor/pkg/conv"
	"github.com/sandevgo/cropadvisor/pkg/log"
)

const (
	attachCommand = "/attach"
	helpLine      = "enter send • esc cancel • /attach <file> • /help • ctrl+c quit"
)

type eventMsg chat.Event

type submitDoneMsg struct {
	err error
}

type cancelDoneMsg struct{}

// entry is one transcript line: a stored turn or a local notice.
type entry struct {
	turnID string
	notice string
	isErr  bool
}

// Model is the terminal chat panel for one session.
type Model struct {
	ctx     context.Context
	session *chat.Session
	router  core.CmdRouter
	events  chan chat.Event

	input    textinput.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	entries []entry
	seen    map[string]bool
	busy    bool
	closing bool

	pending     *core.Image
	pendingName string
}

func New(ctx context.Context, session *chat.Session, router core.CmdRouter) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your crops, soil or irrigation..."
	ti.Prompt = "› "
	ti.CharLimit = 2000
	ti.Focus()

	m := Model{
		ctx:      ctx,
		session:  session,
		router:   router,
		events:   make(chan chat.Event, 256),
		input:    ti,
		viewport: viewport.New(80, 20),
		seen:     make(map[string]bool),
	}
	m.syncTurns()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return eventMsg(<-events)
	}
}

// observe forwards session events without ever blocking the exchange; the
// view re-reads the store, so a dropped event only delays a repaint.
func (m Model) observe(e chat.Event) {
	select {
	case m.events <- e:
	default:
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.closing = true
			m.session.Close()
			return m, tea.Quit
		case "esc":
			if m.busy {
				session := m.session
				return m, func() tea.Msg {
					session.Cancel()
					return cancelDoneMsg{}
				}
			}
			return m, nil
		case "enter":
			return m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case eventMsg:
		m.syncTurns()
		m.refresh()
		return m, m.waitForEvent()

	case submitDoneMsg:
		m.busy = false
		switch {
		case errors.Is(msg.err, chat.ErrCanceled):
			m.addNotice("Answer cancelled.", false)
		case msg.err != nil:
			m.addNotice(msg.err.Error(), true)
		}
		m.syncTurns()
		m.refresh()
		return m, nil

	case cancelDoneMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	// one exchange at a time; Enter stays disabled until the answer lands
	if m.busy {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())

	if strings.HasPrefix(text, attachCommand) {
		m.input.Reset()
		m.attach(strings.TrimSpace(strings.TrimPrefix(text, attachCommand)))
		m.refresh()
		return m, nil
	}

	if out, ok := m.router.Execute(m.ctx, m.session.ID(), text); ok {
		m.input.Reset()
		m.addNotice(conv.MarkdownToPlainText([]byte(out)), false)
		m.syncTurns()
		m.refresh()
		return m, nil
	}

	if text == "" && m.pending == nil {
		return m, nil
	}

	in := chat.Input{Text: text, Image: m.pending}
	m.input.Reset()
	m.pending, m.pendingName = nil, ""
	m.busy = true

	ctx, session, observe := m.ctx, m.session, m.observe
	return m, func() tea.Msg {
		_, err := session.Submit(ctx, in, observe)
		if err != nil && !errors.Is(err, chat.ErrCanceled) {
			log.FromCtx(ctx).Error().Err(err).Msg("submit failed")
		}
		return submitDoneMsg{err: err}
	}
}

func (m *Model) attach(path string) {
	if path == "" {
		m.addNotice("Usage: /attach <path to photo>", true)
		return
	}
	img, err := LoadImage(path)
	if err != nil {
		m.addNotice(err.Error(), true)
		return
	}
	m.pending, m.pendingName = img, filepath.Base(path)
	m.addNotice(fmt.Sprintf("Attached %s. It will be sent with your next message.", m.pendingName), false)
}

func (m *Model) addNotice(text string, isErr bool) {
	m.entries = append(m.entries, entry{notice: text, isErr: isErr})
}

// syncTurns adds transcript entries for turns not shown yet.
func (m *Model) syncTurns() {
	for _, t := range m.session.Store().Turns() {
		if !m.seen[t.ID] {
			m.seen[t.ID] = true
			m.entries = append(m.entries, entry{turnID: t.ID})
		}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m Model) transcript() string {
	turns := make(map[string]core.Turn)
	for _, t := range m.session.Store().Turns() {
		turns[t.ID] = t
	}

	var b strings.Builder
	for _, e := range m.entries {
		if e.turnID == "" {
			style := ui.NoticeStyle
			if e.isErr {
				style = ui.ErrorStyle
			}
			b.WriteString(style.Render(e.notice) + "\n\n")
			continue
		}

		t, ok := turns[e.turnID]
		if !ok {
			continue
		}
		b.WriteString(renderTurn(t) + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTurn(t core.Turn) string {
	if t.Role == core.RoleUser {
		text := t.Text
		if t.HasImage() {
			text += " 📷"
		}
		return ui.FarmerStyle.Render("You: ") + text
	}

	text := t.Text
	if t.Final {
		text = conv.MarkdownToPlainText([]byte(t.Text))
	} else {
		text += " ▍"
	}
	return ui.AdvisorStyle.Render(core.AdvisorName+": ") + text
}

func (m Model) View() string {
	if m.closing {
		return ""
	}

	status := string(m.session.ID())
	if m.busy {
		status = "thinking… (esc to cancel)"
	} else if m.pendingName != "" {
		status = "📷 " + m.pendingName
	}

	header := ui.HeaderStyle.Render(core.AdvisorName+" 🌾") + " " + ui.DescStyle.Render(status)
	return header + "\n" +
		m.viewport.View() + "\n" +
		m.input.View() + "\n" +
		ui.DescStyle.Render(helpLine)
}

// Run shows the panel until the farmer quits.
func Run(ctx context.Context, session *chat.Session, router core.CmdRouter) error {
	p := tea.NewProgram(New(ctx, session, router), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
