package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"go.uber.org/zap"

	"github.com/evallife/llm-playground/internal/session"
	"github.com/evallife/llm-playground/internal/types"
)

type viewState uint

const (
	chatView viewState = iota
	presetsView
	settingsView
)

// turnResult carries a resolved turn back into Update.
type turnResult session.Outcome

type item struct {
	prompt types.SystemPrompt
}

func (i item) Title() string       { return i.prompt.Name }
func (i item) Description() string { return oneLine(i.prompt.Content, 60) }
func (i item) FilterValue() string { return i.prompt.Name }

type Model struct {
	ctrl        *session.Controller
	state       viewState
	viewport    viewport.Model
	textarea    textarea.Model
	list        list.Model
	spinner     spinner.Model
	inputs      []textinput.Model // settings, indexed by the field* constants
	focusIndex  int               // which input is focused in settings; len(inputs) is the save button
	renderer    *glamour.TermRenderer
	turnErr     string
	notice      string
	settingsErr string
	width       int
	height      int
	zoneManager *zone.Manager
}

func NewModel(cfg types.Config, transport session.Transport, logger *zap.Logger) Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message or /help..."
	ta.Focus()
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetEnabled(false) // Enter to send

	vp := viewport.New(80, 20)

	items := make([]list.Item, 0, len(Presets()))
	for _, p := range Presets() {
		items = append(items, item{prompt: p})
	}
	l := list.New(items, list.NewDefaultDelegate(), 80, 20)
	l.Title = "System Prompts"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = fieldLabels[i]
		inputs[i].CharLimit = 0
		inputs[i].Width = 60
	}
	inputs[fieldAPIKey].EchoMode = textinput.EchoPassword
	inputs[fieldAPIKey].EchoCharacter = '*'

	m := Model{
		ctrl:        session.NewController(cfg, transport, session.WithLogger(logger)),
		state:       chatView,
		textarea:    ta,
		viewport:    vp,
		list:        l,
		spinner:     sp,
		inputs:      inputs,
		renderer:    newRenderer(80),
		zoneManager: zone.New(),
	}
	m.renderMessages()
	return m
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	if m.state == settingsView {
		return m.updateSettings(msg)
	}

	if m.state == presetsView {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "enter":
				if selected, ok := m.list.SelectedItem().(item); ok {
					cfg := m.ctrl.Config()
					cfg.SystemPrompt = selected.prompt.Content
					m.ctrl.SetConfig(cfg)
					m.notice = fmt.Sprintf("System prompt set to: %s", selected.prompt.Name)
				}
				m.state = chatView
				m.renderMessages()
				return m, nil
			case "esc", "ctrl+p":
				m.state = chatView
				return m, nil
			}
		}
		m.list, tiCmd = m.list.Update(msg)
		return m, tiCmd
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	// Letter keys belong to the textarea; the viewport only scrolls by page.
	if key, ok := msg.(tea.KeyMsg); !ok || key.Type == tea.KeyPgUp || key.Type == tea.KeyPgDown {
		m.viewport, vpCmd = m.viewport.Update(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if m.zoneManager.Get("textarea").InBounds(msg) {
				m.textarea.Focus()
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 8
		m.textarea.SetWidth(msg.Width)
		m.list.SetSize(msg.Width, msg.Height)
		m.renderer = newRenderer(msg.Width - 4)
		m.renderMessages()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			input := m.textarea.Value()
			if strings.TrimSpace(input) == "" {
				return m, nil
			}
			return m.handleInput(input)
		case "ctrl+n":
			m.notice = m.clearConversation()
			m.renderMessages()
			m.viewport.GotoTop()
			return m, nil
		case "ctrl+p":
			m.state = presetsView
			return m, nil
		case "ctrl+s":
			m.openSettings()
			return m, textinput.Blink
		}

	case spinner.TickMsg:
		if m.ctrl.State() != session.AwaitingReply {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.renderMessages()
		return m, cmd

	case turnResult:
		if msg.Err != nil {
			m.turnErr = session.ErrorText(msg.Err)
		}
		m.renderMessages()
		m.viewport.GotoBottom()
		return m, nil
	}

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m Model) updateSettings(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			for i := range m.inputs {
				if m.zoneManager.Get(fmt.Sprintf("input-%d", i)).InBounds(msg) {
					m.focusIndex = i
					return m, m.focusInputs()
				}
			}
			if m.zoneManager.Get("save-btn").InBounds(msg) {
				m.focusIndex = len(m.inputs)
				m.saveSettings()
				return m, nil
			}
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.state = chatView
			return m, nil
		case "tab", "shift+tab", "up", "down":
			s := msg.String()
			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}

			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}
			return m, m.focusInputs()

		case "enter":
			if m.focusIndex == len(m.inputs) {
				m.saveSettings()
				return m, nil
			}
			m.focusIndex++
			return m, m.focusInputs()
		}
	}

	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) focusInputs() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		if i == m.focusIndex {
			cmds[i] = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return tea.Batch(cmds...)
}

func (m *Model) openSettings() {
	values := settingsFromConfig(m.ctrl.Config())
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
	}
	m.settingsErr = ""
	m.focusIndex = 0
	m.focusInputs()
	m.state = settingsView
}

func (m *Model) saveSettings() {
	var v settingsValues
	for i := range m.inputs {
		v[i] = m.inputs[i].Value()
	}
	cfg, err := parseSettings(v)
	if err != nil {
		m.settingsErr = err.Error()
		return
	}
	m.ctrl.SetConfig(cfg)
	m.settingsErr = ""
	m.state = chatView
	m.renderMessages()
}

func (m *Model) clearConversation() string {
	if err := m.ctrl.Clear(); err != nil {
		return busyNotice(err)
	}
	m.turnErr = ""
	return "Conversation cleared."
}

// handleInput keeps the typed text when the turn cannot start.
func (m Model) handleInput(input string) (Model, tea.Cmd) {
	if isCommand(input) {
		m.textarea.Reset()
		notice, cleared := runCommand(m.ctrl, input)
		if cleared {
			m.turnErr = ""
		}
		m.notice = notice
		m.renderMessages()
		return m, nil
	}

	if err := m.ctrl.Begin(input); err != nil {
		m.notice = busyNotice(err)
		return m, nil
	}
	m.textarea.Reset()
	m.turnErr = ""
	m.notice = ""
	m.renderMessages()
	m.viewport.GotoBottom()
	return m, tea.Batch(m.spinner.Tick, m.resolveTurn())
}

func (m Model) resolveTurn() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return turnResult(ctrl.Resolve(context.Background()))
	}
}

func (m *Model) renderMessages() {
	var sb strings.Builder
	cfg := m.ctrl.Config()
	if cfg.SystemPrompt != "" {
		sb.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
			Render("System Prompt: "+oneLine(cfg.SystemPrompt, 70)) + "\n\n")
	}
	for _, msg := range m.ctrl.Messages() {
		sb.WriteString(roleHeader(msg.Role) + "\n")
		sb.WriteString(renderMarkdown(m.renderer, msg.Content) + "\n\n")
	}
	switch {
	case m.ctrl.State() == session.AwaitingReply:
		sb.WriteString(roleHeader(types.RoleAssistant) + "\n")
		sb.WriteString(m.spinner.View() + " " + session.ThinkingText + "\n")
	case m.turnErr != "":
		sb.WriteString(roleHeader(types.RoleAssistant) + "\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(m.turnErr) + "\n")
	}
	m.viewport.SetContent(sb.String())
}

func roleHeader(role types.Role) string {
	roleColor := "5" // Purple for User
	if role == types.RoleAssistant {
		roleColor = "2" // Green for AI
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(roleColor)).Render(role.DisplayName())
}

func (m Model) View() string {
	if m.state == settingsView {
		var b strings.Builder
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")).Render("SETTINGS\n\n"))

		for i := range m.inputs {
			b.WriteString(fmt.Sprintf("%s\n%s\n\n",
				lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(fieldLabels[i]),
				m.zoneManager.Mark(fmt.Sprintf("input-%d", i), m.inputs[i].View())))
		}

		buttonStyle := lipgloss.NewStyle().Padding(0, 3).MarginTop(1)
		if m.focusIndex == len(m.inputs) {
			buttonStyle = buttonStyle.Background(lipgloss.Color("5")).Foreground(lipgloss.Color("15"))
		} else {
			buttonStyle = buttonStyle.Background(lipgloss.Color("240")).Foreground(lipgloss.Color("250"))
		}
		b.WriteString(m.zoneManager.Mark("save-btn", buttonStyle.Render(" SAVE ")))
		if m.settingsErr != "" {
			b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(m.settingsErr))
		}
		b.WriteString("\n\n[Tab: Switch | Enter: Next/Save | Esc: Back]")

		return m.zoneManager.Scan(lipgloss.NewStyle().Padding(1, 4).Render(b.String()))
	}

	if m.state == presetsView {
		return m.list.View()
	}

	body := m.viewport.View()
	if m.notice != "" {
		body += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render(m.notice)
	}

	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("\n[Enter: Send | Ctrl+N: Clear | Ctrl+P: Prompts | Ctrl+S: Settings | Esc: Quit]")
	return m.zoneManager.Scan(lipgloss.JoinVertical(
		lipgloss.Left,
		body,
		"\n",
		m.zoneManager.Mark("textarea", m.textarea.View()),
		footer,
	))
}

// oneLine flattens s and cuts it to n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
