// Package tui renders the chat surface: the transcript viewport, the command
// input, the recent-task sidebar, and the settings form. All background work
// reaches the UI through the event queue, drained on a fixed tick, so the
// render loop never blocks on the agent.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/machovotrish/luma/pkg/agent"
	"github.com/machovotrish/luma/pkg/config"
	"github.com/machovotrish/luma/pkg/events"
	"github.com/machovotrish/luma/pkg/log"
	"github.com/machovotrish/luma/pkg/runner"
	"github.com/machovotrish/luma/pkg/store"
	"github.com/machovotrish/luma/pkg/utils"
)

// InputPlaceholder is the hint text shown in the empty command input.
const InputPlaceholder = "Message Luma"

// UserSender is the display name on the user's own messages.
const UserSender = "You"

const (
	tickInterval    = 100 * time.Millisecond
	sidebarWidth    = 34
	sidebarTextWide = 30
)

// suggestions are the canned commands offered while the transcript is empty.
var suggestions = []string{
	"Open YouTube and play 'Beat It' by Michael Jackson",
	"Create a Word document summarizing the latest developments in AGI",
	"Open GitHub Copilot and ask it 'What is AGI?'",
}

type mode int

const (
	chatMode mode = iota
	settingsMode
)

type panel int

const (
	chatPanel panel = iota
	inputPanel
	sidebarPanel
	panelCount
)

// Styles
var (
	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(0, 1)

	inactivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	agentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1)

	runningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	suggestionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Foreground(lipgloss.Color("248"))

	sidebarSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))
)

// Options wires the model to the rest of the application.
type Options struct {
	// Config is the loaded application configuration
	Config *config.Config
	// Store persists settings and histories
	Store *store.Store
	// Runner owns the task slot
	Runner *runner.Runner
	// Queue delivers chat and control events
	Queue *events.Queue
	// AgentName is the display name used in the status bar
	AgentName string
	// Degraded notes that the agent is unavailable; the UI still opens
	Degraded bool
	// DegradedReason explains the degraded state in the startup notice
	DegradedReason string
}

// Model is the bubbletea model for the chat surface.
type Model struct {
	opts Options

	// UI components
	transcript viewport.Model
	input      textarea.Model

	// State
	mode        mode
	activePanel panel
	messages    []agent.ChatMessage
	taskHistory []string
	sidebarIdx  int
	settings    store.Settings
	form        settingsForm
	width       int
	height      int
	ready       bool
	quitting    bool
}

type tickMsg struct{}

// New builds the model, replaying the tail of the persisted transcript and
// loading the task history for the sidebar.
func New(opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = InputPlaceholder
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.SetHeight(2)
	ta.CharLimit = 0
	ta.Focus()

	m := Model{
		opts:        opts,
		input:       ta,
		activePanel: inputPanel,
		settings:    opts.Store.LoadSettings(),
		taskHistory: opts.Store.LoadTaskHistory(),
	}

	replay := opts.Config.Storage.ReplayMessages
	m.messages = append(m.messages, store.LastMessages(opts.Store.LoadChatHistory(), replay)...)

	if opts.Degraded {
		reason := opts.DegradedReason
		if reason == "" {
			reason = "the automation agent is not available"
		}
		m.messages = append(m.messages, agent.NewChatMessage(
			runner.SystemSender,
			"⚠️ Running in degraded mode: "+reason+". Tasks cannot be started until it is fixed.",
			agent.KindSystem,
		))
	}

	m.form = newSettingsForm(m.settings, opts.Store.LoadCredential())

	return m
}

// Run starts the program and blocks until the user quits. The transcript is
// persisted on the way out.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}

	if m, ok := final.(Model); ok {
		if saveErr := opts.Store.SaveChatHistory(m.messages); saveErr != nil {
			log.WithError(saveErr).Error("failed to persist transcript at shutdown")
		}
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == settingsMode {
			return m.updateSettings(msg)
		}
		return m.updateChat(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tickMsg:
		m.drainEvents()
		cmds = append(cmds, tick())
	}

	if m.ready && m.mode == chatMode {
		switch m.activePanel {
		case inputPanel:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		case chatPanel:
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return *m, tea.Quit

	case "ctrl+g":
		m.mode = settingsMode
		m.form = newSettingsForm(m.settings, m.opts.Store.LoadCredential())
		return *m, m.form.focusFirst()

	case "tab":
		m.activePanel = (m.activePanel + 1) % panelCount
		if m.activePanel == inputPanel {
			cmds = append(cmds, m.input.Focus())
		} else {
			m.input.Blur()
		}
		return *m, tea.Batch(cmds...)

	case "ctrl+s", "enter":
		if m.activePanel == sidebarPanel && msg.String() == "enter" {
			m.recallSidebarTask()
			return *m, nil
		}
		if m.activePanel == inputPanel || msg.String() == "ctrl+s" {
			m.startTask(m.input.Value())
			return *m, nil
		}

	case "ctrl+x":
		m.opts.Runner.Stop()
		return *m, nil

	case "up", "k":
		switch m.activePanel {
		case sidebarPanel:
			if m.sidebarIdx > 0 {
				m.sidebarIdx--
			}
			return *m, nil
		case chatPanel:
			m.transcript.ScrollUp(1)
			return *m, nil
		}

	case "down", "j":
		switch m.activePanel {
		case sidebarPanel:
			if m.sidebarIdx < len(m.recentTasks())-1 {
				m.sidebarIdx++
			}
			return *m, nil
		case chatPanel:
			m.transcript.ScrollDown(1)
			return *m, nil
		}

	case "pgup":
		if m.activePanel == chatPanel {
			m.transcript.HalfPageUp()
			return *m, nil
		}

	case "pgdown":
		if m.activePanel == chatPanel {
			m.transcript.HalfPageDown()
			return *m, nil
		}

	case "f1", "f2", "f3":
		if len(m.messages) == 0 || onlySystemMessages(m.messages) {
			idx := int(msg.String()[1] - '1')
			if idx >= 0 && idx < len(suggestions) {
				m.input.SetValue(suggestions[idx])
				m.activePanel = inputPanel
				cmds = append(cmds, m.input.Focus())
			}
			return *m, tea.Batch(cmds...)
		}
	}

	if m.activePanel == inputPanel {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return *m, tea.Batch(cmds...)
}

// startTask submits the input text to the runner. On acceptance the user
// message is appended and the task history grows by exactly one entry.
func (m *Model) startTask(text string) {
	command := strings.TrimSpace(text)
	if command == "" || command == InputPlaceholder {
		return
	}

	task, err := m.opts.Runner.Start(command)
	switch {
	case err == nil:
		m.appendMessage(agent.NewChatMessage(UserSender, command, agent.KindUser))
		m.taskHistory = append(m.taskHistory, command)
		m.sidebarIdx = 0
		if saveErr := m.opts.Store.SaveTaskHistory(m.taskHistory); saveErr != nil {
			log.WithError(saveErr).Error("failed to persist task history")
		}
		m.input.Reset()
		log.WithField("task_id", task.ID).Debug("task submitted from input")

	case err == runner.ErrAlreadyRunning:
		m.appendMessage(agent.NewChatMessage(runner.SystemSender,
			"A task is already running, stop it first with ctrl+x", agent.KindSystem))

	case err == runner.ErrNoCredential:
		m.appendMessage(agent.NewChatMessage(runner.SystemSender,
			"No API key configured, add one in settings (ctrl+g)", agent.KindError))

	case err == runner.ErrAgentUnavailable:
		reason := m.opts.DegradedReason
		if reason == "" {
			reason = "the automation agent is not available"
		}
		m.appendMessage(agent.NewChatMessage(runner.SystemSender,
			"Cannot start task: "+reason+". Run 'luma doctor' to see what is missing.", agent.KindError))

	case err == runner.ErrEmptyCommand:
		// Nothing to do.

	default:
		m.appendMessage(agent.NewChatMessage(runner.SystemSender,
			"Could not start task: "+err.Error(), agent.KindError))
	}
}

func (m *Model) recallSidebarTask() {
	recent := m.recentTasks()
	if m.sidebarIdx < 0 || m.sidebarIdx >= len(recent) {
		return
	}
	m.input.SetValue(recent[m.sidebarIdx])
	m.activePanel = inputPanel
	m.input.Focus()
}

func (m *Model) recentTasks() []string {
	return store.RecentTasks(m.taskHistory, m.opts.Config.Storage.SidebarTasks)
}

// drainEvents empties the queue in order. Chat events append to the
// transcript; control events only trigger the re-render that follows.
func (m *Model) drainEvents() {
	for _, ev := range m.opts.Queue.Drain() {
		if ev.Type == events.TypeChat {
			m.appendMessage(ev.Message)
		}
	}
}

func (m *Model) appendMessage(msg agent.ChatMessage) {
	m.messages = append(m.messages, msg)
	if err := m.opts.Store.SaveChatHistory(m.messages); err != nil {
		log.WithError(err).Error("failed to persist transcript")
	}
	if m.ready {
		m.transcript.SetContent(m.renderTranscript())
		m.transcript.GotoBottom()
	}
}

func (m *Model) layout() {
	chatWidth := m.width - sidebarWidth - 6
	chatHeight := m.height - 10

	if !m.ready {
		m.transcript = viewport.New(chatWidth, chatHeight)
		m.ready = true
	} else {
		m.transcript.Width = chatWidth
		m.transcript.Height = chatHeight
	}
	m.transcript.SetContent(m.renderTranscript())
	m.transcript.GotoBottom()
	m.input.SetWidth(chatWidth - 2)
}

func onlySystemMessages(messages []agent.ChatMessage) bool {
	for _, msg := range messages {
		if msg.Kind != agent.KindSystem {
			return false
		}
	}
	return true
}

func (m Model) View() string {
	if !m.ready {
		return "Starting Luma..."
	}
	if m.quitting {
		return ""
	}
	if m.mode == settingsMode {
		return m.viewSettings()
	}
	return m.viewChat()
}

func (m Model) viewChat() string {
	chatWidth := m.width - sidebarWidth - 6

	chatStyle := inactivePanelStyle
	if m.activePanel == chatPanel {
		chatStyle = activePanelStyle
	}
	chatView := chatStyle.Width(chatWidth).Render(m.transcript.View())

	inputStyle := inactivePanelStyle
	if m.activePanel == inputPanel {
		inputStyle = activePanelStyle
	}
	inputView := inputStyle.Width(chatWidth).Render(m.input.View())

	sidebarStyle := inactivePanelStyle
	if m.activePanel == sidebarPanel {
		sidebarStyle = activePanelStyle
	}
	sidebarView := sidebarStyle.Width(sidebarWidth).Render(m.renderSidebar())

	left := lipgloss.JoinVertical(lipgloss.Left, chatView, m.renderSuggestions(chatWidth), inputView)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, sidebarView)

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

func (m Model) renderTranscript() string {
	if len(m.messages) == 0 {
		return systemStyle.Render("No messages yet. Describe a task below, or pick a suggestion with f1-f3.")
	}

	var sb strings.Builder
	for _, msg := range m.messages {
		ts := timestampStyle.Render("[" + msg.Timestamp + "]")

		var sender string
		switch msg.Kind {
		case agent.KindUser:
			sender = userStyle.Render(msg.Sender)
		case agent.KindAgent:
			sender = agentStyle.Render(msg.Sender)
		case agent.KindError:
			sender = errorStyle.Render(msg.Sender)
		default:
			sender = systemStyle.Render(msg.Sender)
		}

		body := msg.Body
		if msg.Kind == agent.KindSystem {
			body = systemStyle.Render(body)
		} else if msg.Kind == agent.KindError {
			body = errorStyle.Render(body)
		}

		sb.WriteString(fmt.Sprintf("%s %s: %s\n", ts, sender, body))
	}
	return sb.String()
}

func (m Model) renderSuggestions(width int) string {
	if len(m.messages) > 0 && !onlySystemMessages(m.messages) {
		return ""
	}

	cardWidth := width/3 - 4
	if cardWidth < 16 {
		return ""
	}

	cards := make([]string, 0, len(suggestions))
	for i, s := range suggestions {
		label := fmt.Sprintf("f%d %s", i+1, utils.Truncate(s, cardWidth*2))
		cards = append(cards, suggestionStyle.Width(cardWidth).Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m Model) renderSidebar() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Recent Tasks"))
	sb.WriteString("\n\n")

	recent := m.recentTasks()
	if len(recent) == 0 {
		sb.WriteString(systemStyle.Render("No tasks yet"))
		return sb.String()
	}

	for i, task := range recent {
		entry := utils.SidebarEntry(task, sidebarTextWide)
		if m.activePanel == sidebarPanel && i == m.sidebarIdx {
			sb.WriteString(sidebarSelectedStyle.Render("› " + entry))
		} else {
			sb.WriteString("  " + entry)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderStatusBar() string {
	var state string
	if m.opts.Runner.State() == runner.StateRunning {
		state = runningStyle.Render("● running")
	} else {
		state = idleStyle.Render("○ idle")
	}

	agentLabel := m.opts.AgentName
	if m.opts.Degraded {
		agentLabel += " (degraded)"
	}

	help := helpStyle.Render("enter send • ctrl+x stop • ctrl+g settings • tab panels • ctrl+c quit")
	return statusBarStyle.Render(fmt.Sprintf("%s  %s  %s", state, agentLabel, help))
}
