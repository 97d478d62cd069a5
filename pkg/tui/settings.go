package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/machovotrish/luma/pkg/agent"
	"github.com/machovotrish/luma/pkg/log"
	"github.com/machovotrish/luma/pkg/runner"
	"github.com/machovotrish/luma/pkg/store"
)

// settingsForm edits the API key and the rule slots. Saving persists both
// documents and drops a confirmation notice into the chat; leaving with esc
// discards the edits.
type settingsForm struct {
	apiKey textinput.Model
	rules  []textinput.Model
	focus  int
}

func newSettingsForm(settings store.Settings, credential string) settingsForm {
	key := textinput.New()
	key.Placeholder = "API key"
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '•'
	key.CharLimit = 256
	key.SetValue(credential)

	rules := make([]textinput.Model, store.MaxRules)
	for i := range rules {
		ti := textinput.New()
		ti.Placeholder = fmt.Sprintf("Rule %d", i+1)
		ti.CharLimit = 500
		if i < len(settings.Rules) {
			ti.SetValue(settings.Rules[i])
		}
		rules[i] = ti
	}

	return settingsForm{apiKey: key, rules: rules}
}

func (f *settingsForm) focusFirst() tea.Cmd {
	f.focus = 0
	return f.applyFocus()
}

func (f *settingsForm) fieldCount() int {
	return 1 + len(f.rules)
}

func (f *settingsForm) applyFocus() tea.Cmd {
	var cmd tea.Cmd
	if f.focus == 0 {
		cmd = f.apiKey.Focus()
	} else {
		f.apiKey.Blur()
	}
	for i := range f.rules {
		if f.focus == i+1 {
			cmd = f.rules[i].Focus()
		} else {
			f.rules[i].Blur()
		}
	}
	return cmd
}

func (f *settingsForm) ruleValues() []string {
	values := make([]string, len(f.rules))
	for i, ti := range f.rules {
		values[i] = ti.Value()
	}
	return values
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return *m, tea.Quit

	case "esc":
		m.mode = chatMode
		return *m, nil

	case "tab", "down":
		m.form.focus = (m.form.focus + 1) % m.form.fieldCount()
		return *m, m.form.applyFocus()

	case "shift+tab", "up":
		m.form.focus = (m.form.focus - 1 + m.form.fieldCount()) % m.form.fieldCount()
		return *m, m.form.applyFocus()

	case "ctrl+s", "enter":
		m.saveSettings()
		m.mode = chatMode
		return *m, nil
	}

	var cmd tea.Cmd
	if m.form.focus == 0 {
		m.form.apiKey, cmd = m.form.apiKey.Update(msg)
	} else {
		idx := m.form.focus - 1
		m.form.rules[idx], cmd = m.form.rules[idx].Update(msg)
	}
	return *m, cmd
}

// saveSettings persists the form. Each document gets its own confirmation
// notice so a partial failure is visible.
func (m *Model) saveSettings() {
	m.settings.Rules = m.form.ruleValues()
	if err := m.opts.Store.SaveSettings(m.settings); err != nil {
		log.WithError(err).Error("failed to save settings")
		m.appendMessage(agent.NewChatMessage(runner.SystemSender,
			"Could not save settings: "+err.Error(), agent.KindError))
	} else {
		m.appendMessage(agent.NewChatMessage(runner.SystemSender,
			"✅ Settings saved", agent.KindSystem))
	}

	key := strings.TrimSpace(m.form.apiKey.Value())
	if key != m.opts.Store.LoadCredential() {
		if err := m.opts.Store.SaveCredential(key); err != nil {
			m.appendMessage(agent.NewChatMessage(runner.SystemSender,
				"Could not save API key: "+err.Error(), agent.KindError))
		} else {
			m.appendMessage(agent.NewChatMessage(runner.SystemSender,
				"✅ API key saved", agent.KindSystem))
		}
	}
}

func (m Model) viewSettings() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Settings"))
	sb.WriteString("\n\n")

	sb.WriteString("API key\n")
	sb.WriteString(m.form.apiKey.View())
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Rules (up to %d, injected before every task)\n", store.MaxRules))
	for i := range m.form.rules {
		sb.WriteString(m.form.rules[i].View())
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("enter save • esc back • tab next field"))

	return activePanelStyle.Width(m.width - 4).Render(sb.String())
}
