package chat

import (
	"strings"

	"mealchat/internal/session"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// VIEW RENDERING
// =============================================================================

func (m Model) renderHistory() string {
	state := m.ctrl.Snapshot()
	wrap := m.layout.WrapWidth()

	if len(state.Messages) == 0 && !state.IsLoading {
		return m.styles.Muted.Render("List a few ingredients and press Enter for a meal idea.")
	}

	blocks := make([]string, 0, len(state.Messages)+1)
	for _, msg := range state.Messages {
		switch msg.Sender {
		case session.SenderUser:
			blocks = append(blocks, m.styles.UserLabel.Render("You")+"\n"+
				m.styles.UserBubble.Width(wrap).Render(msg.Text))

		default: // bot
			blocks = append(blocks, m.styles.BotLabel.Render("Chef")+"\n"+
				m.styles.BotBubble.Render(m.safeRenderMarkdown(msg.Text)))
		}
	}

	// Typing indicator goes after the last real message.
	if state.IsLoading {
		blocks = append(blocks, m.styles.BotLabel.Render("Chef")+"\n"+
			m.styles.Typing.Render(m.spinner.View()))
	}

	return strings.Join(blocks, "\n\n")
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return strings.Trim(rendered, "\n")
		}
	}
	return content
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.styles.Content.Render(m.viewport.View()),
		m.renderInput(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" mealchat ")

	var status string
	if m.ctrl.Awaiting() {
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Muted.Render("Cooking up a suggestion..."))
	} else {
		status = m.styles.Ready.Render("Ready")
	}

	headerLine := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status)
	return lipgloss.JoinVertical(lipgloss.Left, headerLine, m.styles.RenderDivider(m.width))
}

func (m Model) renderInput() string {
	box, send := m.styles.InputBox, m.styles.SendButton
	if m.ctrl.Awaiting() {
		box, send = m.styles.InputBoxDisabled, m.styles.SendDisabled
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		box.Render(m.input.View()),
		" ",
		send.Render("Send"),
	)
}

func (m Model) renderFooter() string {
	hint := "Enter: send | PgUp/PgDn: scroll | Esc: quit"
	if m.ctrl.Awaiting() {
		hint = "waiting for the kitchen... | PgUp/PgDn: scroll | Esc: quit"
	}
	return m.styles.Footer.Render(hint)
}
