package chat

import (
	"errors"

	"mealchat/cmd/mealchat/ui"
	"mealchat/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			cmds = append(cmds, m.submit())

		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)

		default:
			// The text field is inert while a request is outstanding.
			if m.ctrl.Awaiting() {
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.ctrl.SetInput(m.input.Value())
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case replyMsg:
		if err := m.ctrl.Resolve(msg.pending, msg.outcome); err != nil {
			m.logger.Warn("dropped reply", zap.Uint64("seq", msg.pending.Seq), zap.Error(err))
			break
		}
		cmds = append(cmds, m.input.Focus())

	case spinner.TickMsg:
		if m.ctrl.Awaiting() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
			m.viewport.SetContent(m.renderHistory())
		}
	}

	m.syncViewport()
	return m, tea.Batch(cmds...)
}

// submit hands the field's text to the controller. On success the field is
// cleared and blurred and the request command is returned.
func (m *Model) submit() tea.Cmd {
	p, err := m.ctrl.Submit(m.input.Value())
	if err != nil {
		if !errors.Is(err, session.ErrEmptyInput) && !errors.Is(err, session.ErrBusy) {
			m.logger.Error("submit failed", zap.Error(err))
		}
		return nil
	}
	m.input.Reset()
	m.input.Blur()
	m.logger.Debug("request dispatched", zap.Uint64("seq", p.Seq))
	return tea.Batch(m.sendCmd(p), m.spinner.Tick)
}

// sendCmd runs the outbound call off the event loop.
func (m Model) sendCmd(p session.Pending) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return replyMsg{pending: p, outcome: ctrl.Dispatch(ctx, p)}
	}
}

// syncViewport is the scroll effect: after any commit to the log or the
// loading flag, re-render the list and pin it to the bottom.
func (m *Model) syncViewport() {
	rev := m.ctrl.Revision()
	if rev == m.renderedRevision {
		return
	}
	m.renderedRevision = rev
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	m.scrolls++
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	m.layout = ui.NewLayoutConfig(width, height)
	m.viewport.Width = m.layout.ViewportWidth()
	m.viewport.Height = m.layout.ViewportHeight()
	m.input.Width = m.layout.InputWidth()
	if m.renderer != nil {
		m.renderer = newRenderer(m.styles.Theme.IsDark, m.layout.WrapWidth())
	}
	m.ready = true

	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}
