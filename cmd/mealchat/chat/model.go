// Package chat provides the interactive TUI chat interface for mealchat.
// The Model renders a session.Controller: a text field, a scrolling
// message list and a typing indicator, with one outbound request per
// submission running as a tea.Cmd.
package chat

import (
	"context"

	"mealchat/cmd/mealchat/ui"
	"mealchat/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// DefaultPlaceholder is shown in the empty text field.
const DefaultPlaceholder = "Type your ingredients..."

// Config holds configuration for initializing the chat interface.
type Config struct {
	// Controller owns the session state. Required.
	Controller *session.Controller
	// Styles defaults to ui.DefaultStyles().
	Styles *ui.Styles
	// Placeholder defaults to DefaultPlaceholder.
	Placeholder string
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Context is passed to outbound requests. Defaults to context.Background().
	Context context.Context
}

// Model is the main model for the interactive chat interface
type Model struct {
	// UI Components
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles
	renderer *glamour.TermRenderer
	layout   ui.LayoutConfig

	// State
	ctrl             *session.Controller
	renderedRevision uint64
	scrolls          int // completed scroll-to-bottom passes
	width            int
	height           int
	ready            bool

	// Backend
	ctx    context.Context
	logger *zap.Logger
}

// replyMsg carries the outcome of one outbound request back to Update.
type replyMsg struct {
	pending session.Pending
	outcome session.Outcome
}

// New creates the chat model for cfg.
func New(cfg Config) Model {
	styles := ui.DefaultStyles()
	if cfg.Styles != nil {
		styles = *cfg.Styles
	}
	placeholder := cfg.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Accent)

	layout := ui.NewLayoutConfig(80, 24)
	vp := viewport.New(layout.ViewportWidth(), layout.ViewportHeight())

	return Model{
		input:    ti,
		viewport: vp,
		spinner:  sp,
		styles:   styles,
		renderer: newRenderer(styles.Theme.IsDark, layout.WrapWidth()),
		layout:   layout,
		ctrl:     cfg.Controller,
		ctx:      ctx,
		logger:   logger,
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Controller returns the session controller behind the model.
func (m Model) Controller() *session.Controller {
	return m.ctrl
}

// newRenderer builds the markdown renderer for bot messages.
func newRenderer(dark bool, wrap int) *glamour.TermRenderer {
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}
