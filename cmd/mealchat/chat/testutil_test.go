// Package chat provides test utilities for TUI testing.
// This file contains mocks, fixtures, and helpers for testing the chat package.
package chat

import (
	"context"
	"sync"
	"testing"

	"mealchat/cmd/mealchat/ui"
	"mealchat/internal/mealapi"
	"mealchat/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// MOCK REQUESTER
// =============================================================================

// MockRequester stands in for the chat API client.
type MockRequester struct {
	mu         sync.Mutex
	calls      []string
	suggestion mealapi.Suggestion
	err        error
}

// Chat records the call and returns the configured result.
func (r *MockRequester) Chat(_ context.Context, message string) (mealapi.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, message)
	return r.suggestion, r.err
}

// Calls returns the messages sent so far.
func (r *MockRequester) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// =============================================================================
// TEST MODEL
// =============================================================================

// TestModelOption customizes a test model.
type TestModelOption func(*Model)

// NewTestModel creates a sized, ready model backed by req. The markdown
// renderer is disabled so bot text renders verbatim.
func NewTestModel(req session.Requester, opts ...TestModelOption) Model {
	styles := ui.NewStyles(ui.LightTheme())
	m := New(Config{
		Controller: session.New(req, session.WithID("test-session")),
		Styles:     &styles,
	})
	m.renderer = nil
	m.resize(100, 40)

	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// WithRenderer re-enables markdown rendering.
func WithRenderer() TestModelOption {
	return func(m *Model) {
		m.renderer = newRenderer(false, m.layout.WrapWidth())
	}
}

// typeText feeds s into the model as a single rune key event.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

// pressEnter submits the current input.
func pressEnter(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

// collectReplies runs cmd (expanding batches) and returns the replies it
// produced. Other messages are discarded.
func collectReplies(t *testing.T, cmd tea.Cmd) []replyMsg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	var out []replyMsg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collectReplies(t, c)...)
		}
	case replyMsg:
		out = append(out, msg)
	}
	return out
}

// deliver feeds each reply back into the model.
func deliver(t *testing.T, m Model, replies []replyMsg) Model {
	t.Helper()
	for _, r := range replies {
		next, _ := m.Update(r)
		m = next.(Model)
	}
	return m
}
