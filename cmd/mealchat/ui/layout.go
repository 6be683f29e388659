// Package ui layout constants for consistent spacing and dimensions
package ui

// Layout constants for viewport and panel sizing
const (
	ContentPaddingH = 2 // Content style horizontal padding, per side
	HeaderHeight    = 2 // title line + divider
	InputHeight     = 3 // bordered single-line input
	FooterHeight    = 1

	MinViewportWidth  = 20
	MinViewportHeight = 3

	// Send control rendered to the right of the input box
	SendButtonWidth = 8
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
	}
}

// ViewportWidth returns the width of the message list.
func (l LayoutConfig) ViewportWidth() int {
	return clampMin(l.TerminalWidth-ContentPaddingH*2, MinViewportWidth)
}

// ViewportHeight returns the height of the message list.
func (l LayoutConfig) ViewportHeight() int {
	return clampMin(l.TerminalHeight-HeaderHeight-InputHeight-FooterHeight, MinViewportHeight)
}

// InputWidth returns the width available to the text field inside its box.
func (l LayoutConfig) InputWidth() int {
	// border (2) + padding (2) + gap before the send control (1)
	return clampMin(l.TerminalWidth-SendButtonWidth-5, MinViewportWidth/2)
}

// WrapWidth is the wrap width for message bodies inside the viewport.
func (l LayoutConfig) WrapWidth() int {
	return clampMin(l.ViewportWidth()-4, MinViewportWidth/2)
}

func clampMin(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}
