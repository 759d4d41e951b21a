// Package screen defines the contract between the router and the
// individual full-screen views of the quiz.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/aniquiz/aniquiz/internal/ui/layout"
)

// Screen is one routed view.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the body between header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// InputCapturer is implemented by screens that are editing text. While it
// reports true the app leaves Esc to the screen instead of going back.
type InputCapturer interface {
	CapturingInput() bool
}
