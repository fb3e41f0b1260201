// Package markdown renders generated text for the terminal.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// IsDarkBG is set once before bubbletea starts so that glamour never issues
// its own OSC 11 query while the program is running.
var IsDarkBG bool

var (
	renderer      *glamour.TermRenderer
	rendererMu    sync.Mutex
	rendererWidth int
)

// Init builds the renderer for the given wrap width. Calling it again with
// the same width is a no-op.
func Init(width int) {
	if width <= 0 {
		width = 100
	}

	rendererMu.Lock()
	defer rendererMu.Unlock()

	if width == rendererWidth && renderer != nil {
		return
	}

	// glamour.WithAutoStyle() queries the terminal and races with bubbletea's
	// input handling, so the style is picked from the pre-detected background.
	style := glamourstyles.LightStyleConfig
	if IsDarkBG {
		style = glamourstyles.DarkStyleConfig
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return
	}

	renderer = r
	rendererWidth = width
}

// Render converts markdown to terminal output. The text is returned as is
// when no renderer has been initialized or rendering fails.
func Render(text string) string {
	rendererMu.Lock()
	r := renderer
	rendererMu.Unlock()

	if r == nil {
		return text
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}

	return strings.Trim(out, "\n")
}
