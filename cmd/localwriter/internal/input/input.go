package input

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/msgs"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/styles"
	"github.com/germanamz/localwriter/pkg/apiclient"
	"github.com/germanamz/localwriter/pkg/format"
	"github.com/mattn/go-runewidth"
)

const (
	minHeight = 3
	maxHeight = 8
)

// Placeholder is shown while the prompt is empty.
const Placeholder = "Enter your topic here... (e.g., 'Write a blog introduction about artificial intelligence')"

// PromptModel wraps a textarea in a rounded border box with a character
// counter underneath.
type PromptModel struct {
	textarea textarea.Model
	Enabled  bool
	width    int
}

// New creates a prompt box limited to apiclient.MaxPromptLength characters.
func New() PromptModel {
	ta := textarea.New()
	ta.Placeholder = Placeholder
	ta.ShowLineNumbers = false
	ta.SetHeight(minHeight)
	ta.CharLimit = apiclient.MaxPromptLength
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = lipgloss.NewStyle()
	ta.BlurredStyle.Prompt = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	// Not focused yet: the terminal may still be answering OSC queries that
	// bubbletea would misread as key presses.

	return PromptModel{textarea: ta}
}

// Update handles a message while the box is enabled. Enter emits
// msgs.SubmitMsg and leaves the text in place so it can be resent.
func (m PromptModel) Update(msg tea.Msg) (PromptModel, tea.Cmd) {
	if !m.Enabled {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter && !keyMsg.Alt {
		return m, func() tea.Msg { return msgs.SubmitMsg{} }
	}

	// Pre-set max height so the textarea won't scroll its viewport during
	// Update. After processing, shrink to the actual content.
	m.textarea.SetHeight(maxHeight)

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)

	m.textarea.SetHeight(m.height())

	return m, cmd
}

// Value returns the current prompt text.
func (m PromptModel) Value() string {
	return m.textarea.Value()
}

// SetValue replaces the prompt text. Text over the limit is truncated.
func (m *PromptModel) SetValue(s string) {
	m.textarea.SetValue(s)
	m.textarea.SetHeight(m.height())
}

// Reset empties the prompt.
func (m *PromptModel) Reset() {
	m.textarea.Reset()
	m.textarea.SetHeight(minHeight)
}

// Focus enables the box and gives it the cursor.
func (m *PromptModel) Focus() tea.Cmd {
	m.Enabled = true
	return m.textarea.Focus()
}

// Blur disables the box.
func (m *PromptModel) Blur() {
	m.Enabled = false
	m.textarea.Blur()
}

// SetWidth sets the outer width including the border.
func (m *PromptModel) SetWidth(w int) {
	m.width = w
	m.textarea.SetWidth(innerWidth(w))
	m.textarea.SetHeight(m.height())
}

func (m PromptModel) View() string {
	border := styles.FocusedBorder
	if !m.Enabled {
		border = styles.DisabledBorder
	}

	inner := innerWidth(m.width)
	m.textarea.SetWidth(inner)
	box := border.Width(inner).Render(m.textarea.View())

	return lipgloss.JoinVertical(lipgloss.Left, box, m.counter())
}

// ViewHeight returns the number of lines View occupies.
func (m PromptModel) ViewHeight() int {
	return lipgloss.Height(m.View())
}

// counter renders "N characters remaining", switching to the warning style
// when fewer than format.LowRemainingThreshold are left.
func (m PromptModel) counter() string {
	remaining := format.Remaining(m.textarea.Value(), apiclient.MaxPromptLength)
	text := fmt.Sprintf(" %d characters remaining", remaining)

	if remaining < format.LowRemainingThreshold {
		return styles.WarningStyle.Render(text)
	}

	return styles.DimStyle.Render(text)
}

func (m PromptModel) height() int {
	lines := visualLineCount(m.textarea.Value(), max(m.textarea.Width(), 1))
	return min(max(lines, minHeight), maxHeight)
}

func innerWidth(w int) int {
	return max(w-4, 10) // border and padding
}

// visualLineCount returns the number of visual lines text occupies at the
// given wrap width, counting both hard newlines and soft wraps.
func visualLineCount(text string, wrapWidth int) int {
	if text == "" {
		return 1
	}

	total := 0
	for line := range strings.SplitSeq(text, "\n") {
		w := runewidth.StringWidth(line)
		if w == 0 {
			total++
			continue
		}
		total += (w-1)/wrapWidth + 1
	}

	return total
}
