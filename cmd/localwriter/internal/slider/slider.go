// Package slider is a keyboard-driven temperature slider.
package slider

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/msgs"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/styles"
	"github.com/germanamz/localwriter/pkg/apiclient"
	"github.com/germanamz/localwriter/pkg/format"
)

// Step is the amount one key press moves the value.
const Step = 0.1

const defaultTrackWidth = 20

// KeyMap defines the slider bindings.
type KeyMap struct {
	Decrease key.Binding
	Increase key.Binding
	Min      key.Binding
	Max      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Decrease: key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←/→", "adjust")),
		Increase: key.NewBinding(key.WithKeys("right", "l", "+", "=")),
		Min:      key.NewBinding(key.WithKeys("home")),
		Max:      key.NewBinding(key.WithKeys("end")),
	}
}

// Model holds the slider value within [MinTemperature, MaxTemperature].
type Model struct {
	KeyMap  KeyMap
	Focused bool
	Width   int
	value   float64
}

// New creates a slider at v.
func New(v float64) Model {
	return Model{
		KeyMap: DefaultKeyMap(),
		Width:  defaultTrackWidth,
		value:  clamp(v),
	}
}

// Value returns the current value.
func (m Model) Value() float64 { return m.value }

// SetValue moves the slider to v without emitting a change. Off-grid values
// are kept as they are; the next step snaps to the grid.
func (m *Model) SetValue(v float64) { m.value = clamp(v) }

// Update moves the value on key presses while focused and emits
// msgs.TemperatureChangedMsg when it changed.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.Focused {
		return m, nil
	}

	next := m.value

	switch {
	case key.Matches(keyMsg, m.KeyMap.Decrease):
		next -= Step
	case key.Matches(keyMsg, m.KeyMap.Increase):
		next += Step
	case key.Matches(keyMsg, m.KeyMap.Min):
		next = apiclient.MinTemperature
	case key.Matches(keyMsg, m.KeyMap.Max):
		next = apiclient.MaxTemperature
	default:
		return m, nil
	}

	next = Snap(next)
	if next == m.value {
		return m, nil
	}

	m.value = next

	return m, func() tea.Msg { return msgs.TemperatureChangedMsg{Value: next} }
}

func (m Model) View() string {
	width := max(m.Width, 2)
	span := apiclient.MaxTemperature - apiclient.MinTemperature
	pos := int(math.Round((m.value - apiclient.MinTemperature) / span * float64(width-1)))

	var track strings.Builder
	track.WriteString(styles.SliderFilled.Render(strings.Repeat("━", pos)))
	track.WriteString(styles.SliderKnob.Render("●"))
	track.WriteString(styles.SliderEmpty.Render(strings.Repeat("─", width-1-pos)))

	label := styles.LabelStyle.Render("Temperature")
	if m.Focused {
		label = styles.TitleStyle.Render("Temperature")
	}

	return fmt.Sprintf("%s %s %s  %s",
		label,
		track.String(),
		format.FmtTemperature(m.value),
		styles.DimStyle.Render(format.TemperatureDescription(m.value)),
	)
}

// Snap clamps v to the temperature range and rounds it to one decimal so
// repeated steps do not accumulate float error.
func Snap(v float64) float64 {
	return math.Round(clamp(v)*10) / 10
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return apiclient.DefaultTemperature
	}

	return min(max(v, apiclient.MinTemperature), apiclient.MaxTemperature)
}
