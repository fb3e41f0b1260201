package statusbar

import (
	"strings"

	"github.com/germanamz/localwriter/cmd/localwriter/internal/styles"
	"github.com/germanamz/localwriter/pkg/connectivity"
)

// Model shows backend connectivity, the loaded model, and a transient notice.
type Model struct {
	State  connectivity.State
	Notice string
}

// New returns a status bar in the Checking state.
func New() Model {
	return Model{State: connectivity.State{Status: connectivity.StatusChecking}}
}

func (m Model) View() string {
	parts := []string{Indicator(m.State)}

	if info := m.State.ModelInfo; m.State.Status == connectivity.StatusConnected && info != nil && info.ModelName != "" {
		model := info.ModelName
		if info.Status != "" {
			model += " (" + info.Status + ")"
		}
		parts = append(parts, styles.StatusStyle.Render(model))
	}

	if m.Notice != "" {
		parts = append(parts, styles.SuccessStyle.Render(m.Notice))
	}

	return " " + strings.Join(parts, styles.DimStyle.Render(" · "))
}

// Indicator renders the colored dot and label for a connectivity state.
func Indicator(s connectivity.State) string {
	switch s.Status {
	case connectivity.StatusConnected:
		return styles.IndicatorConnected.Render(styles.Dot + " Connected")
	case connectivity.StatusDisconnected:
		return styles.IndicatorDisconnected.Render(styles.Dot + " Disconnected")
	default:
		return styles.IndicatorChecking.Render(styles.Dot + " Checking...")
	}
}
