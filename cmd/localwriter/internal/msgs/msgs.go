package msgs

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/germanamz/localwriter/pkg/apiclient"
	"github.com/germanamz/localwriter/pkg/connectivity"
)

// --- Bridge → TUI messages ---

// ConnectivityMsg delivers a connectivity state change from the monitor.
type ConnectivityMsg struct {
	State connectivity.State
}

// --- Internal messages ---

// SubmitMsg is emitted by the prompt box when the user presses enter.
type SubmitMsg struct{}

// TemperatureChangedMsg is emitted by the slider after the value moves.
type TemperatureChangedMsg struct {
	Value float64
}

// GenerateCompleteMsg is returned by the tea.Cmd that calls the backend.
type GenerateCompleteMsg struct {
	Result   apiclient.GenerationResult
	Err      error
	Duration time.Duration
}

// CopiedMsg reports the outcome of copying the output to the clipboard.
type CopiedMsg struct {
	Err error
}

// ProgramReadyMsg passes the *tea.Program to the model so it can start bridge goroutines.
type ProgramReadyMsg struct {
	Program *tea.Program
}

// InitDrainMsg fires after a short delay so that stale terminal responses
// (e.g. OSC 11 background-color replies) are discarded before focusing input.
type InitDrainMsg struct{}

// FlashExpiredMsg clears a transient status line notice.
type FlashExpiredMsg struct {
	ID int
}
