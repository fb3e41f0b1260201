// Package tty guards the writer against terminal replies that arrive on
// stdin while the program starts up.
package tty

import tea "github.com/charmbracelet/bubbletea"

// StartupFilter returns a tea.WithFilter callback that drops key and mouse
// input until ready reports true for the current model. Ctrl+C always passes
// so the user can quit during the drain window.
//
// Background-color queries (OSC 11) and cursor reports can trickle in after
// the program takes over stdin; without the filter their bytes would be typed
// into the prompt.
func StartupFilter(ready func(tea.Model) bool) func(tea.Model, tea.Msg) tea.Msg {
	return func(m tea.Model, msg tea.Msg) tea.Msg {
		if ready(m) {
			return msg
		}

		switch msg := msg.(type) {
		case tea.KeyMsg:
			if msg.Type == tea.KeyCtrlC {
				return msg
			}
			return nil
		case tea.MouseMsg:
			return nil
		}

		return msg
	}
}
