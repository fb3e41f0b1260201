package styles

import "github.com/charmbracelet/lipgloss"

// Terminal palette.
var (
	ColorFg      = lipgloss.AdaptiveColor{Light: "#24292f", Dark: "#e6edf3"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#656d76", Dark: "#8b949e"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#58a6ff"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#cf222e", Dark: "#f85149"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#1a7f37", Dark: "#3fb950"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#d29922"}
	ColorMagenta = lipgloss.AdaptiveColor{Light: "#8250df", Dark: "#bc8cff"}
)

// Centralized style definitions for the TUI.
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	SubtitleStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// Section headers ("Prompt", "Output").
	LabelStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorFg)

	// Spinner / animation styles.
	SpinnerStyle = lipgloss.NewStyle().Foreground(ColorMagenta)

	// General utility styles.
	DimStyle     = lipgloss.NewStyle().Foreground(ColorMuted)
	StatusStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)

	// Error block style.
	ErrorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(ColorError).
			Foreground(ColorError)

	// Output block style.
	OutputBlockStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				BorderLeft(true).
				BorderStyle(lipgloss.ThickBorder()).
				BorderForeground(ColorAccent)

	// Input styles.
	FocusedBorder  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorAccent)
	DisabledBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorMuted)

	// Slider styles.
	SliderFilled = lipgloss.NewStyle().Foreground(ColorAccent)
	SliderEmpty  = lipgloss.NewStyle().Foreground(ColorMuted)
	SliderKnob   = lipgloss.NewStyle().Bold(true).Foreground(ColorFg)

	// Connectivity indicator styles.
	IndicatorChecking     = lipgloss.NewStyle().Foreground(ColorWarning)
	IndicatorConnected    = lipgloss.NewStyle().Foreground(ColorSuccess)
	IndicatorDisconnected = lipgloss.NewStyle().Foreground(ColorError)

	// Key hint styles.
	HintKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorMuted)
	HintDescStyle = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Indicator glyph shown in front of the connectivity status.
const Dot = "●"
