package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/bridge"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/input"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/markdown"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/msgs"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/slider"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/statusbar"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/styles"
	"github.com/germanamz/localwriter/pkg/apiclient"
	"github.com/germanamz/localwriter/pkg/connectivity"
	"github.com/germanamz/localwriter/pkg/format"
	"github.com/germanamz/localwriter/pkg/session"
)

// noticeDuration is how long transient status notices stay visible.
const noticeDuration = 2 * time.Second

// Focus identifies the control receiving key presses.
type Focus int

const (
	FocusPrompt Focus = iota
	FocusTemperature
)

// KeyMap defines the application-level bindings.
type KeyMap struct {
	Quit       key.Binding
	NextFocus  key.Binding
	Clear      key.Binding
	Copy       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Submit     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		NextFocus:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "prompt/temperature")),
		Clear:      key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		Copy:       key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy")),
		ScrollUp:   key.NewBinding(key.WithKeys("pgup")),
		ScrollDown: key.NewBinding(key.WithKeys("pgdown")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate")),
	}
}

// CopyFunc writes text to the system clipboard.
type CopyFunc func(text string) error

// Deps are the collaborators of the root model.
type Deps struct {
	Session   *session.Session
	Generator session.Generator
	Monitor   *connectivity.Monitor
	Copy      CopyFunc
	Log       *slog.Logger
}

// AppModel is the root bubbletea model.
type AppModel struct {
	ctx          context.Context
	sess         *session.Session
	gen          session.Generator
	mon          *connectivity.Monitor
	copyText     CopyFunc
	log          *slog.Logger
	keys         KeyMap
	prompt       input.PromptModel
	slider       slider.Model
	statusBar    statusbar.Model
	spinner      spinner.Model
	output       viewport.Model
	focus        Focus
	cancelBridge context.CancelFunc
	width        int
	height       int
	sendStart    time.Time
	noticeID     int
	drained      bool
}

// NewAppModel creates the root model. The prompt and slider start from the
// session state.
func NewAppModel(ctx context.Context, deps Deps) AppModel {
	log := deps.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	snap := deps.Session.Snapshot()

	prompt := input.New()
	prompt.SetValue(snap.Prompt)

	sp := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(styles.SpinnerStyle),
	)

	return AppModel{
		ctx:       ctx,
		sess:      deps.Session,
		gen:       deps.Generator,
		mon:       deps.Monitor,
		copyText:  deps.Copy,
		log:       log,
		keys:      DefaultKeyMap(),
		prompt:    prompt,
		slider:    slider.New(snap.Temperature),
		statusBar: statusbar.New(),
		spinner:   sp,
		output:    viewport.New(0, 0),
		focus:     FocusPrompt,
	}
}

func (m AppModel) Init() tea.Cmd {
	// Delay focusing the input so that stale terminal escape-sequence
	// responses (e.g. OSC 11 background-color) are drained first.
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return msgs.InitDrainMsg{}
	})
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case msgs.InitDrainMsg:
		m.drained = true
		cmd := m.applyFocus()
		m.refreshOutput()
		return m, cmd

	case msgs.ProgramReadyMsg:
		if m.mon != nil && msg.Program != nil {
			m.cancelBridge = bridge.Start(m.ctx, msg.Program, m.mon)
		}
		return m, nil

	case msgs.ConnectivityMsg:
		m.statusBar.State = msg.State
		return m, nil

	case msgs.SubmitMsg:
		return m.handleSubmit()

	case msgs.TemperatureChangedMsg:
		m.sess.SetTemperature(msg.Value)
		return m, nil

	case msgs.GenerateCompleteMsg:
		return m.handleComplete(msg)

	case msgs.CopiedMsg:
		if msg.Err != nil {
			m.log.Warn("copy to clipboard failed", "error", msg.Err)
			return m.flash("Copy failed")
		}
		return m.flash("Copied to clipboard")

	case msgs.FlashExpiredMsg:
		if msg.ID == m.noticeID {
			m.statusBar.Notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.sess.Phase() != session.PhaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.output, cmd = m.output.Update(msg)

	return m, cmd
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.prompt.View(),
		m.slider.View(),
		m.hints(),
		m.outputHeader(),
		m.output.View(),
		m.statusBar.View(),
	)
}

// InputReady reports whether the startup drain window has passed.
func (m AppModel) InputReady() bool { return m.drained }

// Focus returns the control receiving key presses.
func (m AppModel) Focus() Focus { return m.focus }

// Stop cancels the connectivity bridge, if running.
func (m AppModel) Stop() {
	if m.cancelBridge != nil {
		m.cancelBridge()
	}
}

func (m *AppModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	markdown.Init(m.width - 4)
	m.prompt.SetWidth(m.width)
	m.slider.Width = max(min(m.width/3, 40), 10)
	m.output.Width = m.width
	m.syncLayout()
	m.refreshOutput()

	return m, nil
}

// syncLayout gives the output viewport whatever height the fixed sections
// leave over.
func (m *AppModel) syncLayout() {
	if m.height == 0 {
		return
	}

	fixed := lipgloss.Height(m.header()) +
		m.prompt.ViewHeight() +
		1 + // slider
		1 + // hints
		1 + // output header
		1 // status bar

	m.output.Height = max(m.height-fixed, 3)
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextFocus):
		if m.focus == FocusPrompt {
			m.focus = FocusTemperature
		} else {
			m.focus = FocusPrompt
		}
		return m, m.applyFocus()

	case key.Matches(msg, m.keys.Clear):
		return m.handleClear()

	case key.Matches(msg, m.keys.Copy):
		return m.handleCopy()

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}

	if m.focus == FocusTemperature {
		if key.Matches(msg, m.keys.Submit) {
			return m.handleSubmit()
		}
		if m.sess.Phase() == session.PhaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.slider, cmd = m.slider.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)

	// The box enforces the length limit; a rejected edit is rolled back to
	// what the session holds.
	if err := m.sess.SetPrompt(m.prompt.Value()); err != nil {
		m.prompt.SetValue(m.sess.Snapshot().Prompt)
	}

	m.syncLayout()

	return m, cmd
}

func (m *AppModel) handleSubmit() (tea.Model, tea.Cmd) {
	req, err := m.sess.Begin()
	if errors.Is(err, session.ErrBusy) {
		return m, nil
	}
	if err != nil {
		m.refreshOutput()
		return m, nil
	}

	m.prompt.Blur()
	m.slider.Focused = false
	m.sendStart = time.Now()
	m.refreshOutput()

	m.log.InfoContext(m.ctx, "generation started",
		"prompt_chars", utf8.RuneCountInString(req.Prompt), "temperature", req.Temperature)

	gen := m.gen
	ctx := m.ctx
	sendStart := m.sendStart
	sendCmd := func() tea.Msg {
		res, err := gen.Generate(ctx, req)
		return msgs.GenerateCompleteMsg{Result: res, Err: err, Duration: time.Since(sendStart)}
	}

	return m, tea.Batch(sendCmd, m.spinner.Tick)
}

func (m *AppModel) handleComplete(msg msgs.GenerateCompleteMsg) (tea.Model, tea.Cmd) {
	if err := m.sess.Finish(msg.Result, msg.Err); err != nil {
		m.log.Error("discarding generation outcome", "error", err)
		return m, nil
	}

	if msg.Err != nil {
		gerr := apiclient.AsGenerationError(msg.Err)
		m.log.Warn("generation failed",
			"kind", gerr.Kind.String(), "status", gerr.StatusCode, "error", msg.Err, "duration", msg.Duration)
	} else {
		m.log.Info("generation finished",
			"time_taken", msg.Result.TimeTaken, "duration", msg.Duration)
	}

	m.refreshOutput()
	m.output.GotoTop()

	return m, m.applyFocus()
}

func (m *AppModel) handleClear() (tea.Model, tea.Cmd) {
	if !m.sess.CanClear() {
		return m, nil
	}

	if err := m.sess.Clear(); err != nil {
		return m, nil
	}

	m.prompt.Reset()
	m.syncLayout()
	m.refreshOutput()

	return m, nil
}

func (m *AppModel) handleCopy() (tea.Model, tea.Cmd) {
	snap := m.sess.Snapshot()
	if snap.Phase != session.PhaseSucceeded || m.copyText == nil {
		return m, nil
	}

	text := snap.Output
	copyFn := m.copyText

	return m, func() tea.Msg {
		return msgs.CopiedMsg{Err: copyFn(text)}
	}
}

func (m *AppModel) flash(notice string) (tea.Model, tea.Cmd) {
	m.noticeID++
	id := m.noticeID
	m.statusBar.Notice = notice

	return m, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return msgs.FlashExpiredMsg{ID: id}
	})
}

// applyFocus moves the cursor to the focused control. Both stay inert while
// a generation is in flight.
func (m *AppModel) applyFocus() tea.Cmd {
	if m.sess.Phase() == session.PhaseLoading {
		m.prompt.Blur()
		m.slider.Focused = false
		return nil
	}

	if m.focus == FocusTemperature {
		m.prompt.Blur()
		m.slider.Focused = true
		return nil
	}

	m.slider.Focused = false

	return m.prompt.Focus()
}

// refreshOutput re-renders the output area from the session snapshot.
func (m *AppModel) refreshOutput() {
	snap := m.sess.Snapshot()
	width := max(m.width-4, 10)

	var content string

	switch snap.Phase {
	case session.PhaseSucceeded:
		content = styles.OutputBlockStyle.Width(width).Render(markdown.Render(snap.Output)) +
			"\n\n" + renderMetadata(snap.Metadata)
	case session.PhaseFailed:
		content = styles.ErrorBlockStyle.Width(width).Render("Error: " + snap.Message())
	case session.PhaseLoading:
		content = ""
	default:
		content = emptyState()
	}

	m.output.SetContent(content)
}

func (m AppModel) header() string {
	return styles.TitleStyle.Render("Local AI Writer") + "  " +
		styles.SubtitleStyle.Render("Generate creative content with a model running on your machine")
}

func (m AppModel) outputHeader() string {
	if m.sess.Phase() == session.PhaseLoading {
		elapsed := ""
		if !m.sendStart.IsZero() {
			elapsed = " " + styles.DimStyle.Render(format.FmtDuration(time.Since(m.sendStart)))
		}
		return m.spinner.View() + " " + styles.LabelStyle.Render("Generating your content...") + elapsed
	}

	return styles.LabelStyle.Render("Generated Content")
}

func (m AppModel) hints() string {
	bindings := []key.Binding{m.keys.Submit, m.keys.NextFocus, m.slider.KeyMap.Decrease}
	if m.sess.CanClear() {
		bindings = append(bindings, m.keys.Clear)
	}
	if m.sess.Phase() == session.PhaseSucceeded {
		bindings = append(bindings, m.keys.Copy)
	}
	bindings = append(bindings, m.keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HintKeyStyle.Render(h.Key)+" "+styles.HintDescStyle.Render(h.Desc))
	}

	return " " + strings.Join(parts, styles.DimStyle.Render(" · "))
}

func renderMetadata(md *session.Metadata) string {
	if md == nil {
		return ""
	}

	return styles.DimStyle.Render(fmt.Sprintf("Generated in %s · Temperature: %s · %s",
		format.FmtLatency(md.TimeTaken),
		format.FmtTemperature(md.Temperature),
		format.FmtTimestamp(md.Timestamp),
	))
}

func emptyState() string {
	return styles.DimStyle.Render(
		"Enter a prompt above to start generating creative content!\n" +
			`Try: "Write a blog intro about AI", "Create a tweet about coffee", or "Tell a short story about space"`,
	)
}
