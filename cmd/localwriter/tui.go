package main

import (
	"context"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/app"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/markdown"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/msgs"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/tty"
	"github.com/germanamz/localwriter/pkg/connectivity"
	"github.com/germanamz/localwriter/pkg/session"
)

func runTUI(ctx context.Context, opts *rootOptions) error {
	svc, err := opts.setup()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	svc.log.Info("starting", "api_url", svc.cfg.APIURL, "data_dir", svc.dir.Root())

	mon := connectivity.New(svc.client,
		connectivity.WithInterval(svc.cfg.HealthInterval),
		connectivity.WithLogger(svc.log),
	)
	if err := mon.Start(ctx); err != nil {
		return err
	}
	defer mon.Stop()

	sess := session.New(svc.client, svc.prefs)

	// Query the background before bubbletea takes over stdin, then drop the
	// reply bytes the query may leave behind.
	markdown.IsDarkBG = lipgloss.HasDarkBackground()
	tty.FlushStdin()

	model := app.NewAppModel(ctx, app.Deps{
		Session:   sess,
		Generator: svc.client,
		Monitor:   mon,
		Copy:      clipboard.WriteAll,
		Log:       svc.log,
	})

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithFilter(tty.StartupFilter(inputReady)),
	)

	go func() {
		p.Send(msgs.ProgramReadyMsg{Program: p})
	}()

	final, err := p.Run()

	switch m := final.(type) {
	case app.AppModel:
		m.Stop()
	case *app.AppModel:
		m.Stop()
	}

	if err != nil {
		svc.log.Error("tui exited", "error", err)
		return err
	}

	return nil
}

func inputReady(m tea.Model) bool {
	switch v := m.(type) {
	case app.AppModel:
		return v.InputReady()
	case *app.AppModel:
		return v.InputReady()
	}

	return true
}
