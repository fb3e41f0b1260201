package bridge

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/germanamz/localwriter/cmd/localwriter/internal/msgs"
	"github.com/germanamz/localwriter/pkg/connectivity"
)

// Sender is the part of *tea.Program the bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Start launches the connectivity watcher goroutine. It only calls p.Send()
// and never touches model state directly. The current state is forwarded
// first so the UI does not wait for the next change.
// Returns a cancel function that cancels the bridge context and waits for
// the goroutine to exit, ensuring no stale messages are sent after return.
func Start(ctx context.Context, p Sender, mon *connectivity.Monitor) context.CancelFunc {
	bridgeCtx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	sub := mon.Subscribe(16)

	wg.Go(func() {
		defer mon.Unsubscribe(sub)

		p.Send(msgs.ConnectivityMsg{State: mon.State()})

		for {
			select {
			case <-bridgeCtx.Done():
				return
			case st, ok := <-sub.C:
				if !ok {
					return
				}
				p.Send(msgs.ConnectivityMsg{State: st})
			}
		}
	})

	return func() {
		cancel()
		wg.Wait()
	}
}
