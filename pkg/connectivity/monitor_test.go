package connectivity_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/germanamz/localwriter/internal/fakebackend"
	"github.com/germanamz/localwriter/pkg/apiclient"
	"github.com/germanamz/localwriter/pkg/connectivity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface check: the real client is a Prober.
var _ connectivity.Prober = (*apiclient.Client)(nil)

type fakeProber struct {
	calls atomic.Int32

	mu     sync.Mutex
	health apiclient.Health
	err    error
	block  chan struct{}
}

func (p *fakeProber) CheckHealth(ctx context.Context) (apiclient.Health, error) {
	p.calls.Add(1)

	p.mu.Lock()
	block := p.block
	h, err := p.health, p.err
	p.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return apiclient.Health{}, ctx.Err()
		}
	}

	return h, err
}

func (p *fakeProber) set(h apiclient.Health, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.health, p.err = h, err
}

func healthy(name string) apiclient.Health {
	return apiclient.Health{Status: "healthy", ModelInfo: apiclient.ModelInfo{ModelName: name, Status: "loaded"}}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "checking", connectivity.StatusChecking.String())
	assert.Equal(t, "connected", connectivity.StatusConnected.String())
	assert.Equal(t, "disconnected", connectivity.StatusDisconnected.String())
	assert.Equal(t, "unknown", connectivity.Status(42).String())
}

func TestNew_StartsChecking(t *testing.T) {
	m := connectivity.New(&fakeProber{})

	st := m.State()
	assert.Equal(t, connectivity.StatusChecking, st.Status)
	assert.Nil(t, st.ModelInfo)
	assert.False(t, m.Running())
}

func TestStart_ProbesImmediately(t *testing.T) {
	p := &fakeProber{}
	p.set(healthy("llama3"), nil)

	// An hour-long interval means only the initial probe can run.
	m := connectivity.New(p, connectivity.WithInterval(time.Hour))
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)

	require.Eventually(t, func() bool {
		return m.State().Status == connectivity.StatusConnected
	}, time.Second, 5*time.Millisecond)

	st := m.State()
	require.NotNil(t, st.ModelInfo)
	assert.Equal(t, "llama3", st.ModelInfo.ModelName)
	assert.False(t, st.CheckedAt.IsZero())
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestStart_FailedProbeIsDisconnected(t *testing.T) {
	p := &fakeProber{}
	p.set(apiclient.Health{}, apiclient.ErrUnreachable)

	m := connectivity.New(p, connectivity.WithInterval(time.Hour))
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)

	require.Eventually(t, func() bool {
		return m.State().Status == connectivity.StatusDisconnected
	}, time.Second, 5*time.Millisecond)

	assert.Nil(t, m.State().ModelInfo)
}

func TestTicks_FollowBackendWithoutBackoff(t *testing.T) {
	p := &fakeProber{}
	p.set(apiclient.Health{}, errors.New("down"))

	m := connectivity.New(p, connectivity.WithInterval(10*time.Millisecond))
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)

	require.Eventually(t, func() bool {
		return m.State().Status == connectivity.StatusDisconnected
	}, time.Second, 5*time.Millisecond)

	// Failures keep the schedule going.
	require.Eventually(t, func() bool { return p.calls.Load() >= 4 }, time.Second, 5*time.Millisecond)

	p.set(healthy("llama3"), nil)

	require.Eventually(t, func() bool {
		return m.State().Status == connectivity.StatusConnected
	}, time.Second, 5*time.Millisecond)
}

func TestStart_Twice(t *testing.T) {
	m := connectivity.New(&fakeProber{}, connectivity.WithInterval(time.Hour))
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)

	assert.ErrorIs(t, m.Start(context.Background()), connectivity.ErrRunning)
	assert.True(t, m.Running())
}

func TestStop_HaltsProbes(t *testing.T) {
	p := &fakeProber{}
	p.set(healthy("llama3"), nil)

	m := connectivity.New(p, connectivity.WithInterval(5*time.Millisecond))
	require.NoError(t, m.Start(context.Background()))

	require.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, time.Millisecond)

	m.Stop()
	assert.False(t, m.Running())

	n := p.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, p.calls.Load())

	// Idempotent.
	m.Stop()
}

func TestStop_DiscardsInFlightProbe(t *testing.T) {
	p := &fakeProber{block: make(chan struct{})}
	p.set(healthy("llama3"), nil)

	m := connectivity.New(p, connectivity.WithInterval(time.Hour))
	require.NoError(t, m.Start(context.Background()))

	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, time.Millisecond)

	m.Stop()

	assert.Equal(t, connectivity.StatusChecking, m.State().Status)
}

func TestOverlappingProbes_AreNotSerialized(t *testing.T) {
	p := &fakeProber{block: make(chan struct{})}
	p.set(healthy("llama3"), nil)

	m := connectivity.New(p, connectivity.WithInterval(5*time.Millisecond))
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)

	// The first probe never returns on its own, yet ticks keep issuing new ones.
	require.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, connectivity.StatusChecking, m.State().Status)

	close(p.block)

	require.Eventually(t, func() bool {
		return m.State().Status == connectivity.StatusConnected
	}, time.Second, time.Millisecond)
}

func TestSubscribe_ReceivesUpdates(t *testing.T) {
	p := &fakeProber{}
	p.set(healthy("llama3"), nil)

	m := connectivity.New(p, connectivity.WithInterval(time.Hour))
	sub := m.Subscribe(8)

	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)

	first := <-sub.C
	assert.Equal(t, connectivity.StatusChecking, first.Status)

	select {
	case st := <-sub.C:
		assert.Equal(t, connectivity.StatusConnected, st.Status)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	m.Unsubscribe(sub)

	_, ok := <-sub.C
	assert.False(t, ok)

	// Unsubscribing twice is harmless.
	m.Unsubscribe(sub)
}

func TestStart_CancelledParentStopsLoop(t *testing.T) {
	p := &fakeProber{}
	ctx, cancel := context.WithCancel(context.Background())

	m := connectivity.New(p, connectivity.WithInterval(5*time.Millisecond))
	require.NoError(t, m.Start(ctx))
	t.Cleanup(m.Stop)

	require.Eventually(t, func() bool { return p.calls.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()

	time.Sleep(20 * time.Millisecond)
	n := p.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, p.calls.Load())
}

func TestMonitor_AgainstBackend(t *testing.T) {
	b := fakebackend.New()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)

	c := apiclient.New(srv.URL, apiclient.WithHealthTimeout(time.Second))
	m := connectivity.New(c, connectivity.WithInterval(10*time.Millisecond))
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(m.Stop)

	require.Eventually(t, func() bool {
		return m.State().Status == connectivity.StatusConnected
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "meta-llama/Meta-Llama-3-8B-Instruct", m.State().ModelInfo.ModelName)
	assert.Equal(t, "cpu", m.State().ModelInfo.Extra["device"])

	b.SetHealthy(false)

	require.Eventually(t, func() bool {
		return m.State().Status == connectivity.StatusDisconnected
	}, 2*time.Second, 5*time.Millisecond)
}
