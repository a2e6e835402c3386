package poller_test

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/mutker/dashmon/internal/alert"
	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/poller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedAlert struct {
	kind    alert.Kind
	title   string
	message string
}

type fakeNotifier struct {
	mu     sync.Mutex
	alerts []recordedAlert
}

func (n *fakeNotifier) Show(kind alert.Kind, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, recordedAlert{kind, title, message})
}

func (n *fakeNotifier) byKind(kind alert.Kind) []recordedAlert {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []recordedAlert
	for _, a := range n.alerts {
		if a.kind == kind {
			out = append(out, a)
		}
	}
	return out
}

type flakyRefresh struct {
	fail  atomic.Bool
	calls atomic.Int64
}

func (f *flakyRefresh) Refresh(context.Context) error {
	f.calls.Add(1)
	if f.fail.Load() {
		return stderrors.New("backend unreachable")
	}
	return nil
}

func fastConfig() poller.Config {
	return poller.Config{Interval: 5 * time.Millisecond, MaxErrors: 3}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, poller.DefaultConfig().Validate())

	err := poller.Config{Interval: 0, MaxErrors: 3}.Validate()
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))

	err = poller.Config{Interval: time.Second}.Validate()
	assert.True(t, errors.HasCode(err, poller.ErrInvalidConfig))

	_, err = poller.New(poller.DefaultConfig(), nil, nil)
	assert.Error(t, err)
}

func TestSuspendsAfterMaxErrorsAndManualRefreshRecovers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresh := &flakyRefresh{}
	refresh.fail.Store(true)
	notifier := &fakeNotifier{}

	p, err := poller.New(fastConfig(), refresh.Refresh, notifier)
	require.NoError(t, err)

	p.Start(ctx)
	require.True(t, p.Status().Active)

	require.Eventually(t, func() bool { return !p.Status().Active }, 2*time.Second, time.Millisecond)

	status := p.Status()
	assert.Equal(t, 3, status.ErrorCount)
	assert.Contains(t, status.LastError, "backend unreachable")
	assert.Contains(t, status.LastError, "Polling stopped after consecutive failures")

	suspension := notifier.byKind(alert.KindError)
	require.Len(t, suspension, 1)
	assert.Contains(t, suspension[0].message, "3 consecutive errors")

	// No further ticks once suspended.
	calls := refresh.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, refresh.calls.Load())

	// A failing manual refresh keeps polling suspended.
	require.Error(t, p.ManualRefresh(ctx))
	assert.False(t, p.Status().Active)

	refresh.fail.Store(false)
	require.NoError(t, p.ManualRefresh(ctx))

	status = p.Status()
	assert.True(t, status.Active)
	assert.Zero(t, status.ErrorCount)
	assert.Len(t, notifier.byKind(alert.KindSuccess), 1)

	calls = refresh.calls.Load()
	require.Eventually(t, func() bool { return refresh.calls.Load() > calls+2 }, 2*time.Second, time.Millisecond)
	assert.True(t, p.Status().Active)

	p.Stop()
	p.Wait()
}

func TestSuccessResetsErrorCount(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	refresh := func(context.Context) error {
		// Fail twice, then succeed, forever alternating in blocks of three.
		if calls.Add(1)%3 != 0 {
			return stderrors.New("transient")
		}
		return nil
	}

	p, err := poller.New(fastConfig(), refresh, &fakeNotifier{})
	require.NoError(t, err)

	p.Start(ctx)
	require.Eventually(t, func() bool { return calls.Load() >= 12 }, 2*time.Second, time.Millisecond)
	assert.True(t, p.Status().Active)

	p.Stop()
	p.Wait()
	assert.Less(t, p.Status().ErrorCount, 3)
}

func TestStartIsIdempotentAndStopHalts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresh := &flakyRefresh{}
	p, err := poller.New(fastConfig(), refresh.Refresh, nil)
	require.NoError(t, err)

	p.Start(ctx)
	p.Start(ctx)
	require.Eventually(t, func() bool { return refresh.calls.Load() > 2 }, 2*time.Second, time.Millisecond)

	p.Stop()
	p.Stop()
	p.Wait()
	assert.False(t, p.Status().Active)

	calls := refresh.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, refresh.calls.Load())
}

func TestContextCancelStopsPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	refresh := &flakyRefresh{}
	p, err := poller.New(poller.Config{Interval: time.Hour, MaxErrors: 3}, refresh.Refresh, nil)
	require.NoError(t, err)

	p.Start(ctx)
	cancel()
	p.Wait()

	assert.False(t, p.Status().Active)
	assert.Zero(t, refresh.calls.Load())
}

func TestManualRefreshWhileActiveDoesNotRestart(t *testing.T) {
	refresh := &flakyRefresh{}
	p, err := poller.New(poller.Config{Interval: time.Hour, MaxErrors: 3}, refresh.Refresh, nil)
	require.NoError(t, err)

	// Never started: a successful manual refresh starts polling.
	require.NoError(t, p.ManualRefresh(context.Background()))
	assert.True(t, p.Status().Active)

	require.NoError(t, p.ManualRefresh(context.Background()))
	assert.True(t, p.Status().Active)
	assert.EqualValues(t, 2, refresh.calls.Load())

	p.Stop()
	p.Wait()
}

func TestCloseBlocksRestart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refresh := &flakyRefresh{}
	notifier := &fakeNotifier{}
	p, err := poller.New(poller.Config{Interval: time.Hour, MaxErrors: 3}, refresh.Refresh, notifier)
	require.NoError(t, err)

	p.Start(ctx)
	p.Close()
	p.Close()
	p.Wait()

	err = p.ManualRefresh(ctx)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, poller.ErrClosed))
	assert.Zero(t, refresh.calls.Load())

	p.Start(ctx)
	assert.False(t, p.Status().Active)
	assert.Empty(t, notifier.byKind(alert.KindSuccess))
}
