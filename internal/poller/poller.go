// Package poller drives the periodic refresh and suspends itself after too
// many consecutive failures.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/mutker/dashmon/internal/alert"
	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/instrument"
	"codeberg.org/mutker/dashmon/internal/logger"
)

// RefreshFunc fetches and applies one round of data.
type RefreshFunc func(ctx context.Context) error

const (
	triggerTimer  = "timer"
	triggerManual = "manual"
)

// Status is a snapshot of the polling state.
type Status struct {
	IntervalMs int64     `json:"intervalMs"`
	Active     bool      `json:"isActive"`
	ErrorCount int       `json:"errorCount"`
	MaxErrors  int       `json:"maxErrors"`
	LastRun    time.Time `json:"lastRun"`
	LastError  string    `json:"lastError,omitempty"`
}

// Poller runs refresh on a ticker. Invariant: errorCount < MaxErrors while
// active. Timer ticks never overlap each other; a manual refresh may overlap
// a tick, and whichever finishes last wins.
type Poller struct {
	mu      sync.Mutex
	cfg     Config
	refresh RefreshFunc
	alerts  alert.Notifier
	log     logger.Logger

	active     bool
	closed     bool
	errorCount int
	stop       chan struct{}
	parent     context.Context
	lastRun    time.Time
	lastErr    error

	wg sync.WaitGroup
}

func New(cfg Config, refresh RefreshFunc, alerts alert.Notifier) (*Poller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if refresh == nil {
		return nil, errors.New().WithData(ErrInvalidConfig, "refresh func is required")
	}

	return &Poller{
		cfg:     cfg,
		refresh: refresh,
		alerts:  alerts,
		log:     logger.New("poller"),
	}, nil
}

// Start schedules refresh every interval. It is a no-op while active. The
// loop ends when ctx is done or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active || p.closed {
		return
	}
	p.parent = ctx
	p.startLocked()
}

func (p *Poller) startLocked() {
	stop := make(chan struct{})
	p.stop = stop
	p.active = true
	instrument.PollActive.Set(1)

	p.log.Info().Dur("interval", p.cfg.Interval).Msg("Polling started")

	p.wg.Add(1)
	go p.loop(p.parent, stop)
}

// Stop cancels future ticks. A refresh already in flight is not aborted.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
}

// Close stops polling for good. Start and ManualRefresh do nothing after it.
func (p *Poller) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
	if p.active {
		p.log.Info().Msg("Polling stopped")
	}
	p.active = false
	instrument.PollActive.Set(0)
}

// Wait blocks until every loop started so far has returned.
func (p *Poller) Wait() {
	p.wg.Wait()
}

// ManualRefresh runs one refresh now. On success it restarts polling if it
// had been suspended, resetting the error count; this is the only way back
// after suspension. It fails with ErrClosed once the poller is closed.
func (p *Poller) ManualRefresh(ctx context.Context) error {
	if p.isClosed() {
		return errors.New().New(ErrClosed)
	}

	err := p.refresh(ctx)

	p.mu.Lock()
	// Closed while the refresh was in flight.
	if p.closed {
		p.mu.Unlock()
		return errors.New().New(ErrClosed)
	}
	if err != nil {
		p.mu.Unlock()
		instrument.PollTicks.WithLabelValues(triggerManual, instrument.ResultFailure).Inc()
		p.log.Warn().Err(err).Msg("Manual refresh failed")
		p.notify(alert.KindError, "Refresh failed", "Unable to update data.")
		return errors.New().Wrap(ErrRefreshFailed, err)
	}

	p.lastRun = time.Now()
	p.lastErr = nil
	restart := !p.active
	if restart {
		p.errorCount = 0
		instrument.PollConsecutiveErrors.Set(0)
		if p.parent == nil {
			p.parent = context.Background()
		}
		p.startLocked()
	}
	p.mu.Unlock()

	instrument.PollTicks.WithLabelValues(triggerManual, instrument.ResultSuccess).Inc()
	if restart {
		p.log.Info().Msg("Polling restarted")
	}
	p.notify(alert.KindSuccess, "Refresh complete", "Data has been updated.")

	return nil
}

func (p *Poller) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Status{
		IntervalMs: p.cfg.Interval.Milliseconds(),
		Active:     p.active,
		ErrorCount: p.errorCount,
		MaxErrors:  p.cfg.MaxErrors,
		LastRun:    p.lastRun,
	}
	if p.lastErr != nil {
		s.LastError = p.lastErr.Error()
	}
	return s
}

func (p *Poller) loop(ctx context.Context, stop chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.stop == stop {
				p.stopLocked()
			}
			p.mu.Unlock()
			return
		case <-stop:
			return
		case <-ticker.C:
			p.tick(ctx, stop)
		}
	}
}

func (p *Poller) tick(ctx context.Context, stop chan struct{}) {
	err := p.refresh(ctx)
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	// Ticks from a loop that has since been stopped do not count.
	if p.stop != stop {
		p.mu.Unlock()
		return
	}

	p.lastRun = time.Now()
	if err == nil {
		p.errorCount = 0
		p.lastErr = nil
		p.mu.Unlock()
		instrument.PollTicks.WithLabelValues(triggerTimer, instrument.ResultSuccess).Inc()
		instrument.PollConsecutiveErrors.Set(0)
		return
	}

	p.errorCount++
	p.lastErr = err
	count := p.errorCount
	suspended := count >= p.cfg.MaxErrors
	if suspended {
		p.lastErr = errors.New().Wrap(ErrSuspended, err)
		p.stopLocked()
	}
	p.mu.Unlock()

	instrument.PollTicks.WithLabelValues(triggerTimer, instrument.ResultFailure).Inc()
	instrument.PollConsecutiveErrors.Set(float64(count))
	p.log.Warn().Err(err).Int("error_count", count).Int("max_errors", p.cfg.MaxErrors).Msg("Refresh failed")

	if suspended {
		instrument.PollSuspensions.Inc()
		p.log.Error().Int("error_count", count).Msg("Polling suspended")
		p.notify(alert.KindError, "Auto refresh stopped",
			fmt.Sprintf("Data refresh stopped after %d consecutive errors. Use refresh to try again.", count))
	}
}

func (p *Poller) notify(kind alert.Kind, title, message string) {
	if p.alerts != nil {
		p.alerts.Show(kind, title, message)
	}
}
