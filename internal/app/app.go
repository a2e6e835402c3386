// Package app owns the dashboard state: the latest metric snapshot, the log
// collection with its filters and page, the metric cards and the polling
// lifecycle.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"codeberg.org/mutker/dashmon/internal/alert"
	"codeberg.org/mutker/dashmon/internal/card"
	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/instrument"
	"codeberg.org/mutker/dashmon/internal/logger"
	"codeberg.org/mutker/dashmon/internal/logs"
	"codeberg.org/mutker/dashmon/internal/models"
	"codeberg.org/mutker/dashmon/internal/poller"
	"codeberg.org/mutker/dashmon/internal/source"
	"codeberg.org/mutker/dashmon/internal/telemetry"
)

type App struct {
	cfg       Config
	source    source.Source
	alerts    Alerts
	recorder  telemetry.Recorder
	renderers []Renderer
	poller    *poller.Poller
	log       logger.Logger

	// mu guards the state below. Multi-field updates happen under one hold.
	mu         sync.Mutex
	snapshot   *models.Metric
	viewer     *logs.Viewer
	cards      []*card.Card
	lastUpdate time.Time
	subs       map[uint64]func(View)
	nextSub    uint64
	tornDown   bool

	// renderMu keeps render passes from interleaving.
	renderMu sync.Mutex
}

// New builds the app. recorder may be nil.
func New(cfg Config, src source.Source, alerts Alerts, recorder telemetry.Recorder, renderers ...Renderer) (*App, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil || alerts == nil {
		return nil, errFactory.WithData(ErrInvalidConfig, "source and alerts are required")
	}
	if recorder == nil {
		recorder = telemetry.NewNoop()
	}

	a := &App{
		cfg:       cfg,
		source:    src,
		alerts:    alerts,
		recorder:  recorder,
		renderers: renderers,
		log:       logger.New("app"),
		viewer:    logs.NewViewer(cfg.PageSize),
		subs:      make(map[uint64]func(View)),
	}

	for _, kind := range card.Kinds {
		a.cards = append(a.cards, card.New(kind,
			card.WithThresholds(cfg.Thresholds),
			card.WithHistorySize(cfg.MaxHistorySize),
		))
	}

	p, err := poller.New(cfg.Polling, a.LoadData, alerts)
	if err != nil {
		return nil, err
	}
	a.poller = p

	return a, nil
}

// Init loads the first data set and starts polling. Failures are reported
// on the alert surface as well as returned. When the first load fails,
// polling is not started and Refresh is the way to recover.
func (a *App) Init(ctx context.Context) error {
	errFactory := errors.New()

	if len(a.renderers) == 0 {
		err := errFactory.WithMessage(ErrInitApp, "no render target registered")
		a.log.ErrorWithCode(err).Msg("Initialization failed")
		a.alerts.Show(alert.KindError, "Initialization failed", "No render target is available.")
		return err
	}

	a.mu.Lock()
	tornDown := a.tornDown
	a.mu.Unlock()
	if tornDown {
		return errFactory.New(ErrTornDown)
	}

	if err := a.LoadData(ctx); err != nil {
		a.log.Error().Err(err).Msg("Initial load failed")
		a.alerts.Show(alert.KindError, "Initialization failed", "Unable to load dashboard data. Use refresh to try again.")
		a.render()
		return errFactory.Wrap(ErrInitApp, err)
	}

	a.poller.Start(ctx)
	a.log.Info().Int("renderers", len(a.renderers)).Msg("Dashboard initialized")

	return nil
}

// LoadData fetches metrics and logs and applies them together. If either
// fetch fails nothing is applied. Results that arrive after Teardown are
// dropped and reported as ErrTornDown.
func (a *App) LoadData(ctx context.Context) error {
	metrics, entries, err := a.fetch(ctx)
	if err != nil {
		return errors.New().Wrap(ErrLoadData, err)
	}

	a.mu.Lock()
	if a.tornDown {
		a.mu.Unlock()
		return errors.New().New(ErrTornDown)
	}

	if len(metrics) > 0 {
		latest := metrics[len(metrics)-1]
		a.snapshot = &latest
		for _, c := range a.cards {
			status := c.Update(latest)
			if c.Kind() != card.Network {
				instrument.MetricStatus.WithLabelValues(string(c.Kind())).Set(status.Level())
			}
		}
	}
	a.viewer.Update(entries)
	a.lastUpdate = time.Now()
	record := a.telemetrySnapshotLocked()
	a.mu.Unlock()

	if record != nil {
		if err := a.recorder.Record(ctx, record); err != nil {
			a.log.Warn().Err(err).Msg("Failed to record snapshot")
		}
	}

	a.log.Debug().Int("metrics", len(metrics)).Int("logs", len(entries)).Msg("Data loaded")
	a.render()

	return nil
}

// fetch runs both requests concurrently and fails if either fails.
func (a *App) fetch(ctx context.Context) ([]models.Metric, []models.LogEntry, error) {
	var (
		wg         sync.WaitGroup
		metrics    []models.Metric
		metricsErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		metrics, metricsErr = a.source.FetchMetrics(ctx)
	}()

	entries, logsErr := a.source.FetchLogs(ctx)
	wg.Wait()

	if metricsErr != nil {
		return nil, nil, metricsErr
	}
	if logsErr != nil {
		return nil, nil, logsErr
	}
	return metrics, entries, nil
}

func (a *App) telemetrySnapshotLocked() *telemetry.Snapshot {
	if a.snapshot == nil {
		return nil
	}

	stats := a.viewer.Stats()
	s := &telemetry.Snapshot{
		RecordedAt: a.lastUpdate,
		Metric:     *a.snapshot,
		Logs: telemetry.LogCounts{
			Total:  stats.Total,
			Errors: stats.Error,
			Warns:  stats.Warn,
		},
	}
	for _, c := range a.cards {
		status := string(c.State().Status)
		switch c.Kind() {
		case card.CPU:
			s.Status.CPU = status
		case card.Memory:
			s.Status.Memory = status
		case card.Disk:
			s.Status.Disk = status
		}
	}
	return s
}

// Refresh loads data now and restarts polling if it was suspended.
func (a *App) Refresh(ctx context.Context) error {
	return a.poller.ManualRefresh(ctx)
}

// SetFilters replaces the filter criteria and returns to page 1.
func (a *App) SetFilters(f models.Filters) View {
	return a.mutate(func(v *logs.Viewer) { v.SetFilters(f) })
}

func (a *App) SetLevel(level string) View {
	return a.mutate(func(v *logs.Viewer) { v.SetLevel(level) })
}

func (a *App) SetSearchQuery(query string) View {
	return a.mutate(func(v *logs.Viewer) { v.SetSearchQuery(query) })
}

func (a *App) SetTimeRange(timeRange string) View {
	return a.mutate(func(v *logs.Viewer) { v.SetTimeRange(timeRange) })
}

func (a *App) ClearFilters() View {
	return a.mutate(func(v *logs.Viewer) { v.ClearFilters() })
}

// GoToPage selects page, clamped to the available range.
func (a *App) GoToPage(page int) View {
	return a.mutate(func(v *logs.Viewer) { v.GoToPage(page) })
}

func (a *App) NextPage() View {
	return a.mutate(func(v *logs.Viewer) { v.NextPage() })
}

func (a *App) PrevPage() View {
	return a.mutate(func(v *logs.Viewer) { v.PrevPage() })
}

func (a *App) mutate(fn func(v *logs.Viewer)) View {
	a.mu.Lock()
	fn(a.viewer)
	a.mu.Unlock()

	return a.render()
}

// View composes the current state.
func (a *App) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.viewLocked()
}

func (a *App) viewLocked() View {
	page := a.viewer.Page()
	page.Entries = append([]models.LogEntry(nil), page.Entries...)

	v := View{
		Cards:         make([]card.State, 0, len(a.cards)),
		Logs:          page,
		Stats:         a.viewer.Stats(),
		FilteredStats: a.viewer.FilteredStats(),
		Filters:       a.viewer.Filters(),
		LastUpdate:    a.lastUpdate,
		Polling:       a.poller.Status(),
		Alerts:        a.alerts.Active(),
	}
	if a.snapshot != nil {
		m := *a.snapshot
		v.Metrics = &m
	}
	for _, c := range a.cards {
		v.Cards = append(v.Cards, c.State())
	}
	return v
}

// Subscribe registers fn to receive every rendered view. The returned func
// removes the subscription.
func (a *App) Subscribe(fn func(View)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tornDown {
		return func() {}
	}

	a.nextSub++
	id := a.nextSub
	a.subs[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

// render pushes the current view to every target, then to subscribers. A
// failing target is reported and does not stop the others.
func (a *App) render() View {
	a.renderMu.Lock()
	defer a.renderMu.Unlock()

	a.mu.Lock()
	view := a.viewLocked()
	tornDown := a.tornDown
	subs := make([]func(View), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.Unlock()

	if tornDown {
		return view
	}

	errFactory := errors.New()
	for _, r := range a.renderers {
		if err := r.Render(view); err != nil {
			rerr := errFactory.Wrap(ErrRender, err)
			a.log.ErrorWithCode(rerr).Str("target", r.Name()).Msg("Render failed")
			a.alerts.Show(alert.KindError, "Render failed", fmt.Sprintf("%s: %v", r.Name(), err))
		}
	}

	for _, fn := range subs {
		fn(view)
	}

	return view
}

// Teardown stops polling and drops all subscriptions. It is idempotent and
// safe after a failed Init.
func (a *App) Teardown() {
	a.mu.Lock()
	if a.tornDown {
		a.mu.Unlock()
		return
	}
	a.tornDown = true
	a.subs = make(map[uint64]func(View))
	a.mu.Unlock()

	a.poller.Close()
	a.log.Info().Msg("Dashboard torn down")
}

// Wait blocks until the polling loop has exited.
func (a *App) Wait() {
	a.poller.Wait()
}
