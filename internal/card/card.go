// Package card maps metric readings to threshold tiers and keeps a bounded
// rolling history per metric kind.
package card

import (
	"sync"

	"codeberg.org/mutker/dashmon/internal/format"
	"codeberg.org/mutker/dashmon/internal/models"
)

const DefaultHistorySize = 50

type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Level returns the numeric tier used by the status gauge.
func (s Status) Level() float64 {
	switch s {
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	default:
		return 0
	}
}

// Thresholds are percentages of the card's max value.
type Thresholds struct {
	Warning  float64
	Critical float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Warning: 70, Critical: 90}
}

// Classify returns critical when value/max reaches thresholds.Critical
// percent, warning when it reaches thresholds.Warning, else normal. A zero
// max yields 0 percent.
func Classify(value, maxValue float64, t Thresholds) Status {
	p := format.Percentage(value, maxValue, 2)
	switch {
	case p >= t.Critical:
		return StatusCritical
	case p >= t.Warning:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// State is a copy of a card for rendering.
type State struct {
	Kind         Kind      `json:"kind"`
	Label        string    `json:"label"`
	Unit         string    `json:"unit"`
	CurrentValue float64   `json:"currentValue"`
	MaxValue     float64   `json:"maxValue"`
	Percentage   float64   `json:"percentage"`
	Status       Status    `json:"status"`
	History      []float64 `json:"history"`
	Trend        Trend     `json:"trend"`
	In           float64   `json:"in,omitempty"`
	Out          float64   `json:"out,omitempty"`
}

// Trend summarizes the values held in a card's history.
type Trend struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func trendOf(values []float64) Trend {
	return Trend{
		Avg: format.Average(values),
		Min: format.Min(values),
		Max: format.Max(values),
	}
}

// Card tracks one metric kind across snapshots.
type Card struct {
	mu         sync.RWMutex
	kind       Kind
	extract    Extractor
	thresholds Thresholds
	history    *History

	current float64
	max     float64
	status  Status
	in, out float64
}

type Option func(*Card)

func WithThresholds(t Thresholds) Option {
	return func(c *Card) { c.thresholds = t }
}

func WithHistorySize(n int) Option {
	return func(c *Card) { c.history = NewHistory(n) }
}

// New builds a card for kind; the kind's extraction is resolved here once.
func New(kind Kind, opts ...Option) *Card {
	c := &Card{
		kind:       kind,
		extract:    kind.Extractor(),
		thresholds: DefaultThresholds(),
		history:    NewHistory(DefaultHistorySize),
		max:        100,
		status:     StatusNormal,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Card) Kind() Kind {
	return c.kind
}

// Update applies a snapshot: it records the extracted value in history and
// recomputes the status. Network cards track in/out and stay normal.
func (c *Card) Update(m models.Metric) Status {
	r := c.extract(m)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kind == Network {
		c.in, c.out = r.In, r.Out
		c.current = r.Value
		c.history.Push(r.Value)
		c.status = StatusNormal
		return c.status
	}

	c.current = r.Value
	c.max = r.Max
	c.history.Push(r.Value)
	c.status = Classify(r.Value, r.Max, c.thresholds)

	return c.status
}

func (c *Card) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := State{
		Kind:         c.kind,
		Label:        c.kind.Label(),
		Unit:         c.kind.Unit(),
		CurrentValue: c.current,
		MaxValue:     c.max,
		Status:       c.status,
		History:      c.history.Values(),
	}
	s.Trend = trendOf(s.History)
	if c.kind == Network {
		s.In, s.Out = c.in, c.out
	} else {
		s.Percentage = format.Percentage(c.current, c.max, 2)
	}

	return s
}
