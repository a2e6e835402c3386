// Package alert is the user-facing notification surface. Alerts are logged
// and stay visible until their display duration elapses.
package alert

import (
	"sync"
	"time"

	"codeberg.org/mutker/dashmon/internal/instrument"
	"codeberg.org/mutker/dashmon/internal/logger"
)

const DefaultDuration = 3 * time.Second

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notifier shows an alert to the user.
type Notifier interface {
	Show(kind Kind, title, message string)
}

type Alert struct {
	ID      uint64    `json:"id"`
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Raised  time.Time `json:"raised"`
}

// Center keeps the currently visible alerts and dismisses each one after the
// configured duration.
type Center struct {
	mu       sync.Mutex
	duration time.Duration
	nextID   uint64
	active   []Alert
	timers   map[uint64]*time.Timer
	closed   bool
	log      logger.Logger
}

func NewCenter(duration time.Duration) *Center {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Center{
		duration: duration,
		timers:   make(map[uint64]*time.Timer),
		log:      logger.New("alert"),
	}
}

func (c *Center) Show(kind Kind, title, message string) {
	instrument.AlertsShown.WithLabelValues(string(kind)).Inc()

	ev := c.log.Info()
	if kind == KindError {
		ev = c.log.Error()
	}
	ev.Str("kind", string(kind)).Str("title", title).Msg(message)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.nextID++
	id := c.nextID
	c.active = append(c.active, Alert{
		ID:      id,
		Kind:    kind,
		Title:   title,
		Message: message,
		Raised:  time.Now(),
	})
	c.timers[id] = time.AfterFunc(c.duration, func() { c.dismiss(id) })
}

// Active returns the visible alerts, oldest first.
func (c *Center) Active() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Alert, len(c.active))
	copy(out, c.active)
	return out
}

// Close cancels pending dismissals and drops all alerts. Later Show calls
// are logged only.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.active = nil
	c.closed = true
}

func (c *Center) dismiss(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.timers, id)
	for i, a := range c.active {
		if a.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}
