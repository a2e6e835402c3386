package app

import (
	"time"

	"codeberg.org/mutker/dashmon/internal/alert"
	"codeberg.org/mutker/dashmon/internal/card"
	"codeberg.org/mutker/dashmon/internal/logs"
	"codeberg.org/mutker/dashmon/internal/models"
	"codeberg.org/mutker/dashmon/internal/poller"
)

// View is everything a render target needs. It shares nothing mutable with
// the app.
type View struct {
	Metrics       *models.Metric `json:"metrics"`
	Cards         []card.State   `json:"cards"`
	Logs          logs.Page      `json:"logs"`
	Stats         models.Stats   `json:"stats"`
	FilteredStats models.Stats   `json:"filteredStats"`
	Filters       models.Filters `json:"filters"`
	LastUpdate    time.Time      `json:"lastUpdate"`
	Polling       poller.Status  `json:"polling"`
	Alerts        []alert.Alert  `json:"alerts"`
}

// Card returns the state for kind, or false when the view has none.
func (v View) Card(kind card.Kind) (card.State, bool) {
	for _, c := range v.Cards {
		if c.Kind == kind {
			return c, true
		}
	}
	return card.State{}, false
}
