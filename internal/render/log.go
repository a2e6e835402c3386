// Package render holds the dashboard's render targets.
package render

import (
	"codeberg.org/mutker/dashmon/internal/app"
	"codeberg.org/mutker/dashmon/internal/card"
	"codeberg.org/mutker/dashmon/internal/logger"
)

// Log writes each view as a structured log line. Verbose output goes to
// info, otherwise only debug.
type Log struct {
	log     logger.Logger
	verbose bool
}

func NewLog(verbose bool) *Log {
	return &Log{
		log:     logger.New("render"),
		verbose: verbose,
	}
}

func (*Log) Name() string {
	return "log"
}

func (r *Log) Render(v app.View) error {
	if v.Metrics == nil {
		r.log.Debug().
			Bool("polling", v.Polling.Active).
			Int("error_count", v.Polling.ErrorCount).
			Msg("No data loaded yet")
		return nil
	}

	ev := r.log.Debug()
	if r.verbose {
		ev = r.log.Info()
	}

	for _, c := range v.Cards {
		name := string(c.Kind)
		if c.Kind == card.Network {
			ev.Float64("network_in", c.In).Float64("network_out", c.Out)
			continue
		}
		ev.Float64(name+"_percent", c.Percentage).Str(name+"_status", string(c.Status))
	}

	ev.
		Int("logs", v.Stats.Total).
		Int("errors", v.Stats.Error).
		Int("warnings", v.Stats.Warn).
		Int("matched", v.Logs.Matched).
		Int("page", v.Logs.Number).
		Int("total_pages", v.Logs.TotalPages).
		Bool("polling", v.Polling.Active).
		Msg("")

	return nil
}
