package source

import (
	"context"

	"codeberg.org/mutker/dashmon/internal/models"
)

// Source supplies metrics and logs. Any returned error counts as a failed
// fetch; callers do not distinguish transport, status or decode failures.
type Source interface {
	FetchMetrics(ctx context.Context) ([]models.Metric, error)
	FetchLogs(ctx context.Context) ([]models.LogEntry, error)
}

// Mode selects the Source implementation
type Mode string

const (
	ModeHTTP   Mode = "http"
	ModeSample Mode = "sample"
	ModeFile   Mode = "file"
)

// Resource names, used in URLs, file names and metric labels
const (
	ResourceMetrics = "metrics"
	ResourceLogs    = "logs"
)
