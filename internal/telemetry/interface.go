package telemetry

import (
	"context"
	"time"

	"codeberg.org/mutker/dashmon/internal/models"
)

// Recorder persists applied dashboard snapshots
type Recorder interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Recent(ctx context.Context, limit int) ([]Snapshot, error)
	Close() error
}

// Repository defines the interface for snapshot storage
type Repository interface {
	Store(snapshot *Snapshot) error
	Recent(ctx context.Context, limit int) ([]Snapshot, error)
	Close() error
}

// Snapshot is one successful refresh as it was applied
type Snapshot struct {
	RecordedAt time.Time     `json:"recordedAt"`
	Metric     models.Metric `json:"metric"`
	Status     StatusSet     `json:"status"`
	Logs       LogCounts     `json:"logs"`
}

// StatusSet holds the threshold tier of each classified card
type StatusSet struct {
	CPU    string `json:"cpu"`
	Memory string `json:"memory"`
	Disk   string `json:"disk"`
}

type LogCounts struct {
	Total  int `json:"total"`
	Errors int `json:"errors"`
	Warns  int `json:"warns"`
}
