// Package models holds the entities exchanged between the data source,
// the application state and the render targets.
package models

import "time"

// Metric is one system metrics snapshot. Timestamp is Unix milliseconds.
type Metric struct {
	Timestamp int64   `json:"timestamp"`
	CPU       float64 `json:"cpu"`
	Memory    Usage   `json:"memory"`
	Disk      Usage   `json:"disk"`
	Network   Network `json:"network"`
}

// Time returns the snapshot timestamp as a time.Time.
func (m Metric) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

type Usage struct {
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
}

type Network struct {
	In  float64 `json:"in"`
	Out float64 `json:"out"`
}

type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelDebug Level = "DEBUG"
)

// Levels lists the known log levels in display order.
var Levels = []Level{LevelError, LevelWarn, LevelInfo, LevelDebug}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelWarn, LevelError, LevelDebug:
		return true
	default:
		return false
	}
}

// LogEntry is a single log line as served by the backend. Timestamp is
// Unix milliseconds.
type LogEntry struct {
	ID        string   `json:"id"`
	Timestamp int64    `json:"timestamp"`
	Level     Level    `json:"level"`
	Message   string   `json:"message"`
	Source    string   `json:"source"`
	Metadata  Metadata `json:"metadata"`
}

func (e LogEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

type Metadata struct {
	RequestID string `json:"requestId"`
}

const (
	// LevelAll disables the level stage of the filter pipeline.
	LevelAll = "all"
	// TimeRangeAll disables the time-range stage.
	TimeRangeAll = "all"
)

// Filters is the user's current log selection. It is always replaced as a
// unit.
type Filters struct {
	Level       string `json:"level"`
	SearchQuery string `json:"searchQuery"`
	TimeRange   string `json:"timeRange"`
}

// DefaultFilters returns the cleared selection.
func DefaultFilters() Filters {
	return Filters{
		Level:     LevelAll,
		TimeRange: TimeRangeAll,
	}
}

// Normalize fills empty selectors with "all".
func (f Filters) Normalize() Filters {
	if f.Level == "" {
		f.Level = LevelAll
	}
	if f.TimeRange == "" {
		f.TimeRange = TimeRangeAll
	}
	return f
}

// Stats counts log entries per known level.
type Stats struct {
	Total int `json:"total"`
	Error int `json:"ERROR"`
	Warn  int `json:"WARN"`
	Info  int `json:"INFO"`
	Debug int `json:"DEBUG"`
}
