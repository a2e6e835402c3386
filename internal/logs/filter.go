// Package logs derives the displayed subset of the log collection: the
// filter pipeline, pagination, search highlighting and per-level stats.
package logs

import (
	"strings"

	"codeberg.org/mutker/dashmon/internal/models"
)

// stage is one pure filter of the pipeline. Stages are commutative; the
// order below only affects cost.
type stage func(entries []models.LogEntry, f models.Filters) []models.LogEntry

var pipeline = []stage{
	levelStage,
	searchStage,
	timeRangeStage,
}

// ApplyFilters returns the entries of logs that satisfy every stage of the
// pipeline, preserving their order. The input slice is never modified.
func ApplyFilters(entries []models.LogEntry, f models.Filters) []models.LogEntry {
	f = f.Normalize()

	out := make([]models.LogEntry, len(entries))
	copy(out, entries)
	for _, s := range pipeline {
		out = s(out, f)
	}

	return out
}

func levelStage(entries []models.LogEntry, f models.Filters) []models.LogEntry {
	if f.Level == models.LevelAll {
		return entries
	}

	return keep(entries, func(e models.LogEntry) bool {
		return string(e.Level) == f.Level
	})
}

func searchStage(entries []models.LogEntry, f models.Filters) []models.LogEntry {
	if f.SearchQuery == "" {
		return entries
	}

	query := strings.ToLower(f.SearchQuery)
	return keep(entries, func(e models.LogEntry) bool {
		return strings.Contains(strings.ToLower(e.Message), query) ||
			strings.Contains(strings.ToLower(e.Source), query)
	})
}

// timeRangeStage is a pass-through: no time-range semantics are defined
// yet, so every token including "all" keeps all entries.
func timeRangeStage(entries []models.LogEntry, _ models.Filters) []models.LogEntry {
	return entries
}

// keep filters in place; entries must be owned by the caller.
func keep(entries []models.LogEntry, pred func(models.LogEntry) bool) []models.LogEntry {
	n := 0
	for _, e := range entries {
		if pred(e) {
			entries[n] = e
			n++
		}
	}
	return entries[:n]
}
