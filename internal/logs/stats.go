package logs

import "codeberg.org/mutker/dashmon/internal/models"

// ComputeStats counts entries per level in a single pass. Total counts every
// entry; unknown levels are not counted per level.
func ComputeStats(entries []models.LogEntry) models.Stats {
	stats := models.Stats{Total: len(entries)}

	for _, e := range entries {
		switch e.Level {
		case models.LevelError:
			stats.Error++
		case models.LevelWarn:
			stats.Warn++
		case models.LevelInfo:
			stats.Info++
		case models.LevelDebug:
			stats.Debug++
		}
	}

	return stats
}
