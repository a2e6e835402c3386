package logs_test

import (
	"fmt"
	"strings"
	"testing"

	"codeberg.org/mutker/dashmon/internal/logs"
	"codeberg.org/mutker/dashmon/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, level models.Level, message, source string) models.LogEntry {
	return models.LogEntry{ID: id, Level: level, Message: message, Source: source}
}

func fixture() []models.LogEntry {
	return []models.LogEntry{
		entry("1", models.LevelError, "Database connection failed", "database"),
		entry("2", models.LevelError, "API request failed", "api-server"),
		entry("3", models.LevelWarn, "Disk usage warning", "monitor"),
		entry("4", models.LevelInfo, "User login succeeded", "auth-service"),
		entry("5", models.LevelDebug, "Cache refreshed", "system"),
		entry("6", models.LevelInfo, "Server started", "system"),
	}
}

func ids(entries []models.LogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestApplyFiltersLevel(t *testing.T) {
	got := logs.ApplyFilters(fixture(), models.Filters{Level: "ERROR"})
	assert.Equal(t, []string{"1", "2"}, ids(got))

	got = logs.ApplyFilters(fixture(), models.DefaultFilters())
	assert.Len(t, got, 6)
}

func TestApplyFiltersSearchMatchesMessageAndSource(t *testing.T) {
	got := logs.ApplyFilters(fixture(), models.Filters{SearchQuery: "FAILED"})
	assert.Equal(t, []string{"1", "2"}, ids(got))

	got = logs.ApplyFilters(fixture(), models.Filters{SearchQuery: "system"})
	assert.Equal(t, []string{"5", "6"}, ids(got))
}

func TestApplyFiltersCombined(t *testing.T) {
	got := logs.ApplyFilters(fixture(), models.Filters{Level: "INFO", SearchQuery: "server"})
	assert.Equal(t, []string{"6"}, ids(got))
}

func TestApplyFiltersTimeRangeIsPassThrough(t *testing.T) {
	got := logs.ApplyFilters(fixture(), models.Filters{Level: "all", TimeRange: "1h"})
	assert.Len(t, got, 6)
}

func TestApplyFiltersDoesNotMutateInput(t *testing.T) {
	in := fixture()
	before := ids(in)
	_ = logs.ApplyFilters(in, models.Filters{Level: "DEBUG"})
	assert.Equal(t, before, ids(in))
}

func TestApplyFiltersSubsetAndLevelPreserving(t *testing.T) {
	in := fixture()
	all := map[string]bool{}
	for _, e := range in {
		all[e.ID] = true
	}

	for _, level := range models.Levels {
		for _, query := range []string{"", "a", "fail", "zzz"} {
			got := logs.ApplyFilters(in, models.Filters{Level: string(level), SearchQuery: query})
			for _, e := range got {
				assert.True(t, all[e.ID])
				assert.Equal(t, level, e.Level)
			}
		}

		levelOnly := logs.ApplyFilters(in, models.Filters{Level: string(level)})
		want := 0
		for _, e := range in {
			if e.Level == level {
				want++
			}
		}
		assert.Len(t, levelOnly, want, "level stage dropped a matching entry")
	}
}

func TestPaginate(t *testing.T) {
	var entries []models.LogEntry
	for i := 1; i <= 25; i++ {
		entries = append(entries, entry(fmt.Sprint(i), models.LevelInfo, "m", "s"))
	}

	assert.Equal(t, 3, logs.TotalPages(len(entries), 10))
	assert.Equal(t, 1, logs.TotalPages(0, 10))

	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}, ids(logs.Paginate(entries, 10, 1)))
	assert.Equal(t, []string{"21", "22", "23", "24", "25"}, ids(logs.Paginate(entries, 10, 3)))

	// Out-of-range pages clamp.
	assert.Equal(t, ids(logs.Paginate(entries, 10, 3)), ids(logs.Paginate(entries, 10, 99)))
	assert.Equal(t, ids(logs.Paginate(entries, 10, 1)), ids(logs.Paginate(entries, 10, -4)))

	assert.Empty(t, logs.Paginate(nil, 10, 5))

	for size := 1; size <= 30; size++ {
		for page := -1; page <= 30; page++ {
			assert.LessOrEqual(t, len(logs.Paginate(entries, size, page)), size)
		}
	}
}

func TestHighlightEscapesRegexCharacters(t *testing.T) {
	got := logs.Highlight("a.b failed, axb ok", "a.b")
	assert.Equal(t, "<mark>a.b</mark> failed, axb ok", string(got))
}

func TestHighlightCaseInsensitiveAndEscaped(t *testing.T) {
	got := logs.Highlight(`<script>Alert</script> ALERT`, "alert")
	assert.Equal(t, "&lt;script&gt;<mark>Alert</mark>&lt;/script&gt; <mark>ALERT</mark>", string(got))
}

func TestHighlightNoQueryOrNoMatch(t *testing.T) {
	assert.Equal(t, "x &amp; y", string(logs.Highlight("x & y", "")))
	assert.Equal(t, "x &amp; y", string(logs.Highlight("x & y", "zzz")))
	// The query never lands inside an entity.
	assert.Equal(t, "x &amp; y", string(logs.Highlight("x & y", "amp")))
}

func TestHighlightPathologicalQuery(t *testing.T) {
	query := strings.Repeat("(a+)+", 50) + "[" + `\`
	got := logs.Highlight("aaaa", query)
	assert.Equal(t, "aaaa", string(got))
}

func TestComputeStats(t *testing.T) {
	levels := []models.Level{"ERROR", "ERROR", "WARN", "INFO", "DEBUG", "INFO"}
	var entries []models.LogEntry
	for i, l := range levels {
		entries = append(entries, entry(fmt.Sprint(i), l, "m", "s"))
	}

	assert.Equal(t, models.Stats{Total: 6, Error: 2, Warn: 1, Info: 2, Debug: 1}, logs.ComputeStats(entries))
}

func TestComputeStatsIgnoresUnknownLevels(t *testing.T) {
	entries := []models.LogEntry{entry("1", "TRACE", "m", "s"), entry("2", "INFO", "m", "s")}
	stats := logs.ComputeStats(entries)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Info)
	assert.Zero(t, stats.Error+stats.Warn+stats.Debug)
}

func TestViewerResetsAndClampsPages(t *testing.T) {
	var entries []models.LogEntry
	for i := 1; i <= 25; i++ {
		level := models.LevelInfo
		if i%5 == 0 {
			level = models.LevelError
		}
		entries = append(entries, entry(fmt.Sprint(i), level, "message", "src"))
	}

	v := logs.NewViewer(10)
	v.Update(entries)
	require.Equal(t, 3, v.Page().TotalPages)

	assert.Equal(t, 3, v.GoToPage(3))
	assert.Equal(t, 3, v.NextPage())
	assert.Equal(t, 1, v.GoToPage(0))
	assert.Equal(t, 1, v.PrevPage())
	v.GoToPage(3)

	// Filter change returns to the first page.
	v.SetLevel("ERROR")
	page := v.Page()
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 5, page.Matched)

	// Shrinking data re-clamps the current page.
	v.ClearFilters()
	v.GoToPage(3)
	v.Update(entries[:12])
	assert.Equal(t, 2, v.Page().Number)

	v.Update(nil)
	assert.Equal(t, 1, v.Page().Number)
	assert.Equal(t, 1, v.Page().TotalPages)
	assert.Empty(t, v.Page().Entries)
}

func TestViewerFilterSetters(t *testing.T) {
	v := logs.NewViewer(100)
	v.Update(fixture())

	v.SetSearchQuery("failed")
	assert.Equal(t, 2, v.Page().Matched)
	assert.Equal(t, 6, v.Stats().Total)
	assert.Equal(t, models.Stats{Total: 2, Error: 2}, v.FilteredStats())

	v.SetTimeRange("24h")
	assert.Equal(t, "24h", v.Filters().TimeRange)
	assert.Equal(t, "failed", v.Filters().SearchQuery)
	assert.Equal(t, 2, v.Page().Matched)

	v.SetLevel("NOPE")
	assert.Equal(t, models.LevelAll, v.Filters().Level)

	v.ClearFilters()
	assert.Equal(t, models.DefaultFilters(), v.Filters())
	assert.Equal(t, 6, v.Page().Matched)
}
