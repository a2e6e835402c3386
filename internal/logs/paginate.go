package logs

import (
	"codeberg.org/mutker/dashmon/internal/format"
	"codeberg.org/mutker/dashmon/internal/models"
)

// TotalPages returns max(1, ceil(n/pageSize)). A non-positive pageSize
// means everything fits on one page.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage limits page to [1, TotalPages(n, pageSize)].
func ClampPage(page, n, pageSize int) int {
	return format.Clamp(page, 1, TotalPages(n, pageSize))
}

// Paginate returns the entries of the given 1-based page after clamping it.
// The result never holds more than pageSize entries.
func Paginate(filtered []models.LogEntry, pageSize, page int) []models.LogEntry {
	if pageSize <= 0 {
		return filtered
	}

	page = ClampPage(page, len(filtered), pageSize)
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(filtered))

	return filtered[start:end]
}
