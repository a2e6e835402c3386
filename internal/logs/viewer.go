package logs

import (
	"codeberg.org/mutker/dashmon/internal/models"
)

// Page is one page of the filtered log collection.
type Page struct {
	Entries    []models.LogEntry `json:"entries"`
	Number     int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	PageSize   int               `json:"pageSize"`
	Matched    int               `json:"matched"`
}

// Viewer keeps the raw log collection, the active filters and the current
// page, and re-derives the filtered view on every change. It is not safe for
// concurrent use; the owner serializes access.
type Viewer struct {
	pageSize int
	entries  []models.LogEntry
	filtered []models.LogEntry
	filters  models.Filters
	page     int
}

func NewViewer(pageSize int) *Viewer {
	return &Viewer{
		pageSize: pageSize,
		filters:  models.DefaultFilters(),
		page:     1,
	}
}

// Update replaces the collection wholesale and re-clamps the current page.
func (v *Viewer) Update(entries []models.LogEntry) {
	v.entries = entries
	v.apply()
	v.page = ClampPage(v.page, len(v.filtered), v.pageSize)
}

// SetFilters replaces the criteria as a unit and returns to the first page.
// An unknown level falls back to "all".
func (v *Viewer) SetFilters(f models.Filters) {
	f = f.Normalize()
	if f.Level != models.LevelAll && !models.Level(f.Level).Valid() {
		f.Level = models.LevelAll
	}

	v.filters = f
	v.apply()
	v.page = 1
}

func (v *Viewer) SetLevel(level string) {
	f := v.filters
	f.Level = level
	v.SetFilters(f)
}

func (v *Viewer) SetSearchQuery(query string) {
	f := v.filters
	f.SearchQuery = query
	v.SetFilters(f)
}

func (v *Viewer) SetTimeRange(timeRange string) {
	f := v.filters
	f.TimeRange = timeRange
	v.SetFilters(f)
}

func (v *Viewer) ClearFilters() {
	v.SetFilters(models.DefaultFilters())
}

func (v *Viewer) Filters() models.Filters {
	return v.filters
}

// GoToPage moves to page, clamped to the valid range, and returns the page
// actually selected.
func (v *Viewer) GoToPage(page int) int {
	v.page = ClampPage(page, len(v.filtered), v.pageSize)
	return v.page
}

func (v *Viewer) NextPage() int {
	return v.GoToPage(v.page + 1)
}

func (v *Viewer) PrevPage() int {
	return v.GoToPage(v.page - 1)
}

// Page returns the current page. Entries alias the viewer's storage and
// must not be modified.
func (v *Viewer) Page() Page {
	return Page{
		Entries:    Paginate(v.filtered, v.pageSize, v.page),
		Number:     v.page,
		TotalPages: TotalPages(len(v.filtered), v.pageSize),
		PageSize:   v.pageSize,
		Matched:    len(v.filtered),
	}
}

// Stats counts the whole collection.
func (v *Viewer) Stats() models.Stats {
	return ComputeStats(v.entries)
}

// FilteredStats counts only entries that pass the filters.
func (v *Viewer) FilteredStats() models.Stats {
	return ComputeStats(v.filtered)
}

func (v *Viewer) apply() {
	v.filtered = ApplyFilters(v.entries, v.filters)
}
