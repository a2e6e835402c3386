package web

import (
	"context"
	"io"

	"codeberg.org/mutker/dashmon/internal/app"
	"codeberg.org/mutker/dashmon/internal/models"
)

// Dashboard is the application state the HTTP surface drives.
type Dashboard interface {
	View() app.View
	Refresh(ctx context.Context) error
	SetFilters(f models.Filters) app.View
	ClearFilters() app.View
	GoToPage(page int) app.View
	NextPage() app.View
	PrevPage() app.View
}

// PageRenderer produces the dashboard HTML page.
type PageRenderer interface {
	Page() []byte
	Execute(w io.Writer, v app.View) error
}
