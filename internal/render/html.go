package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/dashmon/internal/app"
	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/format"
	"codeberg.org/mutker/dashmon/internal/logs"
	"codeberg.org/mutker/dashmon/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const bytesPerMB = 1024 * 1024

var funcs = template.FuncMap{
	"highlight": logs.Highlight,
	"date": func(ms int64) string {
		return format.Date(time.UnixMilli(ms), "")
	},
	"time": func(t time.Time) string {
		return format.Date(t, "")
	},
	"ago":    format.TimeAgo,
	"number": format.Number,
	"mb": func(v float64) string {
		return format.Bytes(uint64(max(v, 0) * bytesPerMB))
	},
	"lower": func(l models.Level) string {
		return strings.ToLower(string(l))
	},
	"levels": func() []string {
		out := []string{models.LevelAll}
		for _, l := range models.Levels {
			out = append(out, string(l))
		}
		return out
	},
}

// HTML renders the dashboard page. Render keeps the last successful page so
// it can be served without re-rendering.
type HTML struct {
	tmpl *template.Template

	mu   sync.RWMutex
	page []byte
}

func NewHTML() (*HTML, error) {
	tmpl, err := template.New("dashboard").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.New().Wrap(ErrParseTemplate, err)
	}
	return &HTML{tmpl: tmpl}, nil
}

func (*HTML) Name() string {
	return "html"
}

func (h *HTML) Render(v app.View) error {
	var buf bytes.Buffer
	if err := h.Execute(&buf, v); err != nil {
		return err
	}

	h.mu.Lock()
	h.page = buf.Bytes()
	h.mu.Unlock()

	return nil
}

// Execute writes the page for v to w.
func (h *HTML) Execute(w io.Writer, v app.View) error {
	if err := h.tmpl.ExecuteTemplate(w, "dashboard", v); err != nil {
		return errors.New().Wrap(ErrExecTemplate, err)
	}
	return nil
}

// Page returns the last rendered page, or nil before the first render.
func (h *HTML) Page() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.page
}
