package view

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kbukum/flowview/graph"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"statusClass": func(s graph.Status) string { return "status-" + string(s) },
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return humanize.Time(t)
	},
}).ParseFS(templateFS, "templates/*.html"))

type page struct {
	Model
	Scene                      scene
	AutoRefresh                bool
	Completed, Active, Pending int
}

// RenderHTML writes the execution page. The page reloads itself every
// poll interval unless a task form is open.
func RenderHTML(w io.Writer, m Model) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page{
		Model:       m,
		Scene:       layout(m),
		AutoRefresh: m.Form == nil,
		Completed:   m.Counts[graph.StatusCompleted],
		Active:      m.Counts[graph.StatusActive],
		Pending:     m.Counts[graph.StatusPending],
	}); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
