package table

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var htmlTemplates = template.Must(
	template.New("results").Funcs(template.FuncMap{
		"columns":      func() []string { return Columns },
		"skeleton":     func() []int { return make([]int, SkeletonRows) },
		"emptyMessage": func() string { return EmptyMessage },
	}).ParseFS(templateFS, "templates/*.html"),
)

// RenderHTML writes the table markup for m to w
func RenderHTML(w io.Writer, m Model) error {
	return htmlTemplates.ExecuteTemplate(w, "table", m)
}

// HTML returns the table markup for m
func HTML(m Model) (template.HTML, error) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, m); err != nil {
		return "", err
	}
	// #nosec G203 -- produced by html/template with escaped cell values
	return template.HTML(buf.String()), nil
}
