package api

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

// loadTemplates parses the embedded HTML templates. Embedding keeps the
// binary self-contained; only static assets stay on disk.
func loadTemplates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}
