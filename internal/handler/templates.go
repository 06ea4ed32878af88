package handler

import (
	"embed"
	"html/template"

	"github.com/makkenzo/license-admin-console/internal/domain/license"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"statusClass": func(s license.Status) string {
		return "status-" + string(s)
	},
}

// LoadTemplates parses the console pages for gin's HTML renderer.
func LoadTemplates() (*template.Template, error) {
	return template.New("console").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}
