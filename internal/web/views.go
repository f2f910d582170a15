// Package web renders the server-side HTML pages.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"

	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/forms"
)

// MainLayout is the layout every page renders inside; it pulls the page in
// with {{embed}}.
const MainLayout = "layouts/main"

//go:embed templates
var templatesFS embed.FS

// NewViews returns the template engine over the embedded templates.
func NewViews() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	return NewViewsFS(sub)
}

// NewViewsFS returns an engine over fsys, laid out as layouts/, partials/
// and pages/. Templates are named by path without the extension.
func NewViewsFS(fsys fs.FS) *html.Engine {
	engine := html.NewFileSystem(http.FS(fsys), ".html")
	for name, fn := range Funcs() {
		engine.AddFunc(name, fn)
	}
	return engine
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"fieldError": func(errs forms.FieldErrors, field string) string {
			return errs[field]
		},
		"genders":        domain.Genders,
		"qualifications": domain.Qualifications,
		"add": func(a, b int) int {
			return a + b
		},
		"dateValue": func(d domain.Date) string {
			return d.FormValue()
		},
	}
}
