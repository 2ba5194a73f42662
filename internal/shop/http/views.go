package http

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/stallfront/stallfront/internal/shop/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// businessTypes is the fixed choice list on the seller form.
var businessTypes = []string{
	"sole trader",
	"partnership",
	"company",
	"hobbyist",
}

// viewData is the payload every page template receives. Identity is the
// zero value for anonymous visitors.
type viewData struct {
	Identity domain.Identity
	Stage    domain.Stage
	Listings []domain.Listing
	Form     map[string]string
	Error    string
}

// Views renders the server-side pages. Each page is parsed together with
// the shared layout so page-level blocks do not collide.
type Views struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

func NewViews(logger *slog.Logger) (*Views, error) {
	funcs := template.FuncMap{
		"div":           func(a, b int64) int64 { return a / b },
		"mod":           func(a, b int64) int64 { return a % b },
		"businessTypes": func() []string { return businessTypes },
	}

	entries, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("views: glob templates: %w", err)
	}

	pages := make(map[string]*template.Template)
	for _, entry := range entries {
		name := strings.TrimSuffix(path.Base(entry), ".html")
		if name == "layout" {
			continue
		}

		tmpl, err := template.New("layout").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", entry)
		if err != nil {
			return nil, fmt.Errorf("views: parse %s: %w", entry, err)
		}
		pages[name] = tmpl
	}

	return &Views{pages: pages, logger: logger}, nil
}

// Render writes a page with the given status code. A missing or failing
// template is a programming error and reports a plain 500.
func (v *Views) Render(w http.ResponseWriter, status int, page string, data viewData) {
	tmpl, ok := v.pages[page]
	if !ok {
		v.logger.Error("unknown page template", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		v.logger.Error("template execution failed", "page", page, "error", err)
	}
}
