package views

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Context holds the variables a page template is rendered with.
type Context map[string]interface{}

// Renderer writes a named page template as the response.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, ctx Context) error
}

// TemplateRenderer renders the embedded page templates inside the shared layout.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("2 January 2006")
	},
	"linebreaks": func(s string) template.HTML {
		escaped := template.HTMLEscapeString(strings.TrimSpace(s))
		return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
	},
	"truncate": func(s string, n int) string {
		runes := []rune(s)
		if len(runes) <= n {
			return s
		}
		return string(runes[:n]) + "…"
	},
	"media": func(name string) string {
		return "/media/" + strings.TrimPrefix(name, "/")
	},
	"dict": func(pairs ...interface{}) (map[string]interface{}, error) {
		if len(pairs)%2 != 0 {
			return nil, errors.New("dict expects key/value pairs")
		}
		m := make(map[string]interface{}, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
	"year": func() int {
		return time.Now().Year()
	},
}

// NewTemplateRenderer parses every page under templates/ together with the layout
// and includes.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	pages := make(map[string]*template.Template)
	err := fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" {
			return nil
		}
		name := strings.TrimPrefix(p, "templates/")
		if name == "layout.html" || strings.HasPrefix(name, "includes/") {
			return nil
		}

		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/includes/*.html",
			p,
		)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{pages: pages}, nil
}

// Has reports whether a page template exists.
func (r *TemplateRenderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render buffers the page and writes the status and body only once execution succeeded.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, name string, ctx Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", ctx); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded stylesheets and images.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
