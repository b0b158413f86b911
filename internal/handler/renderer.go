package handler

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// Renderer manages template parsing and rendering with isolated template sets
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses layout.html and partials/*.html as the base set, then
// clones it once per page so each page defines its own content block.
func NewRenderer(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	baseTmpl, err := template.New("base").Funcs(TemplateFuncs()).ParseFS(fsys, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	partials, err := fs.Glob(fsys, "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob partials: %w", err)
	}
	if len(partials) > 0 {
		if baseTmpl, err = baseTmpl.ParseFS(fsys, partials...); err != nil {
			return nil, fmt.Errorf("failed to parse partials: %w", err)
		}
	}

	pages, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to glob templates: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, page := range pages {
		if page == "layout.html" {
			continue
		}

		pageTmpl, err := baseTmpl.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone template for %s: %w", page, err)
		}

		pageTmpl, err = pageTmpl.ParseFS(fsys, page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", page, err)
		}

		templates[strings.TrimSuffix(page, path.Ext(page))] = pageTmpl
	}

	return &Renderer{
		templates: templates,
		logger:    logger,
	}, nil
}

// Lookup returns the template set for a page
func (r *Renderer) Lookup(name string) (*template.Template, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	return tmpl, nil
}

// Render executes a named block of a page and writes to an io.Writer
func (r *Renderer) Render(w io.Writer, page, block string, data interface{}) error {
	tmpl, err := r.Lookup(page)
	if err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, block, data)
}

// RenderHTTP renders the full page with the layout
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	r.render(w, http.StatusOK, name, "base", data)
}

// RenderHTTPStatus renders the full page with the given status code
func (r *Renderer) RenderHTTPStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	r.render(w, status, name, "base", data)
}

// RenderBlock renders a single block of a page, as htmx swaps need.
func (r *Renderer) RenderBlock(w http.ResponseWriter, page, block string, data interface{}) {
	r.render(w, http.StatusOK, page, block, data)
}

// render buffers the output so a template error never leaves a half-written page.
func (r *Renderer) render(w http.ResponseWriter, status int, page, block string, data interface{}) {
	var buf strings.Builder
	if err := r.Render(&buf, page, block, data); err != nil {
		r.logger.Error("render error", "page", page, "block", block, "error", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, buf.String())
}
