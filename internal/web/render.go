package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// Page template names.
const (
	pageIndex       = "index"
	pageExplanation = "explanation"
	pageNotFound    = "404"
)

var pageNames = []string{pageIndex, pageExplanation, pageNotFound}

var templateFuncs = template.FuncMap{
	"percent": func(f float64) string {
		return strconv.FormatFloat(f*100, 'f', -1, 64)
	},
}

// Renderer executes the page templates, each layered over base.tmpl.
type Renderer struct {
	pages  map[string]*template.Template
	logger *logrus.Logger
}

// NewRenderer parses every page from the embedded template directory.
func NewRenderer(log *logrus.Logger) (*Renderer, error) {
	templatesFS, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, err
	}
	return newRendererFS(templatesFS, log)
}

func newRendererFS(templatesFS fs.FS, log *logrus.Logger) (*Renderer, error) {
	r := &Renderer{
		pages:  make(map[string]*template.Template, len(pageNames)),
		logger: log,
	}

	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templatesFS, "base.tmpl", name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

// Render writes the named page with the given status. The page is executed into a
// buffer first so a template error still yields a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data interface{}) {
	tmpl, ok := r.pages[name]
	if !ok {
		r.logger.WithField("template", name).Error("Unknown template")
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		r.logger.WithError(err).WithField("template", name).Error("Template execution failed")
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Check reports whether every page parsed; used as a readiness check.
func (r *Renderer) Check(ctx context.Context) error {
	for _, name := range pageNames {
		if r.pages[name] == nil {
			return fmt.Errorf("template %s not loaded", name)
		}
	}
	return nil
}
