// Package templates renders the HTML fragments patched into the viewer over SSE.
package templates

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"os"
	"sync"

	"github.com/joeblew999/geo-filter/internal/geo"
)

//go:embed fragments/*.html
var embedded embed.FS

// funcMap provides common template functions.
var funcMap = template.FuncMap{
	// dict creates a map from key-value pairs, useful for passing multiple values to nested templates
	"dict": func(values ...any) map[string]any {
		if len(values)%2 != 0 {
			return nil
		}
		m := make(map[string]any, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				continue
			}
			m[key] = values[i+1]
		}
		return m
	},
	// cell renders a property value the way filters see it
	"cell": geo.StringValue,
}

// Renderer manages HTML fragment templates.
type Renderer struct {
	templates *template.Template
	mu        sync.RWMutex
}

// New creates a renderer from the fragments compiled into the binary.
func New() (*Renderer, error) {
	tmpl, err := parse(embedded)
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

// NewFromDir creates a renderer from dir/fragments/*.html, for
// working on templates without rebuilding.
func NewFromDir(dir string) (*Renderer, error) {
	tmpl, err := parse(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: tmpl}, nil
}

func parse(fsys fs.FS) (*template.Template, error) {
	return template.New("").Funcs(funcMap).ParseFS(fsys, "fragments/*.html")
}

// Render renders a named template to a string.
func (r *Renderer) Render(name string, data any) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToBuffer renders a named template to a buffer.
func (r *Renderer) RenderToBuffer(buf *bytes.Buffer, name string, data any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.templates.ExecuteTemplate(buf, name, data)
}

// Reload re-parses templates from dir (useful for dev hot-reload).
func (r *Renderer) Reload(dir string) error {
	tmpl, err := parse(os.DirFS(dir))
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.templates = tmpl
	r.mu.Unlock()

	return nil
}

// PreviewData feeds the preview-table fragment.
type PreviewData struct {
	Columns    []string
	Rows       []geo.Row
	MatchCount int
	TotalCount int
	Filtered   bool
}

// NewPreviewData builds preview data from a filtered table.
func NewPreviewData(t *geo.Table, matchCount, totalCount int, filtered bool) PreviewData {
	return PreviewData{
		Columns:    t.Columns,
		Rows:       t.Rows,
		MatchCount: matchCount,
		TotalCount: totalCount,
		Filtered:   filtered,
	}
}
