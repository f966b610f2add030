// Package web renders the HTML pages of the UI from templates embedded in
// the binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mazenolama/Aljabr-Task/internal/model"
	"github.com/mazenolama/Aljabr-Task/internal/session"
	"github.com/mazenolama/Aljabr-Task/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page is the data every template receives.
type Page struct {
	Title   string
	Active  string // nav entry to highlight: slots | dashboard | manage | login
	Session session.Session
	Message *view.Message
	// MessageTTL is how long, in milliseconds, a message stays on screen.
	MessageTTL int64
	Data       any
}

// Renderer implements echo.Renderer.  Each page template is parsed
// together with the layout into its own set so pages can all define
// "content".
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every embedded page.
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(f), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustRenderer panics when the embedded templates do not parse.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Has reports whether a page named name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

var funcs = template.FuncMap{
	"statusClass": func(s model.SlotStatus) string {
		switch s {
		case model.StatusAvailable:
			return "st-available"
		case model.StatusBooked:
			return "st-booked"
		case model.StatusCancelled:
			return "st-cancelled"
		}
		return "st-unknown"
	},
	"title": func(s model.SlotStatus) string {
		if s == "" {
			return ""
		}
		return strings.ToUpper(string(s[:1])) + string(s[1:])
	},
	"displayDate": model.FormatDisplayDate,
	"plural": func(n int, one, many string) string {
		if n == 1 {
			return one
		}
		return many
	},
}
