package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/kjstillabower/weather-outfit-service/internal/location"
	"github.com/kjstillabower/weather-outfit-service/internal/recommend"
	"github.com/kjstillabower/weather-outfit-service/internal/session"
)

// ScriptURL is where the geolocation script is mounted.
const ScriptURL = "/static/locate.js"

// PageData is everything the page template reads.
type PageData struct {
	State          *session.State
	Location       location.PositionOptions
	ScriptURL      string
	MaxQueryLength int
}

// Pages renders the single page from the embedded templates.
type Pages struct {
	tmpl *template.Template
}

// NewPages parses every *.html template in fsys.
func NewPages(fsys fs.FS) (*Pages, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"garments": garments,
	}).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if tmpl.Lookup("page") == nil {
		return nil, fmt.Errorf("parse templates: no \"page\" template")
	}
	return &Pages{tmpl: tmpl}, nil
}

// Render writes the page for data. Nothing is written if the template fails.
func (p *Pages) Render(w http.ResponseWriter, data PageData) error {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "page", data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}

func garments(tempC float64) []string {
	return recommend.BandFor(tempC).Items()
}
