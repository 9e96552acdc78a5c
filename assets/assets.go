// Package assets embeds the web UI sources and assembles the final minified
// pages. The index page depends on runtime configuration (titles, map view,
// column names), so the minify and template pass runs at server startup
// instead of build time.
package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

//go:embed index.html.tpl
var indexTpl string

//go:embed fallback.html.tpl
var fallbackTpl string

//go:embed style.css
var styleCSS string

//go:embed script.js
var scriptJS string

// Favicon is served as-is at /favicon.svg and inlined into the page header.
//
//go:embed favicon.svg
var Favicon []byte

// PageData feeds the index template. CSS, JS, and SVG are filled in by Build.
type PageData struct {
	Title        string
	Subtitle     string
	MapCenterLat float64
	MapCenterLon float64
	MapZoom      float64

	// Property names the map popups read from the GeoJSON features.
	MunicipalityField string
	DepartmentField   string
	PriceField        string

	CSS string
	JS  string
	SVG string
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	return m
}

// Build renders the dashboard page and returns the minified HTML.
func Build(data PageData) ([]byte, error) {
	m := newMinifier()

	var err error
	if data.CSS, err = m.String("text/css", styleCSS); err != nil {
		return nil, fmt.Errorf("minify CSS: %w", err)
	}
	if data.JS, err = m.String("text/javascript", scriptJS); err != nil {
		return nil, fmt.Errorf("minify JS: %w", err)
	}
	if data.SVG, err = m.String("image/svg+xml", string(Favicon)); err != nil {
		return nil, fmt.Errorf("minify SVG: %w", err)
	}

	tmpl, err := template.New("index").Parse(indexTpl)
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute index template: %w", err)
	}

	final, err := m.String("text/html", buf.String())
	if err != nil {
		return nil, fmt.Errorf("minify HTML: %w", err)
	}

	return []byte(final), nil
}

// BuildFallback renders the degraded-mode page shown when the dataset could
// not be loaded.
func BuildFallback(title string) ([]byte, error) {
	m := newMinifier()

	cssMin, err := m.String("text/css", styleCSS)
	if err != nil {
		return nil, fmt.Errorf("minify CSS: %w", err)
	}

	tmpl, err := template.New("fallback").Parse(fallbackTpl)
	if err != nil {
		return nil, fmt.Errorf("parse fallback template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		Title string
		CSS   string
	}{Title: title, CSS: cssMin})
	if err != nil {
		return nil, fmt.Errorf("execute fallback template: %w", err)
	}

	final, err := m.String("text/html", buf.String())
	if err != nil {
		return nil, fmt.Errorf("minify HTML: %w", err)
	}

	return []byte(final), nil
}
