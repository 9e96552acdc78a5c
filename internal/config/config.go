// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/elianafuentes/Dash/internal/dataset"
)

// Fallback map view, roughly the geographic center of Colombia.
const (
	DefaultCenterLat = 4.570868
	DefaultCenterLon = -74.297333
	DefaultZoom      = 4.5
)

// DefaultCSV is the upstream export filename the dashboard was built around.
const DefaultCSV = "Consulta_Precios_Promedio_de_Gas_Natural_Comprimido_Vehicular__AUTOMATIZADO__20250314.csv"

// Config represents the root configuration file structure.
type Config struct {
	Title    string `yaml:"title,omitempty"`
	Subtitle string `yaml:"subtitle,omitempty"`

	CSV       string `yaml:"csv"`
	Encoding  string `yaml:"encoding,omitempty"`
	Separator string `yaml:"separator,omitempty"`

	Columns     dataset.Columns `yaml:"columns,omitempty"`
	DateFormats []string        `yaml:"date_formats,omitempty"`

	// GeoJSONOutput is an optional path the latest price slice is exported
	// to at startup. Empty disables the export.
	GeoJSONOutput string `yaml:"geojson_output,omitempty"`

	Map    MapView `yaml:"map,omitempty"`
	Charts Charts  `yaml:"charts,omitempty"`
}

// MapView is the initial viewport of the price map. A zero center means
// "fit to the data".
type MapView struct {
	CenterLat float64 `yaml:"center_lat,omitempty"`
	CenterLon float64 `yaml:"center_lon,omitempty"`
	Zoom      float64 `yaml:"zoom,omitempty"`
}

// AutoCenter reports whether the viewport center should be derived from the
// data instead of the configuration.
func (m MapView) AutoCenter() bool {
	return m.CenterLat == 0 && m.CenterLon == 0
}

// Charts holds the figure rendering knobs.
type Charts struct {
	HistogramBins     int     `yaml:"histogram_bins,omitempty"`
	TopMunicipalities int     `yaml:"top_municipalities,omitempty"`
	Width             float64 `yaml:"width,omitempty"`  // inches
	Height            float64 `yaml:"height,omitempty"` // inches
	Workers           int     `yaml:"workers,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path,
// fills defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Title == "" {
		c.Title = "Análisis de Precios de GNCV en Colombia"
	}
	if c.Subtitle == "" {
		c.Subtitle = "Análisis estadístico y geoespacial de precios de gas natural vehicular"
	}
	if c.CSV == "" {
		c.CSV = DefaultCSV
	}
	if c.Encoding == "" {
		c.Encoding = dataset.EncodingLatin1
	}
	if c.Separator == "" {
		c.Separator = ","
	}

	def := dataset.DefaultColumns()
	if c.Columns.Date == "" {
		c.Columns.Date = def.Date
	}
	if c.Columns.Price == "" {
		c.Columns.Price = def.Price
	}
	if c.Columns.Department == "" {
		c.Columns.Department = def.Department
	}
	if c.Columns.Municipality == "" {
		c.Columns.Municipality = def.Municipality
	}
	if c.Columns.Latitude == "" {
		c.Columns.Latitude = def.Latitude
	}
	if c.Columns.Longitude == "" {
		c.Columns.Longitude = def.Longitude
	}

	if c.Map.Zoom <= 0 {
		c.Map.Zoom = DefaultZoom
	}

	if c.Charts.HistogramBins <= 0 {
		c.Charts.HistogramBins = 30
	}
	if c.Charts.TopMunicipalities <= 0 {
		c.Charts.TopMunicipalities = 10
	}
	if c.Charts.Width <= 0 {
		c.Charts.Width = 10
	}
	if c.Charts.Height <= 0 {
		c.Charts.Height = 5
	}
}

// Validate checks the configuration for values the rest of the pipeline
// cannot work with.
func (c *Config) Validate() error {
	if c.CSV == "" {
		return fmt.Errorf("csv path is required")
	}

	switch c.Encoding {
	case dataset.EncodingLatin1, dataset.EncodingUTF8:
	default:
		return fmt.Errorf("unsupported encoding %q", c.Encoding)
	}

	if utf8.RuneCountInString(c.Separator) != 1 {
		return fmt.Errorf("separator must be a single character, got %q", c.Separator)
	}

	if c.Charts.Workers < 0 {
		return fmt.Errorf("charts.workers must not be negative")
	}

	return nil
}

// SeparatorRune returns the CSV field delimiter.
func (c *Config) SeparatorRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Separator)
	return r
}

// DatasetOptions builds the loader options for this configuration.
func (c *Config) DatasetOptions() dataset.Options {
	return dataset.Options{
		Columns:     c.Columns,
		Encoding:    c.Encoding,
		Separator:   c.SeparatorRune(),
		DateFormats: c.DateFormats,
	}
}
