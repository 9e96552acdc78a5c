package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/elianafuentes/Dash/assets"
	"github.com/elianafuentes/Dash/internal/charts"
	"github.com/elianafuentes/Dash/internal/config"
	"github.com/elianafuentes/Dash/internal/dataset"
	"github.com/elianafuentes/Dash/internal/geo"
	"github.com/elianafuentes/Dash/internal/observability"
	"github.com/elianafuentes/Dash/internal/stats"
)

// Dashboard holds everything derived from one dataset load.
type Dashboard struct {
	Frame     *dataset.Frame
	LoadStats dataset.LoadStats
	Summary   stats.Summary
	Rendered  []charts.Rendered
	GeoJSON   geo.GeoJSONFeatureCollection
	Dropped   int
	SliceDate time.Time
}

// BuildDashboard loads the dataset and derives every artifact the server
// publishes: summary statistics, rasterized figures, and the price map
// collection for the latest published date.
func BuildDashboard(cfg *config.Config, m *observability.Metrics) (*Dashboard, error) {
	frame, loadStats, err := dataset.Load(cfg.CSV, cfg.DatasetOptions())
	if err != nil {
		return nil, err
	}

	m.DatasetRows.Set(float64(loadStats.Loaded))
	m.DatasetSkipped.Set(float64(loadStats.Skipped))
	m.DatasetBadCoords.Set(float64(loadStats.BadCoords))

	if frame.Len() == 0 {
		return nil, fmt.Errorf("dataset %s: no usable records", cfg.CSV)
	}

	summary := stats.Summarize(frame)

	figs, err := charts.Build(frame, cfg.Charts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	rendered, err := charts.RenderAll(figs, cfg.Charts.Width, cfg.Charts.Height, cfg.Charts.Workers)
	if err != nil {
		return nil, err
	}
	m.ChartRenderDuration.Observe(time.Since(renderStart).Seconds())

	sliceDate, _ := frame.LatestDate()
	latest := frame.FilterDate(sliceDate)

	props := []string{cfg.Columns.Municipality, cfg.Columns.Department, cfg.Columns.Price}
	fc, convStats, err := geo.Convert(latest, cfg.Columns.Latitude, cfg.Columns.Longitude, props)
	if err != nil {
		return nil, err
	}

	m.GeoFeatures.Set(float64(convStats.Features))
	m.GeoDropped.Set(float64(convStats.Dropped()))

	if cfg.GeoJSONOutput != "" {
		if err := geo.WriteFile(cfg.GeoJSONOutput, fc); err != nil {
			log.Warn().
				Err(err).
				Str("path", cfg.GeoJSONOutput).
				Msg("Failed to write GeoJSON snapshot")
		}
	}

	log.Info().
		Int("records", frame.Len()).
		Int("figures", len(rendered)).
		Int("features", convStats.Features).
		Int("dropped", convStats.Dropped()).
		Str("map_date", sliceDate.Format("2006-01-02")).
		Msg("Dashboard built")

	return &Dashboard{
		Frame:     frame,
		LoadStats: loadStats,
		Summary:   summary,
		Rendered:  rendered,
		GeoJSON:   fc,
		Dropped:   convStats.Dropped(),
		SliceDate: sliceDate,
	}, nil
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config  *config.Config
	Metrics *observability.Metrics

	IndexHTML []byte
	Favicon   []byte
	Degraded  bool
	Rows      int
	LoadedAt  time.Time

	summaryJSON []byte
	geoJSON     []byte
	chartList   []byte
	chartsByID  map[string]*charts.Rendered
}

type chartEntry struct {
	ID    string `json:"id"`
	Tab   string `json:"tab"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// NewServerContext assembles the page and the pre-encoded API payloads from a
// built dashboard.
func NewServerContext(cfg *config.Config, dash *Dashboard, m *observability.Metrics) (*ServerContext, error) {
	log.Info().
		Int("figures", len(dash.Rendered)).
		Msg("Initializing server context")

	view := cfg.Map
	if view.AutoCenter() {
		if b, ok := geo.BoundsOf(dash.GeoJSON); ok {
			view.CenterLat, view.CenterLon = b.Center()
			log.Debug().
				Float64("lat", view.CenterLat).
				Float64("lon", view.CenterLon).
				Msg("Map centered on feature bounds")
		} else {
			view.CenterLat = config.DefaultCenterLat
			view.CenterLon = config.DefaultCenterLon
		}
	}

	page, err := assets.Build(assets.PageData{
		Title:             cfg.Title,
		Subtitle:          cfg.Subtitle,
		MapCenterLat:      view.CenterLat,
		MapCenterLon:      view.CenterLon,
		MapZoom:           view.Zoom,
		MunicipalityField: cfg.Columns.Municipality,
		DepartmentField:   cfg.Columns.Department,
		PriceField:        cfg.Columns.Price,
	})
	if err != nil {
		return nil, fmt.Errorf("build index page: %w", err)
	}

	geoBytes, err := json.Marshal(dash.GeoJSON)
	if err != nil {
		return nil, fmt.Errorf("marshal GeoJSON: %w", err)
	}

	summaryBytes, err := json.Marshal(dash.Summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}

	entries := make([]chartEntry, 0, len(dash.Rendered))
	byID := make(map[string]*charts.Rendered, len(dash.Rendered))
	for i := range dash.Rendered {
		r := &dash.Rendered[i]
		byID[r.ID] = r
		entries = append(entries, chartEntry{
			ID:    r.ID,
			Tab:   r.Tab,
			Title: r.Title,
			URL:   "/charts/" + r.ID + "." + charts.FormatWebP,
		})
	}

	listBytes, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshal chart list: %w", err)
	}

	m.DashboardReady.Set(1)

	log.Info().
		Int("charts", len(byID)).
		Int("features", len(dash.GeoJSON.Features)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:      cfg,
		Metrics:     m,
		IndexHTML:   page,
		Favicon:     assets.Favicon,
		Rows:        dash.LoadStats.Loaded,
		LoadedAt:    dash.LoadStats.LoadedAt,
		summaryJSON: summaryBytes,
		geoJSON:     geoBytes,
		chartList:   listBytes,
		chartsByID:  byID,
	}, nil
}

// NewFallbackContext builds a degraded context that serves an error page and
// answers the data endpoints with 503.
func NewFallbackContext(cfg *config.Config, m *observability.Metrics) (*ServerContext, error) {
	page, err := assets.BuildFallback(cfg.Title)
	if err != nil {
		return nil, fmt.Errorf("build fallback page: %w", err)
	}

	m.DashboardReady.Set(0)

	return &ServerContext{
		Config:     cfg,
		Metrics:    m,
		IndexHTML:  page,
		Favicon:    assets.Favicon,
		Degraded:   true,
		chartsByID: map[string]*charts.Rendered{},
	}, nil
}
