// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elianafuentes/Dash/internal/charts"
)

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandleFavicon serves the site favicon.
func (s *ServerContext) HandleFavicon(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/favicon.svg" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(s.Favicon)
}

// HandleChartsList serves the JSON list of available charts in tab order.
func (s *ServerContext) HandleChartsList(w http.ResponseWriter, r *http.Request) {
	if s.Degraded {
		s.serveUnavailable(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.chartList)
}

// HandleSummary serves the descriptive statistics of the loaded dataset.
func (s *ServerContext) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if s.Degraded {
		s.serveUnavailable(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.summaryJSON)
}

// HandleGeoJSON serves the price map feature collection.
func (s *ServerContext) HandleGeoJSON(w http.ResponseWriter, r *http.Request) {
	if s.Degraded {
		s.serveUnavailable(w)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.geoJSON))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.geoJSON)
}

// HandleChart serves a rendered chart image.
// Path: /charts/{id}.{webp|png}, with an optional w= query for downscaling.
func (s *ServerContext) HandleChart(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}

	name := parts[1]
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		http.NotFound(w, r)
		return
	}
	id, format := name[:dot], name[dot+1:]

	rend, ok := s.chartsByID[id]
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, ok := rend.Encoded(format)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if ws := r.URL.Query().Get("w"); ws != "" {
		width, err := strconv.Atoi(ws)
		if err != nil || width <= 0 {
			http.Error(w, "invalid width", http.StatusBadRequest)
			return
		}

		scaled, err := rend.Scaled(width, format)
		if err != nil {
			http.Error(w, "scaling failed", http.StatusInternalServerError)
			return
		}
		data = scaled
	}

	s.Metrics.ChartRequests.WithLabelValues(id, format).Inc()

	etag := fmt.Sprintf(`"%s-%x"`, id, len(data))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	contentType := "image/webp"
	if format == charts.FormatPNG {
		contentType = "image/png"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(data)
}

type healthStatus struct {
	Status   string `json:"status"`
	Rows     int    `json:"rows,omitempty"`
	LoadedAt string `json:"loaded_at,omitempty"`
}

// HandleHealth reports readiness of the dashboard.
func (s *ServerContext) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.Degraded {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(healthStatus{Status: "degraded"})
		return
	}

	_ = json.NewEncoder(w).Encode(healthStatus{
		Status:   "ok",
		Rows:     s.Rows,
		LoadedAt: s.LoadedAt.Format(time.RFC3339),
	})
}

func (s *ServerContext) serveUnavailable(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"error":"data unavailable"}`))
}
