package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elianafuentes/Dash/internal/config"
	"github.com/elianafuentes/Dash/internal/observability"
)

const sampleCSV = "FECHA_PRECIO,PRECIO_PROMEDIO_PUBLICADO,DEPARTAMENTO_EDS,MUNICIPIO_EDS,LATITUD_MUNICIPIO,LONGITUD_MUNICIPIO\n" +
	"2025-03-13,2400,CUNDINAMARCA,BOGOTA,4.5,-74.1\n" +
	"2025-03-14,2600,CUNDINAMARCA,BOGOTA,4.5,-74.1\n" +
	"2025-03-13,2000,ANTIOQUIA,MEDELLIN,6.25,-75.56\n" +
	"2025-03-14,2200,ANTIOQUIA,MEDELLIN,6.25,-75.56\n" +
	"2025-03-14,3000,VALLE DEL CAUCA,CALI,,\n"

func testConfig(t *testing.T, csv string) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "precios.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	cfg := config.Default()
	cfg.CSV = path
	cfg.Encoding = "utf8"
	cfg.Charts.HistogramBins = 10
	cfg.Charts.Width = 3
	cfg.Charts.Height = 1.5
	cfg.Charts.Workers = 2
	return cfg
}

func TestBuildDashboard(t *testing.T) {
	cfg := testConfig(t, sampleCSV)
	m := observability.NewMetricsForTesting()

	dash, err := BuildDashboard(cfg, m)
	require.NoError(t, err)

	assert.Equal(t, 5, dash.Frame.Len())
	assert.Equal(t, 5, dash.Summary.Count)
	assert.Len(t, dash.Rendered, 8)

	// Latest date is 2025-03-14 with three rows, one without coordinates.
	assert.Equal(t, "2025-03-14", dash.SliceDate.Format("2006-01-02"))
	assert.Len(t, dash.GeoJSON.Features, 2)
	assert.Equal(t, 1, dash.Dropped)
}

func TestBuildDashboardMissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.CSV = filepath.Join(t.TempDir(), "no-such.csv")

	_, err := BuildDashboard(cfg, observability.NewMetricsForTesting())
	assert.Error(t, err)
}

func TestBuildDashboardEmptyDataset(t *testing.T) {
	header := "FECHA_PRECIO,PRECIO_PROMEDIO_PUBLICADO,DEPARTAMENTO_EDS,MUNICIPIO_EDS,LATITUD_MUNICIPIO,LONGITUD_MUNICIPIO\n"
	cfg := testConfig(t, header)

	_, err := BuildDashboard(cfg, observability.NewMetricsForTesting())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable records")
}

func TestBuildDashboardWritesGeoJSONSnapshot(t *testing.T) {
	cfg := testConfig(t, sampleCSV)
	cfg.GeoJSONOutput = filepath.Join(t.TempDir(), "out", "precios.geojson")

	_, err := BuildDashboard(cfg, observability.NewMetricsForTesting())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.GeoJSONOutput)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)
}

func TestNewServerContext(t *testing.T) {
	cfg := testConfig(t, sampleCSV)
	m := observability.NewMetricsForTesting()

	dash, err := BuildDashboard(cfg, m)
	require.NoError(t, err)

	ctx, err := NewServerContext(cfg, dash, m)
	require.NoError(t, err)

	assert.False(t, ctx.Degraded)
	assert.NotEmpty(t, ctx.IndexHTML)
	assert.Contains(t, string(ctx.IndexHTML), cfg.Title)
	assert.Len(t, ctx.chartsByID, 8)
}

func TestNewServerContextAutoCenter(t *testing.T) {
	cfg := testConfig(t, sampleCSV)
	cfg.Map.CenterLat = 0
	cfg.Map.CenterLon = 0
	m := observability.NewMetricsForTesting()

	dash, err := BuildDashboard(cfg, m)
	require.NoError(t, err)

	ctx, err := NewServerContext(cfg, dash, m)
	require.NoError(t, err)

	// Midpoint of the two located features: lat (4.5+6.25)/2, lon near -74.83.
	assert.Contains(t, string(ctx.IndexHTML), "5.375")
	assert.Contains(t, string(ctx.IndexHTML), "-74.8")
}

func TestNewFallbackContext(t *testing.T) {
	cfg := config.Default()
	m := observability.NewMetricsForTesting()

	ctx, err := NewFallbackContext(cfg, m)
	require.NoError(t, err)

	assert.True(t, ctx.Degraded)
	assert.Contains(t, string(ctx.IndexHTML), "Error al cargar el Dashboard")
}
