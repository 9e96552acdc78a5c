package geo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeatureCollectionMarshalsEmptyArray(t *testing.T) {
	data, err := json.Marshal(NewFeatureCollection())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}

func TestNewPointFeatureCoordinateOrder(t *testing.T) {
	ft := NewPointFeature(4.5, -74.1, map[string]interface{}{"city": "Bogotá"})

	assert.Equal(t, "Feature", ft.Type)
	assert.Equal(t, "Point", ft.Geometry.Type)
	// GeoJSON wants [lon, lat]
	assert.Equal(t, []float64{-74.1, 4.5}, ft.Geometry.Coordinates)
}

func TestBoundsOf(t *testing.T) {
	fc := NewFeatureCollection()
	fc.Features = append(fc.Features,
		NewPointFeature(4.5, -74.1, nil),
		NewPointFeature(6.25, -75.56, nil),
		NewPointFeature(1.21, -77.28, nil),
	)

	b, ok := BoundsOf(fc)
	require.True(t, ok)
	assert.Equal(t, 1.21, b.MinLat)
	assert.Equal(t, 6.25, b.MaxLat)
	assert.Equal(t, -77.28, b.MinLon)
	assert.Equal(t, -74.1, b.MaxLon)

	lat, lon := b.Center()
	assert.InDelta(t, 3.73, lat, 0.001)
	assert.InDelta(t, -75.69, lon, 0.001)
}

func TestBoundsOfEmpty(t *testing.T) {
	_, ok := BoundsOf(NewFeatureCollection())
	assert.False(t, ok)
}

func TestWriteFile(t *testing.T) {
	fc := NewFeatureCollection()
	fc.Features = append(fc.Features, NewPointFeature(4.5, -74.1, map[string]interface{}{"city": "Bogotá"}))

	path := filepath.Join(t.TempDir(), "out", "municipios_precios.geojson")
	require.NoError(t, WriteFile(path, fc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got GeoJSONFeatureCollection
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Features, 1)
	assert.Equal(t, []float64{-74.1, 4.5}, got.Features[0].Geometry.Coordinates)
	assert.Equal(t, "Bogotá", got.Features[0].Properties["city"])
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "precios.geojson")

	big := NewFeatureCollection()
	for i := 0; i < 100; i++ {
		big.Features = append(big.Features, NewPointFeature(4.5, -74.1, nil))
	}
	require.NoError(t, WriteFile(path, big))

	require.NoError(t, WriteFile(path, NewFeatureCollection()))

	var got GeoJSONFeatureCollection
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Empty(t, got.Features)
}
