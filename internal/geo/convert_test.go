package geo

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elianafuentes/Dash/internal/dataset"
)

var testColumns = dataset.Columns{
	Date:         "date",
	Price:        "price",
	Department:   "dept",
	Municipality: "city",
	Latitude:     "lat",
	Longitude:    "lon",
}

func readFrame(t *testing.T, csv string) *dataset.Frame {
	t.Helper()

	frame, _, err := dataset.Read(strings.NewReader(csv), dataset.Options{Columns: testColumns})
	require.NoError(t, err)
	return frame
}

func TestConvertDropsRecordsWithoutCoordinates(t *testing.T) {
	frame := readFrame(t, "date,price,dept,city,lat,lon\n"+
		"2025-03-14,2500,CUNDINAMARCA,Bogotá,4.5,-74.1\n"+
		"2025-03-14,2700,ANTIOQUIA,Medellín,,-75.56\n")

	fc, stats, err := Convert(frame, "lat", "lon", []string{"city", "price"})
	require.NoError(t, err)

	require.Len(t, fc.Features, 1)
	ft := fc.Features[0]
	assert.Equal(t, "Feature", ft.Type)
	assert.Equal(t, "Point", ft.Geometry.Type)
	assert.Equal(t, []float64{-74.1, 4.5}, ft.Geometry.Coordinates)
	assert.Equal(t, "Bogotá", ft.Properties["city"])
	assert.Equal(t, 2500.0, ft.Properties["price"])

	assert.Equal(t, 2, stats.Input)
	assert.Equal(t, 1, stats.Features)
	assert.Equal(t, 1, stats.MissingCoords)
	assert.Equal(t, 0, stats.BadCoords)
	assert.Equal(t, 1, stats.Dropped())
}

func TestConvertEmptyFrame(t *testing.T) {
	frame := readFrame(t, "date,price,dept,city,lat,lon\n")

	fc, stats, err := Convert(frame, "lat", "lon", []string{"city"})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Input)

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}

func TestConvertUnknownFieldsFailFast(t *testing.T) {
	frame := readFrame(t, "date,price,dept,city,lat,lon\n"+
		"2025-03-14,2500,CUNDINAMARCA,Bogotá,4.5,-74.1\n")

	_, _, err := Convert(frame, "latitude", "lon", []string{"city", "no_such"})
	require.Error(t, err)

	var schemaErr *dataset.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"latitude", "no_such"}, schemaErr.Missing)
}

func TestConvertMalformedCoordinateFromExtraColumn(t *testing.T) {
	frame := readFrame(t, "date,price,dept,city,lat,lon,alt_lat,alt_lon\n"+
		"2025-03-14,2500,CUNDINAMARCA,Bogotá,4.5,-74.1,4.5,-74.1\n"+
		"2025-03-14,2700,ANTIOQUIA,Medellín,6.2,-75.5,abc,-75.5\n")

	fc, stats, err := Convert(frame, "alt_lat", "alt_lon", []string{"city"})
	require.NoError(t, err)

	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Bogotá", fc.Features[0].Properties["city"])
	assert.Equal(t, 1, stats.BadCoords)
	assert.Equal(t, 0, stats.MissingCoords)
}

func TestConvertDateProperties(t *testing.T) {
	frame := readFrame(t, "date,price,dept,city,lat,lon\n"+
		"2025-03-14,2500,CUNDINAMARCA,Bogotá,4.5,-74.1\n"+
		"2025-03-14T10:30:00,2600,CUNDINAMARCA,Soacha,4.58,-74.21\n")

	fc, _, err := Convert(frame, "lat", "lon", []string{"date"})
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	assert.Equal(t, "2025-03-14", fc.Features[0].Properties["date"])
	assert.Equal(t, "2025-03-14 10:30:00", fc.Features[1].Properties["date"])

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date":"2025-03-14"`)
}

func TestConvertDerivedColumnsAsProperties(t *testing.T) {
	frame := readFrame(t, "date,price,dept,city,lat,lon\n"+
		"2025-03-14,2500,CUNDINAMARCA,Bogotá,4.5,-74.1\n")

	fc, _, err := Convert(frame, "lat", "lon", []string{dataset.YearColumn, dataset.MonthColumn})
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	assert.Equal(t, 2025, fc.Features[0].Properties[dataset.YearColumn])
	assert.Equal(t, 3, fc.Features[0].Properties[dataset.MonthColumn])
}

func TestConvertPreservesRecordOrder(t *testing.T) {
	frame := readFrame(t, "date,price,dept,city,lat,lon\n"+
		"2025-03-14,2500,CUNDINAMARCA,Bogotá,4.5,-74.1\n"+
		"2025-03-14,2600,ANTIOQUIA,Medellín,6.25,-75.56\n"+
		"2025-03-14,2700,VALLE,Cali,3.45,-76.53\n")

	fc, _, err := Convert(frame, "lat", "lon", []string{"city"})
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	cities := make([]string, 0, 3)
	for _, ft := range fc.Features {
		cities = append(cities, ft.Properties["city"].(string))
	}
	assert.Equal(t, []string{"Bogotá", "Medellín", "Cali"}, cities)
}

func TestConvertIsDeterministic(t *testing.T) {
	frame := readFrame(t, "date,price,dept,city,lat,lon\n"+
		"2025-03-14,2500,CUNDINAMARCA,Bogotá,4.5,-74.1\n"+
		"2025-03-14,2600,ANTIOQUIA,Medellín,,-75.56\n")

	first, firstStats, err := Convert(frame, "lat", "lon", []string{"city", "price", "date"})
	require.NoError(t, err)
	second, secondStats, err := Convert(frame, "lat", "lon", []string{"city", "price", "date"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstStats, secondStats)
}

func TestNormalizeProperty(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"nil", nil, nil},
		{"string", "GNCV", "GNCV"},
		{"bool", true, true},
		{"int", 42, 42},
		{"float", 2500.5, 2500.5},
		{"nan", math.NaN(), nil},
		{"inf", math.Inf(1), nil},
		{"midnight date", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), "2025-03-14"},
		{"timestamp", time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC), "2025-03-14 10:30:00"},
		{"exotic", []int{1, 2}, "[1 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeProperty(tt.in))
		})
	}
}

func TestCoordFloat(t *testing.T) {
	tests := []struct {
		name  string
		in    interface{}
		want  float64
		state coordState
	}{
		{"float", 4.5, 4.5, coordOK},
		{"int", 4, 4.0, coordOK},
		{"numeric string", "-74.1", -74.1, coordOK},
		{"padded string", " 4.5 ", 4.5, coordOK},
		{"nil", nil, 0, coordMissing},
		{"empty string", "", 0, coordMissing},
		{"nan", math.NaN(), 0, coordMissing},
		{"nan string", "NaN", 0, coordMissing},
		{"garbage", "abc", 0, coordMalformed},
		{"wrong type", struct{}{}, 0, coordMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, state := coordFloat(tt.in)
			assert.Equal(t, tt.state, state)
			assert.Equal(t, tt.want, got)
		})
	}
}
