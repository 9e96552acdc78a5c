package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/elianafuentes/Dash/internal/dataset"
)

// ConvertStats summarizes one conversion run.
type ConvertStats struct {
	// Input is the number of records offered.
	Input int
	// Features is the number of features produced.
	Features int
	// MissingCoords counts records dropped because a coordinate was absent.
	MissingCoords int
	// BadCoords counts records dropped because a coordinate was present but
	// not convertible to a number.
	BadCoords int
}

// Dropped returns the total number of records that produced no feature.
func (s ConvertStats) Dropped() int {
	return s.MissingCoords + s.BadCoords
}

// Convert turns the records of f into a GeoJSON point feature collection.
//
// latField and lonField name the coordinate columns; propertyFields name the
// columns copied into each feature's properties. All names are checked
// against the frame schema up front and an unknown name fails the whole
// conversion with a *dataset.SchemaError before any record is read.
//
// Records without both coordinates are dropped, the rest map 1:1 to features
// in record order. Property values are normalized so the result always
// encodes cleanly as JSON: dates become strings, non-finite numbers become
// null, anything exotic is stringified.
func Convert(f *dataset.Frame, latField, lonField string, propertyFields []string) (GeoJSONFeatureCollection, ConvertStats, error) {
	fields := append([]string{latField, lonField}, propertyFields...)
	if err := f.Schema.Check(fields...); err != nil {
		return GeoJSONFeatureCollection{}, ConvertStats{}, err
	}

	fc := NewFeatureCollection()
	stats := ConvertStats{Input: f.Len()}

	for i, rec := range f.Records {
		latRaw, _ := f.Schema.Value(rec, latField)
		lonRaw, _ := f.Schema.Value(rec, lonField)

		lat, latState := coordFloat(latRaw)
		lon, lonState := coordFloat(lonRaw)

		switch {
		case latState == coordMalformed || lonState == coordMalformed:
			stats.BadCoords++
			log.Debug().
				Int("row", i).
				Str("lat", fmt.Sprintf("%v", latRaw)).
				Str("lon", fmt.Sprintf("%v", lonRaw)).
				Msg("Skipping record with non-numeric coordinate")
			continue
		case latState == coordMissing || lonState == coordMissing:
			stats.MissingCoords++
			continue
		}

		props := make(map[string]interface{}, len(propertyFields))
		for _, name := range propertyFields {
			v, _ := f.Schema.Value(rec, name)
			props[name] = normalizeProperty(v)
		}

		fc.Features = append(fc.Features, NewPointFeature(lat, lon, props))
	}

	stats.Features = len(fc.Features)
	return fc, stats, nil
}

type coordState int

const (
	coordOK coordState = iota
	coordMissing
	coordMalformed
)

// coordFloat interprets a raw column value as a coordinate. Absent or
// non-finite values are missing data; values of the wrong shape are malformed.
func coordFloat(v interface{}) (float64, coordState) {
	switch t := v.(type) {
	case nil:
		return 0, coordMissing
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, coordMissing
		}
		return t, coordOK
	case float32:
		return coordFloat(float64(t))
	case int:
		return float64(t), coordOK
	case int64:
		return float64(t), coordOK
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, coordMissing
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, coordMalformed
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, coordMissing
		}
		return f, coordOK
	default:
		return 0, coordMalformed
	}
}

// normalizeProperty maps a column value onto something encoding/json always
// accepts: JSON-native types pass through, dates become strings, non-finite
// floats become null and unknown types are stringified.
func normalizeProperty(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return t
	case bool:
		return t
	case int:
		return t
	case int32:
		return t
	case int64:
		return t
	case uint:
		return t
	case uint64:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case float32:
		return normalizeProperty(float64(t))
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", t)
	}
}
