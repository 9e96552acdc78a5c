package dataset

import (
	"math"
	"strconv"
	"time"
)

// Len returns the number of records in the frame.
func (f *Frame) Len() int {
	return len(f.Records)
}

// LatestDate returns the most recent observation date, ok=false for an
// empty frame.
func (f *Frame) LatestDate() (time.Time, bool) {
	if len(f.Records) == 0 {
		return time.Time{}, false
	}

	latest := f.Records[0].Date
	for _, rec := range f.Records[1:] {
		if rec.Date.After(latest) {
			latest = rec.Date
		}
	}

	return latest, true
}

// FilterDate returns a new frame sharing the schema and holding, in order,
// the records observed at d.
func (f *Frame) FilterDate(d time.Time) *Frame {
	out := &Frame{Schema: f.Schema}
	for _, rec := range f.Records {
		if rec.Date.Equal(d) {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

// NumericColumns returns the field names usable in numeric analysis: price,
// both coordinates, the derived ANIO and MES columns, and any extra column
// whose non-empty cells all parse as numbers.
func (f *Frame) NumericColumns() []string {
	var out []string
	for _, name := range f.Schema.names {
		switch f.Schema.fields[name] {
		case kindPrice, kindLatitude, kindLongitude, kindYear, kindMonth:
			out = append(out, name)
		case kindExtra:
			if f.extraIsNumeric(name) {
				out = append(out, name)
			}
		}
	}
	return out
}

// NumericValue reads the named field from rec as a float64. ok is false when
// the value is missing, blank, non-numeric or not finite.
func (f *Frame) NumericValue(rec Record, name string) (float64, bool) {
	kind, ok := f.Schema.fields[name]
	if !ok {
		return 0, false
	}

	switch kind {
	case kindPrice:
		return rec.Price, true
	case kindLatitude:
		if rec.Latitude == nil {
			return 0, false
		}
		return *rec.Latitude, true
	case kindLongitude:
		if rec.Longitude == nil {
			return 0, false
		}
		return *rec.Longitude, true
	case kindYear:
		return float64(rec.Year), true
	case kindMonth:
		return float64(rec.Month), true
	case kindExtra:
		v, err := strconv.ParseFloat(rec.Extra[name], 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

func (f *Frame) extraIsNumeric(name string) bool {
	seen := false
	for _, rec := range f.Records {
		s := rec.Extra[name]
		if s == "" {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}
