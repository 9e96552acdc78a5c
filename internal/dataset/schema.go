// Package dataset handles loading the price CSV and exposing it as typed records.
package dataset

import (
	"fmt"
	"strings"
	"time"
)

// Names of the columns derived from the observation date. They are part of
// every schema and readable like any CSV column.
const (
	YearColumn  = "ANIO"
	MonthColumn = "MES"
)

// Columns names the CSV header columns holding each canonical field.
type Columns struct {
	Date         string `yaml:"date,omitempty" json:"date,omitempty"`
	Price        string `yaml:"price,omitempty" json:"price,omitempty"`
	Department   string `yaml:"department,omitempty" json:"department,omitempty"`
	Municipality string `yaml:"municipality,omitempty" json:"municipality,omitempty"`
	Latitude     string `yaml:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude    string `yaml:"longitude,omitempty" json:"longitude,omitempty"`
}

// SchemaError reports field names requested from a dataset that does not have them.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("unknown dataset columns: %s", strings.Join(e.Missing, ", "))
}

type fieldKind int

const (
	kindDate fieldKind = iota
	kindPrice
	kindDepartment
	kindMunicipality
	kindLatitude
	kindLongitude
	kindYear
	kindMonth
	kindExtra
)

// Schema lists the readable fields of a Frame: the configured canonical columns,
// the derived ANIO and MES columns, and every additional CSV column carried as-is.
type Schema struct {
	fields map[string]fieldKind
	names  []string
}

func newSchema(cols Columns, extras []string) Schema {
	s := Schema{fields: make(map[string]fieldKind, len(extras)+8)}

	add := func(name string, kind fieldKind) {
		if name == "" {
			return
		}
		if _, dup := s.fields[name]; dup {
			return
		}
		s.fields[name] = kind
		s.names = append(s.names, name)
	}

	add(cols.Date, kindDate)
	add(cols.Price, kindPrice)
	add(cols.Department, kindDepartment)
	add(cols.Municipality, kindMunicipality)
	add(cols.Latitude, kindLatitude)
	add(cols.Longitude, kindLongitude)
	add(YearColumn, kindYear)
	add(MonthColumn, kindMonth)

	for _, name := range extras {
		add(name, kindExtra)
	}

	return s
}

// Has reports whether name is a readable field of the schema.
func (s Schema) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Names returns every readable field name, canonical columns first,
// extra columns in header order.
func (s Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Check returns a SchemaError listing every requested name the schema lacks,
// or nil when all are present.
func (s Schema) Check(names ...string) error {
	var missing []string
	for _, name := range names {
		if !s.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// Value reads the named field from rec. Canonical columns come back typed
// (time.Time, float64, string, int); absent coordinates come back nil; extra
// columns come back as the raw cell string. ok is false only when the schema
// does not contain name.
func (s Schema) Value(rec Record, name string) (interface{}, bool) {
	kind, ok := s.fields[name]
	if !ok {
		return nil, false
	}

	switch kind {
	case kindDate:
		return rec.Date, true
	case kindPrice:
		return rec.Price, true
	case kindDepartment:
		return rec.Department, true
	case kindMunicipality:
		return rec.Municipality, true
	case kindLatitude:
		if rec.Latitude == nil {
			return nil, true
		}
		return *rec.Latitude, true
	case kindLongitude:
		if rec.Longitude == nil {
			return nil, true
		}
		return *rec.Longitude, true
	case kindYear:
		return rec.Year, true
	case kindMonth:
		return rec.Month, true
	default:
		return rec.Extra[name], true
	}
}

// Record is one usable CSV row. Latitude and Longitude are nil when the source
// cell was empty or not a number. Extra holds the cells of non-canonical columns.
type Record struct {
	Date         time.Time
	Department   string
	Municipality string
	Extra        map[string]string
	Price        float64
	Latitude     *float64
	Longitude    *float64
	Year         int
	Month        int
}

// Coordinates returns the record position as (lat, lon), ok=false when either
// side is missing.
func (r Record) Coordinates() (lat, lon float64, ok bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return 0, 0, false
	}
	return *r.Latitude, *r.Longitude, true
}
