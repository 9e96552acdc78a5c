package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"
)

// Supported source encodings.
const (
	EncodingLatin1 = "latin1"
	EncodingUTF8   = "utf8"
)

// defaultDateFormats covers ISO dates plus the US-style export format of the
// open data portal the CSV comes from.
var defaultDateFormats = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 03:04:05 PM",
	"01/02/2006",
}

// DefaultColumns returns the column names used by the upstream GNCV price export.
func DefaultColumns() Columns {
	return Columns{
		Date:         "FECHA_PRECIO",
		Price:        "PRECIO_PROMEDIO_PUBLICADO",
		Department:   "DEPARTAMENTO_EDS",
		Municipality: "MUNICIPIO_EDS",
		Latitude:     "LATITUD_MUNICIPIO",
		Longitude:    "LONGITUD_MUNICIPIO",
	}
}

// Options controls CSV parsing.
type Options struct {
	// Columns maps canonical fields to header names. Empty fields fall back
	// to DefaultColumns.
	Columns Columns
	// Encoding is the source byte encoding, EncodingUTF8 when empty.
	Encoding string
	// Separator is the field delimiter, ',' when zero.
	Separator rune
	// DateFormats are tried in order against the date column.
	DateFormats []string
}

// LoadStats summarizes one load run.
type LoadStats struct {
	// TotalRows is the number of data rows in the file, header excluded.
	TotalRows int
	// Loaded is the number of rows converted into records.
	Loaded int
	// Skipped counts rows dropped for a wrong field count, an unparseable
	// date or an unparseable price.
	Skipped int
	// BadCoords counts coordinate cells that were present but not numeric.
	// The owning rows are still loaded, with the coordinate set to nil.
	BadCoords int
	// LoadedAt is when the load finished.
	LoadedAt time.Time
}

// Frame is an ordered set of records sharing one schema.
type Frame struct {
	Schema  Schema
	Records []Record
}

// Load reads the CSV file at path into a Frame.
func Load(path string, opts Options) (*Frame, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, err
	}
	defer func() { _ = f.Close() }()

	log.Info().Str("path", path).Msg("Loading price dataset")

	frame, stats, err := Read(f, opts)
	if err != nil {
		return nil, stats, fmt.Errorf("read %s: %w", path, err)
	}

	return frame, stats, nil
}

// Read parses CSV data from r into a Frame. It fails fast when a required
// column is missing from the header; individual unusable rows are skipped
// and counted instead.
func Read(r io.Reader, opts Options) (*Frame, LoadStats, error) {
	cols := opts.Columns
	applyColumnDefaults(&cols)

	formats := opts.DateFormats
	if len(formats) == 0 {
		formats = defaultDateFormats
	}

	switch opts.Encoding {
	case EncodingLatin1:
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	case EncodingUTF8, "":
	default:
		return nil, LoadStats{}, fmt.Errorf("unsupported encoding %q", opts.Encoding)
	}

	cr := csv.NewReader(r)
	if opts.Separator != 0 {
		cr.Comma = opts.Separator
	}

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, LoadStats{}, errors.New("empty input: no header row")
		}
		return nil, LoadStats{}, err
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range []string{cols.Date, cols.Price, cols.Department, cols.Municipality, cols.Latitude, cols.Longitude} {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, LoadStats{}, &SchemaError{Missing: missing}
	}

	canonical := map[int]bool{
		index[cols.Date]:         true,
		index[cols.Price]:        true,
		index[cols.Department]:   true,
		index[cols.Municipality]: true,
		index[cols.Latitude]:     true,
		index[cols.Longitude]:    true,
	}

	var extras []string
	for i, name := range header {
		if !canonical[i] {
			extras = append(extras, strings.TrimSpace(name))
		}
	}

	frame := &Frame{Schema: newSchema(cols, extras)}
	stats := LoadStats{}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.TotalRows++
				stats.Skipped++
				log.Trace().Err(err).Int("row", stats.TotalRows).Msg("Skipping malformed CSV row")
				continue
			}
			return nil, stats, err
		}
		stats.TotalRows++

		date, ok := parseDate(cell(row, index[cols.Date]), formats)
		if !ok {
			stats.Skipped++
			log.Trace().Int("row", stats.TotalRows).Str("value", cell(row, index[cols.Date])).Msg("Skipping row with unparseable date")
			continue
		}

		price, err := strconv.ParseFloat(cell(row, index[cols.Price]), 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			stats.Skipped++
			log.Trace().Int("row", stats.TotalRows).Str("value", cell(row, index[cols.Price])).Msg("Skipping row with unparseable price")
			continue
		}

		rec := Record{
			Date:         date,
			Price:        price,
			Department:   cell(row, index[cols.Department]),
			Municipality: cell(row, index[cols.Municipality]),
			Latitude:     parseCoord(cell(row, index[cols.Latitude]), stats.TotalRows, cols.Latitude, &stats),
			Longitude:    parseCoord(cell(row, index[cols.Longitude]), stats.TotalRows, cols.Longitude, &stats),
			Year:         date.Year(),
			Month:        int(date.Month()),
		}

		if len(extras) > 0 {
			rec.Extra = make(map[string]string, len(extras))
			for _, name := range extras {
				rec.Extra[name] = cell(row, index[name])
			}
		}

		frame.Records = append(frame.Records, rec)
		stats.Loaded++
	}

	stats.LoadedAt = clock.Now()

	log.Info().
		Int("rows", stats.TotalRows).
		Int("loaded", stats.Loaded).
		Int("skipped", stats.Skipped).
		Int("bad_coords", stats.BadCoords).
		Msg("Dataset loaded")

	return frame, stats, nil
}

func applyColumnDefaults(cols *Columns) {
	def := DefaultColumns()
	if cols.Date == "" {
		cols.Date = def.Date
	}
	if cols.Price == "" {
		cols.Price = def.Price
	}
	if cols.Department == "" {
		cols.Department = def.Department
	}
	if cols.Municipality == "" {
		cols.Municipality = def.Municipality
	}
	if cols.Latitude == "" {
		cols.Latitude = def.Latitude
	}
	if cols.Longitude == "" {
		cols.Longitude = def.Longitude
	}
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDate(s string, formats []string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range formats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseCoord returns nil for empty or non-numeric cells. Only cells that are
// present but not numeric count towards BadCoords; empty cells are plain
// missing data.
func parseCoord(s string, row int, column string, stats *LoadStats) *float64 {
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		stats.BadCoords++
		log.Trace().Int("row", row).Str("column", column).Str("value", s).Msg("Coordinate cell is not numeric")
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}
