package stats

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/elianafuentes/Dash/internal/dataset"
)

// Summary holds the descriptive price statistics shown on the dashboard.
type Summary struct {
	Count          int       `json:"count"`
	Mean           float64   `json:"mean"`
	StdDev         float64   `json:"std_dev"`
	Min            float64   `json:"min"`
	Q1             float64   `json:"q1"`
	Median         float64   `json:"median"`
	Q3             float64   `json:"q3"`
	Max            float64   `json:"max"`
	FirstDate      time.Time `json:"first_date"`
	LastDate       time.Time `json:"last_date"`
	Departments    int       `json:"departments"`
	Municipalities int       `json:"municipalities"`
}

// Summarize computes the descriptive statistics of the frame's prices.
// The zero Summary comes back for an empty frame.
func Summarize(f *dataset.Frame) Summary {
	if f.Len() == 0 {
		return Summary{}
	}

	prices := Prices(f)
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	s := Summary{
		Count:  len(prices),
		Mean:   stat.Mean(prices, nil),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.LinInterp, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
	if len(prices) > 1 {
		s.StdDev = stat.StdDev(prices, nil)
	}

	depts := make(map[string]struct{})
	munis := make(map[string]struct{})
	first, last := f.Records[0].Date, f.Records[0].Date
	for _, rec := range f.Records {
		depts[rec.Department] = struct{}{}
		munis[rec.Municipality] = struct{}{}
		if rec.Date.Before(first) {
			first = rec.Date
		}
		if rec.Date.After(last) {
			last = rec.Date
		}
	}
	s.Departments = len(depts)
	s.Municipalities = len(munis)
	s.FirstDate = first
	s.LastDate = last

	return s
}
