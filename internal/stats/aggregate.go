// Package stats derives the descriptive statistics and aggregations behind
// the dashboard figures.
package stats

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/elianafuentes/Dash/internal/dataset"
)

// DepartmentMean is the mean price of one department.
type DepartmentMean struct {
	Department string
	Mean       float64
	Count      int
}

// MunicipalityMean is the mean price of one municipality.
type MunicipalityMean struct {
	Municipality string
	Mean         float64
	Count        int
}

// SeriesPoint is one (date, mean price) sample of a time series.
type SeriesPoint struct {
	Date time.Time
	Mean float64
}

// DepartmentSeries is the price time series of one department.
type DepartmentSeries struct {
	Department string
	Points     []SeriesPoint
}

// DepartmentPrices holds the raw price samples of one department.
type DepartmentPrices struct {
	Department string
	Prices     []float64
}

// MonthPoint is the mean price of one calendar month.
type MonthPoint struct {
	Month int
	Mean  float64
}

// YearSeries is the month-by-month mean price of one year.
type YearSeries struct {
	Year   int
	Points []MonthPoint
}

// Prices returns every price in record order.
func Prices(f *dataset.Frame) []float64 {
	out := make([]float64, 0, f.Len())
	for _, rec := range f.Records {
		out = append(out, rec.Price)
	}
	return out
}

// PricesByDepartment groups the raw prices per department, departments in
// alphabetical order.
func PricesByDepartment(f *dataset.Frame) []DepartmentPrices {
	groups := make(map[string][]float64)
	for _, rec := range f.Records {
		groups[rec.Department] = append(groups[rec.Department], rec.Price)
	}

	out := make([]DepartmentPrices, 0, len(groups))
	for dept, prices := range groups {
		out = append(out, DepartmentPrices{Department: dept, Prices: prices})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })

	return out
}

// MeanByDepartment returns the mean price per department, cheapest first.
func MeanByDepartment(f *dataset.Frame) []DepartmentMean {
	groups := make(map[string][]float64)
	for _, rec := range f.Records {
		groups[rec.Department] = append(groups[rec.Department], rec.Price)
	}

	out := make([]DepartmentMean, 0, len(groups))
	for dept, prices := range groups {
		out = append(out, DepartmentMean{
			Department: dept,
			Mean:       stat.Mean(prices, nil),
			Count:      len(prices),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean < out[j].Mean
		}
		return out[i].Department < out[j].Department
	})

	return out
}

// TopMunicipalities returns the n municipalities with the highest mean price,
// most expensive first.
func TopMunicipalities(f *dataset.Frame, n int) []MunicipalityMean {
	groups := make(map[string][]float64)
	for _, rec := range f.Records {
		groups[rec.Municipality] = append(groups[rec.Municipality], rec.Price)
	}

	out := make([]MunicipalityMean, 0, len(groups))
	for muni, prices := range groups {
		out = append(out, MunicipalityMean{
			Municipality: muni,
			Mean:         stat.Mean(prices, nil),
			Count:        len(prices),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean > out[j].Mean
		}
		return out[i].Municipality < out[j].Municipality
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}

	return out
}

// TrendByDate returns the mean price per observation date in date order.
func TrendByDate(f *dataset.Frame) []SeriesPoint {
	groups := make(map[time.Time][]float64)
	for _, rec := range f.Records {
		groups[rec.Date] = append(groups[rec.Date], rec.Price)
	}

	out := make([]SeriesPoint, 0, len(groups))
	for date, prices := range groups {
		out = append(out, SeriesPoint{Date: date, Mean: stat.Mean(prices, nil)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	return out
}

// SeriesByDepartment returns the per-department mean price time series,
// departments in alphabetical order, points in date order.
func SeriesByDepartment(f *dataset.Frame) []DepartmentSeries {
	type key struct {
		dept string
		date time.Time
	}

	groups := make(map[key][]float64)
	for _, rec := range f.Records {
		k := key{dept: rec.Department, date: rec.Date}
		groups[k] = append(groups[k], rec.Price)
	}

	byDept := make(map[string][]SeriesPoint)
	for k, prices := range groups {
		byDept[k.dept] = append(byDept[k.dept], SeriesPoint{Date: k.date, Mean: stat.Mean(prices, nil)})
	}

	out := make([]DepartmentSeries, 0, len(byDept))
	for dept, points := range byDept {
		sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
		out = append(out, DepartmentSeries{Department: dept, Points: points})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })

	return out
}

// SeriesByYearMonth returns the mean price per calendar month grouped by
// year, years ascending, months ascending.
func SeriesByYearMonth(f *dataset.Frame) []YearSeries {
	type key struct {
		year  int
		month int
	}

	groups := make(map[key][]float64)
	for _, rec := range f.Records {
		k := key{year: rec.Year, month: rec.Month}
		groups[k] = append(groups[k], rec.Price)
	}

	byYear := make(map[int][]MonthPoint)
	for k, prices := range groups {
		byYear[k.year] = append(byYear[k.year], MonthPoint{Month: k.month, Mean: stat.Mean(prices, nil)})
	}

	out := make([]YearSeries, 0, len(byYear))
	for year, points := range byYear {
		sort.Slice(points, func(i, j int) bool { return points[i].Month < points[j].Month })
		out = append(out, YearSeries{Year: year, Points: points})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })

	return out
}
