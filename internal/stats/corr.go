package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/elianafuentes/Dash/internal/dataset"
)

// Matrix is a labeled correlation matrix. Values[i][j] is the Pearson
// correlation of columns Labels[i] and Labels[j], NaN when undefined.
type Matrix struct {
	Labels []string
	Values [][]float64
}

// Correlation computes the pairwise-complete Pearson correlation over every
// numeric column of the frame. A pair with fewer than two complete
// observations, or with a constant column, yields NaN.
func Correlation(f *dataset.Frame) Matrix {
	labels := f.NumericColumns()

	m := Matrix{
		Labels: labels,
		Values: make([][]float64, len(labels)),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, len(labels))
		for j := range m.Values[i] {
			m.Values[i][j] = corrPair(f, labels[i], labels[j])
		}
	}

	return m
}

func corrPair(f *dataset.Frame, a, b string) float64 {
	var xs, ys []float64
	for _, rec := range f.Records {
		x, okx := f.NumericValue(rec, a)
		y, oky := f.NumericValue(rec, b)
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}

	if len(xs) < 2 {
		return math.NaN()
	}

	return stat.Correlation(xs, ys, nil)
}
