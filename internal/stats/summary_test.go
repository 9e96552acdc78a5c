package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	frame := readFrame(t, sampleCSV)

	s := Summarize(frame)

	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 2440.0, s.Mean)
	assert.InDelta(t, 384.71, s.StdDev, 0.01)
	assert.Equal(t, 2000.0, s.Min)
	assert.Equal(t, 3000.0, s.Max)
	assert.Equal(t, date(t, "2025-03-13"), s.FirstDate)
	assert.Equal(t, date(t, "2025-03-14"), s.LastDate)
	assert.Equal(t, 3, s.Departments)
	assert.Equal(t, 3, s.Municipalities)

	// quartiles must respect the distribution regardless of interpolation
	assert.LessOrEqual(t, s.Min, s.Q1)
	assert.LessOrEqual(t, s.Q1, s.Median)
	assert.LessOrEqual(t, s.Median, s.Q3)
	assert.LessOrEqual(t, s.Q3, s.Max)
	assert.GreaterOrEqual(t, s.Median, 2200.0)
	assert.LessOrEqual(t, s.Median, 2600.0)
}

func TestSummarizeUniformPrices(t *testing.T) {
	csv := header + "\n" +
		"2025-03-14,2500,CUNDINAMARCA,BOGOTA,4.5,-74.1\n" +
		"2025-03-14,2500,ANTIOQUIA,MEDELLIN,6.25,-75.56\n" +
		"2025-03-14,2500,VALLE DEL CAUCA,CALI,3.45,-76.53\n" +
		"2025-03-14,2500,ATLANTICO,BARRANQUILLA,10.96,-74.8\n"
	frame := readFrame(t, csv)

	s := Summarize(frame)

	assert.Equal(t, 2500.0, s.Mean)
	assert.Equal(t, 2500.0, s.Q1)
	assert.Equal(t, 2500.0, s.Median)
	assert.Equal(t, 2500.0, s.Q3)
	assert.Equal(t, 0.0, s.StdDev)
}

func TestSummarizeSingleRow(t *testing.T) {
	csv := header + "\n2025-03-14,2500,CUNDINAMARCA,BOGOTA,4.5,-74.1\n"
	frame := readFrame(t, csv)

	s := Summarize(frame)

	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 2500.0, s.Mean)
	assert.Equal(t, 2500.0, s.Median)
	assert.Equal(t, 0.0, s.StdDev)
	assert.Equal(t, s.FirstDate, s.LastDate)
}

func TestSummarizeEmptyFrame(t *testing.T) {
	frame := readFrame(t, header+"\n")

	s := Summarize(frame)
	require.Equal(t, 0, s.Count)
	assert.Equal(t, 0.0, s.Mean)
	assert.True(t, s.FirstDate.IsZero())
}
