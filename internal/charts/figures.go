// Package charts builds and rasterizes the dashboard figures.
package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/elianafuentes/Dash/internal/config"
	"github.com/elianafuentes/Dash/internal/dataset"
	"github.com/elianafuentes/Dash/internal/stats"
)

// Figure is one dashboard chart, ready to be rendered.
type Figure struct {
	ID    string
	Tab   string
	Title string
	Plot  *plot.Plot
}

var seriesColors = []color.RGBA{
	{R: 99, G: 110, B: 250, A: 255},
	{R: 239, G: 85, B: 59, A: 255},
	{R: 0, G: 204, B: 150, A: 255},
	{R: 171, G: 99, B: 250, A: 255},
	{R: 255, G: 161, B: 90, A: 255},
	{R: 25, G: 211, B: 243, A: 255},
	{R: 255, G: 102, B: 146, A: 255},
	{R: 182, G: 232, B: 128, A: 255},
	{R: 255, G: 151, B: 255, A: 255},
	{R: 254, G: 203, B: 82, A: 255},
}

func colorAt(i int) color.RGBA {
	return seriesColors[i%len(seriesColors)]
}

var monthNames = [...]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// Build assembles the full dashboard figure set from the loaded frame.
// Figures come back in tab order.
func Build(f *dataset.Frame, cfg config.Charts) ([]Figure, error) {
	builders := []struct {
		id    string
		tab   string
		title string
		build func() (*plot.Plot, error)
	}{
		{
			id: "histograma", tab: "📊 Distribución de Precios",
			title: "Distribución de Precios de GNCV",
			build: func() (*plot.Plot, error) { return histogram(stats.Prices(f), cfg.HistogramBins) },
		},
		{
			id: "boxplot", tab: "📦 Boxplot por Departamento",
			title: "Distribución de Precios por Departamento",
			build: func() (*plot.Plot, error) { return boxplots(stats.PricesByDepartment(f)) },
		},
		{
			id: "evolucion", tab: "📈 Evolución Temporal",
			title: "Evolución de Precios por Departamento",
			build: func() (*plot.Plot, error) { return departmentSeries(stats.SeriesByDepartment(f)) },
		},
		{
			id: "tendencia", tab: "📉 Tendencia Global",
			title: "Tendencia Global de Precios de GNCV",
			build: func() (*plot.Plot, error) { return globalTrend(stats.TrendByDate(f)) },
		},
		{
			id: "anio_mes", tab: "🗓️ Por Año y Mes",
			title: "Precio Promedio por Mes y Año",
			build: func() (*plot.Plot, error) { return monthlyByYear(stats.SeriesByYearMonth(f)) },
		},
		{
			id: "departamentos", tab: "🏞️ Por Departamento",
			title: "Precio Promedio por Departamento",
			build: func() (*plot.Plot, error) { return departmentBars(stats.MeanByDepartment(f)) },
		},
		{
			id: "municipios", tab: "🏙️ Top Municipios",
			title: fmt.Sprintf("Top %d Municipios con Precios Más Altos", cfg.TopMunicipalities),
			build: func() (*plot.Plot, error) {
				return municipalityBars(stats.TopMunicipalities(f, cfg.TopMunicipalities))
			},
		},
		{
			id: "correlacion", tab: "🔗 Matriz de Correlación",
			title: "Matriz de Correlación de Variables Numéricas",
			build: func() (*plot.Plot, error) { return correlationHeatmap(stats.Correlation(f)) },
		},
	}

	figs := make([]Figure, 0, len(builders))
	for _, b := range builders {
		p, err := b.build()
		if err != nil {
			return nil, fmt.Errorf("figure %s: %w", b.id, err)
		}

		p.Title.Text = b.title
		p.Title.TextStyle.Font.Size = vg.Points(14)

		figs = append(figs, Figure{ID: b.id, Tab: b.tab, Title: b.title, Plot: p})
	}

	return figs, nil
}

func histogram(prices []float64, bins int) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Precio (COP/m³)"
	p.Y.Label.Text = "Frecuencia"

	h, err := plotter.NewHist(plotter.Values(prices), bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = colorAt(0)

	p.Add(h)
	p.Add(plotter.NewGrid())

	return p, nil
}

func boxplots(groups []stats.DepartmentPrices) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = "Precio (COP/m³)"

	names := make([]string, 0, len(groups))
	for i, g := range groups {
		b, err := plotter.NewBoxPlot(vg.Points(18), float64(i), plotter.Values(g.Prices))
		if err != nil {
			return nil, err
		}
		b.FillColor = colorAt(i)

		p.Add(b)
		names = append(names, g.Department)
	}

	p.NominalX(names...)
	rotateTickLabels(p)

	return p, nil
}

func departmentSeries(series []stats.DepartmentSeries) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Fecha"
	p.Y.Label.Text = "Precio promedio (COP/m³)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	for i, s := range series {
		xys := make(plotter.XYs, len(s.Points))
		for j, pt := range s.Points {
			xys[j].X = float64(pt.Date.Unix())
			xys[j].Y = pt.Mean
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = colorAt(i)
		line.Width = vg.Points(1.5)

		p.Add(line)
		p.Legend.Add(s.Department, line)
	}

	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	return p, nil
}

func globalTrend(points []stats.SeriesPoint) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Fecha"
	p.Y.Label.Text = "Precio promedio (COP/m³)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Date.Unix())
		xys[i].Y = pt.Mean
	}

	line, scatter, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	line.Color = colorAt(0)
	line.Width = vg.Points(2)
	scatter.GlyphStyle.Color = colorAt(1)
	scatter.GlyphStyle.Radius = vg.Points(2.5)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(line, scatter)
	p.Add(plotter.NewGrid())

	return p, nil
}

func monthlyByYear(years []stats.YearSeries) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Mes"
	p.Y.Label.Text = "Precio promedio (COP/m³)"

	ticks := make([]plot.Tick, len(monthNames))
	for i, name := range monthNames {
		ticks[i] = plot.Tick{Value: float64(i + 1), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Min, p.X.Max = 0.5, 12.5

	for i, year := range years {
		xys := make(plotter.XYs, len(year.Points))
		for j, pt := range year.Points {
			xys[j].X = float64(pt.Month)
			xys[j].Y = pt.Mean
		}

		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, err
		}
		line.Color = colorAt(i)
		line.Width = vg.Points(1.5)
		scatter.GlyphStyle.Color = colorAt(i)
		scatter.GlyphStyle.Radius = vg.Points(2)

		p.Add(line, scatter)
		p.Legend.Add(fmt.Sprintf("%d", year.Year), line)
	}

	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	return p, nil
}

func departmentBars(means []stats.DepartmentMean) (*plot.Plot, error) {
	p := plot.New()
	p.X.Label.Text = "Precio promedio (COP/m³)"

	values := make(plotter.Values, len(means))
	names := make([]string, len(means))
	for i, m := range means {
		values[i] = m.Mean
		names[i] = m.Department
	}

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = colorAt(0)
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	p.NominalY(names...)

	return p, nil
}

func municipalityBars(top []stats.MunicipalityMean) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = "Precio promedio (COP/m³)"

	values := make(plotter.Values, len(top))
	names := make([]string, len(top))
	for i, m := range top {
		values[i] = m.Mean
		names[i] = m.Municipality
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = colorAt(1)
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	p.NominalX(names...)
	rotateTickLabels(p)

	return p, nil
}

// corrGrid adapts a correlation matrix to the heat map grid interface.
// Undefined correlations render as the neutral midpoint.
type corrGrid struct {
	m stats.Matrix
}

func (g corrGrid) Dims() (c, r int) {
	n := len(g.m.Labels)
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	v := g.m.Values[r][c]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

func correlationHeatmap(m stats.Matrix) (*plot.Plot, error) {
	p := plot.New()

	pal := moreland.SmoothBlueRed().Palette(255)
	h := plotter.NewHeatMap(corrGrid{m: m}, pal)
	h.Min, h.Max = -1, 1
	p.Add(h)

	ticks := make([]plot.Tick, len(m.Labels))
	for i, label := range m.Labels {
		ticks[i] = plot.Tick{Value: float64(i), Label: label}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	rotateTickLabels(p)

	var xys plotter.XYs
	var labels []string
	for r := range m.Values {
		for c, v := range m.Values[r] {
			if math.IsNaN(v) {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			labels = append(labels, fmt.Sprintf("%.2f", v))
		}
	}
	if len(labels) > 0 {
		cells, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, err
		}
		p.Add(cells)
	}

	return p, nil
}

func rotateTickLabels(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XCenter
}
