package visual

import (
	"fmt"
	"io"

	"github.com/banshee-data/occupancy.report/internal/occupancy"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// echartsAssetsHost serves the echarts JavaScript referenced by rendered pages.
const echartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// ReadingsChart renders the same series as ReadingsPlot as a standalone,
// interactive HTML page.
func ReadingsChart(w io.Writer, f occupancy.Fusion, xMin, xMax float64) error {
	if xMin >= xMax {
		return fmt.Errorf("occupant range [%g, %g] is empty", xMin, xMax)
	}
	if len(f.Estimates) == 0 {
		return occupancy.ErrNoEstimates
	}
	xs := Linspace(xMin, xMax, GridSize*2)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Occupancy given readings", Width: "1000px", Height: "600px", AssetsHost: echartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Occupancy given readings", Subtitle: fmt.Sprintf("readings=%d fused=%s", len(f.Estimates), f.Posterior)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Min: xMin, Max: xMax, Name: "Occupants", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Name: "Density ×100", NameLocation: "middle", NameGap: 40}),
	)

	seriesOpts := func(c string, width float32) []charts.SeriesOpts {
		return []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: c, Width: width}),
		}
	}

	for i, est := range f.Estimates {
		name := fmt.Sprintf("estimate %d", i)
		if i < len(f.Readings) {
			name = fmt.Sprintf("%g", f.Readings[i])
		}
		line.AddSeries(name, densitySeries(est, xs), seriesOpts(hex(modelColor.R, modelColor.G, modelColor.B), 1)...)
	}
	line.AddSeries("fused", densitySeries(f.Posterior, xs), seriesOpts(hex(posteriorColor.R, posteriorColor.G, posteriorColor.B), 2)...)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// densitySeries samples est over xs. A zero-spread estimate becomes a
// single spike at its mean since +Inf cannot be encoded as JSON.
func densitySeries(est occupancy.GaussianEstimate, xs []float64) []opts.LineData {
	if est.Sigma == 0 {
		return []opts.LineData{
			{Value: []interface{}{est.Mean, 0}},
			{Value: []interface{}{est.Mean, readingsScale}},
			{Value: []interface{}{est.Mean, 0}},
		}
	}
	data := make([]opts.LineData, len(xs))
	for i, x := range xs {
		data[i] = opts.LineData{Value: []interface{}{x, readingsScale * est.Density(x)}}
	}
	return data
}

func hex(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
