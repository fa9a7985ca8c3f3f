package visual

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"github.com/banshee-data/occupancy.report/internal/fsutil"
	"github.com/banshee-data/occupancy.report/internal/occupancy"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// GridSize is the number of samples per axis used for density heat maps.
const GridSize = 100

// readingsScale stretches occupancy densities so they share an axis with
// the per-reading markers.
const readingsScale = 100

var (
	modelColor     = color.RGBA{R: 221, G: 132, B: 82, A: 255}
	posteriorColor = color.RGBA{R: 196, G: 78, B: 82, A: 255}
	sampleColor    = color.RGBA{R: 76, G: 114, B: 176, A: 255}
	markerColor    = color.RGBA{R: 85, G: 85, B: 85, A: 255}
)

var dotted = []vg.Length{vg.Points(1), vg.Points(3)}

// SensorModelPlot draws the calibration samples, the fitted line and the
// density of the reading given occupancy. The occupant axis spans one
// person either side of the data; the reading axis is rounded out to
// roundLevel.
func SensorModelPlot(samples []occupancy.Sample, fit occupancy.LinearFit, roundLevel float64) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, errors.New("no samples to plot")
	}

	occ := make([]float64, len(samples))
	xys := make(plotter.XYs, len(samples))
	readings := make([]float64, len(samples))
	for i, s := range samples {
		occ[i] = s.Occupants
		readings[i] = s.Reading
		xys[i] = plotter.XY{X: s.Occupants, Y: s.Reading}
	}

	xMin, xMax := floats.Min(occ)-1, floats.Max(occ)+1
	yMin, yMax := RoundDown(floats.Min(readings), roundLevel), RoundUp(floats.Max(readings), roundLevel)
	if yMin == yMax {
		yMax = yMin + 1
	}

	p := plot.New()
	p.Title.Text = "Sensor model"
	p.X.Label.Text = "Occupants"
	p.Y.Label.Text = "Reading"

	if fit.Sigma > 0 {
		grid := NewDensityGrid(Linspace(xMin, xMax, GridSize), Linspace(yMin, yMax, GridSize), fit.SensorModel())
		p.Add(plotter.NewHeatMap(grid, palette.Heat(32, 0.5)))
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("failed to create sample scatter: %w", err)
	}
	scatter.GlyphStyle.Shape = draw.CrossGlyph{}
	scatter.GlyphStyle.Color = sampleColor
	scatter.GlyphStyle.Radius = vg.Points(2)

	lineXs := Linspace(xMin, xMax, 2)
	line, err := plotter.NewLine(plotter.XYs{
		{X: lineXs[0], Y: fit.PredictReading(lineXs[0]).Mean},
		{X: lineXs[1], Y: fit.PredictReading(lineXs[1]).Mean},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fit line: %w", err)
	}
	line.Color = modelColor
	line.Width = vg.Points(1.5)

	p.Add(scatter, line)
	p.Legend.Add("samples", scatter)
	p.Legend.Add(fit.String(), line)
	p.Legend.Top = true
	p.Legend.Left = true

	p.X.Min, p.X.Max = xMin, xMax
	p.Y.Min, p.Y.Max = yMin, yMax
	return p, nil
}

// PredictorPlot draws the inverse model over [readingMin, readingMax]: the
// occupancy estimate for each reading, its density as a heat map, and a
// dotted vertical marker at each of readings.
func PredictorPlot(fit occupancy.LinearFit, readingMin, readingMax float64, readings []float64, roundLevel float64) (*plot.Plot, error) {
	if readingMin >= readingMax {
		return nil, fmt.Errorf("reading range [%g, %g] is empty", readingMin, readingMax)
	}
	predictor, err := fit.Predictor()
	if err != nil {
		return nil, err
	}

	xs := Linspace(readingMin, readingMax, GridSize)
	pts := make(plotter.XYs, len(xs))
	means := make([]float64, len(xs))
	for i, x := range xs {
		means[i] = predictor(x).Mean
		pts[i] = plotter.XY{X: x, Y: means[i]}
	}
	yMin, yMax := RoundDown(floats.Min(means), roundLevel), RoundUp(floats.Max(means), roundLevel)
	if yMin == yMax {
		yMax = yMin + 1
	}

	p := plot.New()
	p.Title.Text = "Predictor"
	p.X.Label.Text = "Reading"
	p.Y.Label.Text = "Occupants"

	if fit.Sigma > 0 {
		grid := NewDensityGrid(xs, Linspace(yMin, yMax, GridSize), predictor)
		p.Add(plotter.NewHeatMap(grid, palette.Heat(32, 0.5)))
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create predictor line: %w", err)
	}
	line.Color = modelColor
	line.Width = vg.Points(1.5)
	p.Add(line)

	for _, r := range readings {
		marker, err := plotter.NewLine(plotter.XYs{{X: r, Y: yMin}, {X: r, Y: yMax}})
		if err != nil {
			return nil, fmt.Errorf("failed to create marker for reading %g: %w", r, err)
		}
		marker.Color = markerColor
		marker.Dashes = dotted
		p.Add(marker)
	}

	p.X.Min, p.X.Max = readingMin, readingMax
	p.Y.Min, p.Y.Max = yMin, yMax
	return p, nil
}

// ReadingsPlot draws the occupancy density implied by each reading, scaled
// by 100, with a dotted marker at its mean, plus the fused posterior in a
// distinct colour. Estimates with zero spread are drawn as a marker only.
func ReadingsPlot(f occupancy.Fusion, xMin, xMax float64) (*plot.Plot, error) {
	if xMin >= xMax {
		return nil, fmt.Errorf("occupant range [%g, %g] is empty", xMin, xMax)
	}
	if len(f.Estimates) == 0 {
		return nil, occupancy.ErrNoEstimates
	}
	xs := Linspace(xMin, xMax, GridSize*2)

	p := plot.New()
	p.Title.Text = "Occupancy given readings"
	p.X.Label.Text = "Occupants"
	p.Y.Label.Text = "Density ×100"

	for i, est := range f.Estimates {
		peak := float64(readingsScale)
		if est.Sigma > 0 {
			curve, err := densityLine(est, xs)
			if err != nil {
				return nil, err
			}
			curve.Color = modelColor
			p.Add(curve)
			peak = readingsScale * est.Density(est.Mean)
		}

		marker, err := plotter.NewLine(plotter.XYs{{X: est.Mean, Y: 0}, {X: est.Mean, Y: peak}})
		if err != nil {
			return nil, fmt.Errorf("failed to create marker for estimate %d: %w", i, err)
		}
		marker.Color = markerColor
		marker.Dashes = dotted
		p.Add(marker)
		if i < len(f.Readings) {
			p.Legend.Add(fmt.Sprintf("%g", f.Readings[i]), marker)
		}
	}

	if f.Posterior.Sigma > 0 {
		post, err := densityLine(f.Posterior, xs)
		if err != nil {
			return nil, err
		}
		post.Color = posteriorColor
		post.Width = vg.Points(2)
		p.Add(post)
		p.Legend.Add("fused "+f.Posterior.String(), post)
	}

	p.X.Min, p.X.Max = xMin, xMax
	p.Y.Min = 0
	return p, nil
}

func densityLine(est occupancy.GaussianEstimate, xs []float64) (*plotter.Line, error) {
	pts := make(plotter.XYs, len(xs))
	for i, x := range xs {
		pts[i] = plotter.XY{X: x, Y: readingsScale * est.Density(x)}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to create density curve for %v: %w", est, err)
	}
	return line, nil
}

// WritePNG renders p as a width×height PNG into w.
func WritePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

// SavePNG renders p into the file at path on fsys.
func SavePNG(fsys fsutil.FileSystem, path string, p *plot.Plot, width, height vg.Length) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePNG(f, p, width, height); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// MakeOutputDir creates <baseDir>/<runID> on fsys and returns its path.
func MakeOutputDir(fsys fsutil.FileSystem, baseDir, runID string) (string, error) {
	if runID == "" {
		return "", errors.New("run ID must not be empty")
	}
	dir := filepath.Join(baseDir, runID)
	if fsys.Exists(dir) {
		return "", fmt.Errorf("output directory %s already exists", dir)
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return dir, nil
}
