// Package visual renders calibration and fusion results as PNG plots
// (gonum/plot) and interactive HTML charts (go-echarts). It depends on the
// occupancy core but the core never depends on it.
package visual

import (
	"math"

	"github.com/banshee-data/occupancy.report/internal/occupancy"
	"gonum.org/v1/gonum/floats"
)

// Linspace returns n evenly spaced values from lo to hi inclusive.
// n < 2 returns []float64{lo} (or nil for n <= 0).
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// RoundUp rounds x up to the next multiple of scale.
func RoundUp(x, scale float64) float64 {
	if scale <= 0 {
		return math.Ceil(x)
	}
	return math.Ceil(x/scale) * scale
}

// RoundDown rounds x down to the previous multiple of scale.
func RoundDown(x, scale float64) float64 {
	if scale <= 0 {
		return math.Floor(x)
	}
	return math.Floor(x/scale) * scale
}

// DensityGrid samples a conditional density p(y | x) over a rectangular
// grid. It satisfies plotter.GridXYZ, columns running along x and rows
// along y.
type DensityGrid struct {
	Xs, Ys []float64
	z      [][]float64 // z[row][col]
}

// NewDensityGrid evaluates model at every x and stores the density of each
// y under the estimate it returns.
func NewDensityGrid(xs, ys []float64, model func(x float64) occupancy.GaussianEstimate) *DensityGrid {
	g := &DensityGrid{Xs: xs, Ys: ys, z: make([][]float64, len(ys))}
	for r := range g.z {
		g.z[r] = make([]float64, len(xs))
	}
	for c, x := range xs {
		est := model(x)
		for r, y := range ys {
			g.z[r][c] = est.Density(y)
		}
	}
	return g
}

func (g *DensityGrid) Dims() (c, r int) { return len(g.Xs), len(g.Ys) }
func (g *DensityGrid) Z(c, r int) float64 { return g.z[r][c] }
func (g *DensityGrid) X(c int) float64 { return g.Xs[c] }
func (g *DensityGrid) Y(r int) float64 { return g.Ys[r] }

// Max returns the largest finite density in the grid.
func (g *DensityGrid) Max() float64 {
	m := 0.0
	for _, row := range g.z {
		for _, v := range row {
			if !math.IsInf(v, 0) && v > m {
				m = v
			}
		}
	}
	return m
}

// Min is always zero so the palette starts at "no probability".
func (g *DensityGrid) Min() float64 { return 0 }
