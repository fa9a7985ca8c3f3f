package visual

import (
	"math"
	"testing"

	"github.com/banshee-data/occupancy.report/internal/occupancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
)

func TestLinspace(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Linspace(0, 1, 0))
	assert.Equal(t, []float64{3}, Linspace(3, 9, 1))
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5))

	xs := Linspace(-5, 15, GridSize)
	require.Len(t, xs, GridSize)
	assert.Equal(t, -5.0, xs[0])
	assert.Equal(t, 15.0, xs[GridSize-1])
}

func TestRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		x, scale float64
		down, up float64
	}{
		{333, 10, 330, 340},
		{340, 10, 340, 340},
		{-12.5, 5, -15, -10},
		{0.37, 0.1, 0.3, 0.4},
		{7.2, 0, 7, 8},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.down, RoundDown(tt.x, tt.scale), 1e-9, "RoundDown(%v, %v)", tt.x, tt.scale)
		assert.InDelta(t, tt.up, RoundUp(tt.x, tt.scale), 1e-9, "RoundUp(%v, %v)", tt.x, tt.scale)
	}
}

func TestDensityGrid(t *testing.T) {
	t.Parallel()

	fit := occupancy.LinearFit{Slope: 60, Intercept: 350, Sigma: 10}
	xs := []float64{0, 5, 10}
	ys := []float64{350, 650, 950, 1250}
	g := NewDensityGrid(xs, ys, fit.SensorModel())

	var _ plotter.GridXYZ = g

	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 4, r)
	assert.Equal(t, 5.0, g.X(1))
	assert.Equal(t, 950.0, g.Y(2))

	peak := 1 / (10 * math.Sqrt(2*math.Pi))
	for i := range xs {
		// Row i holds the reading predicted at column i.
		assert.InDelta(t, peak, g.Z(i, i), 1e-12)
	}
	assert.InDelta(t, 0, g.Z(0, 3), 1e-12)
	assert.InDelta(t, peak, g.Max(), 1e-12)
	assert.Equal(t, 0.0, g.Min())
}

func TestDensityGrid_MaxIgnoresPointMass(t *testing.T) {
	t.Parallel()

	g := NewDensityGrid([]float64{1}, []float64{1, 2}, func(x float64) occupancy.GaussianEstimate {
		return occupancy.GaussianEstimate{Mean: x}
	})
	assert.True(t, math.IsInf(g.Z(0, 0), 1))
	assert.Equal(t, 0.0, g.Max())
}
