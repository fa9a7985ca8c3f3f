package occupancy

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noiseless CO2 calibration: 350ppm baseline, 60ppm per occupant.
var co2Samples = []Sample{
	{Occupants: 0, Reading: 350},
	{Occupants: 5, Reading: 650},
	{Occupants: 10, Reading: 950},
	{Occupants: 15, Reading: 1250},
}

func TestFit_NoiselessLine(t *testing.T) {
	t.Parallel()

	fit, err := Fit(co2Samples)
	require.NoError(t, err)

	assert.InDelta(t, 60.0, fit.Slope, 1e-9)
	assert.InDelta(t, 350.0, fit.Intercept, 1e-9)
	assert.InDelta(t, 0.0, fit.Sigma, 1e-9)
	assert.Equal(t, 4, fit.N)
	assert.InDelta(t, 1.0, fit.RSquared, 1e-12)

	est, err := fit.PredictOccupants(1000)
	require.NoError(t, err)
	assert.InDelta(t, 10.83, est.Mean, 0.01)
}

func TestFit_ResidualSigmaUsesNMinusOne(t *testing.T) {
	t.Parallel()

	// Least squares gives reading = 0.8·occupants + 1.3 with residuals
	// 0.3, -0.9, 0.9, -0.3, so RSS = 1.8 and sigma = sqrt(1.8/3).
	fit, err := FitXY([]float64{0, 1, 2, 3}, []float64{1, 3, 2, 4})
	require.NoError(t, err)

	assert.InDelta(t, 0.8, fit.Slope, 1e-12)
	assert.InDelta(t, 1.3, fit.Intercept, 1e-12)
	assert.InDelta(t, math.Sqrt(0.6), fit.Sigma, 1e-12)
}

func TestFit_NegativeSlope(t *testing.T) {
	t.Parallel()

	fit, err := FitXY([]float64{0, 2, 4}, []float64{20, 16, 12})
	require.NoError(t, err)
	assert.InDelta(t, -2.0, fit.Slope, 1e-12)
	assert.InDelta(t, 20.0, fit.Intercept, 1e-12)
}

func TestFit_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		samples []Sample
		wantErr error
	}{
		{"nil dataset", nil, ErrInsufficientData},
		{"single sample", []Sample{{5, 100}}, ErrInsufficientData},
		{"identical occupants", []Sample{{5, 100}, {5, 200}}, ErrDegenerateInput},
		{"repeated fractional occupants", []Sample{{0.1, 1}, {0.1, 2}, {0.1, 3}}, ErrDegenerateInput},
		{"nan reading", []Sample{{1, 10}, {2, math.NaN()}}, ErrDegenerateInput},
		{"infinite occupants", []Sample{{math.Inf(1), 10}, {2, 20}}, ErrDegenerateInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fit, err := Fit(tt.samples)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, LinearFit{}, fit, "no partial result on failure")
		})
	}
}

func TestFitXY_LengthMismatch(t *testing.T) {
	t.Parallel()

	_, err := FitXY([]float64{1, 2, 3}, []float64{1, 2})
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestFit_SigmaNonNegative(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.IntN(50)
		samples := make([]Sample, n)
		for i := range samples {
			samples[i] = Sample{
				Occupants: float64(i % 16),
				Reading:   rng.NormFloat64()*25 + 400,
			}
		}
		fit, err := Fit(samples)
		require.NoError(t, err, "trial %d", trial)
		assert.GreaterOrEqual(t, fit.Sigma, 0.0, "trial %d", trial)
		assert.False(t, math.IsNaN(fit.Sigma), "trial %d", trial)
	}
}

func TestFit_DoesNotModifyInput(t *testing.T) {
	t.Parallel()

	samples := append([]Sample(nil), co2Samples...)
	_, err := Fit(samples)
	require.NoError(t, err)
	assert.Equal(t, co2Samples, samples)
}

func TestLinearFit_String(t *testing.T) {
	t.Parallel()

	fit := LinearFit{Slope: 60, Intercept: 350, Sigma: 10, N: 250}
	assert.Equal(t, "reading = 60·occupants + 350 (σ=10, n=250)", fit.String())
}
