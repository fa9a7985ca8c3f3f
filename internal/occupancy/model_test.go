package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictReading(t *testing.T) {
	t.Parallel()

	fit := LinearFit{Slope: 60, Intercept: 350, Sigma: 10}

	tests := []struct {
		occupants float64
		want      GaussianEstimate
	}{
		{0, GaussianEstimate{Mean: 350, Sigma: 10}},
		{10, GaussianEstimate{Mean: 950, Sigma: 10}},
		{-1, GaussianEstimate{Mean: 290, Sigma: 10}},
		{2.5, GaussianEstimate{Mean: 500, Sigma: 10}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PredictReading(fit, tt.occupants), "occupants=%v", tt.occupants)
		assert.Equal(t, tt.want, fit.PredictReading(tt.occupants), "occupants=%v", tt.occupants)
	}
}

func TestPredictOccupants(t *testing.T) {
	t.Parallel()

	t.Run("positive slope", func(t *testing.T) {
		t.Parallel()
		fit := LinearFit{Slope: 60, Intercept: 350, Sigma: 12}
		got, err := PredictOccupants(fit, 950)
		require.NoError(t, err)
		assert.InDelta(t, 10.0, got.Mean, 1e-12)
		assert.InDelta(t, 0.2, got.Sigma, 1e-12)
	})

	t.Run("negative slope keeps sigma non-negative", func(t *testing.T) {
		t.Parallel()
		fit := LinearFit{Slope: -2, Intercept: 100, Sigma: 4}
		got, err := fit.PredictOccupants(90)
		require.NoError(t, err)
		assert.InDelta(t, 5.0, got.Mean, 1e-12)
		assert.InDelta(t, 2.0, got.Sigma, 1e-12)
	})

	t.Run("zero slope", func(t *testing.T) {
		t.Parallel()
		fit := LinearFit{Slope: 0, Intercept: 100, Sigma: 4}
		got, err := PredictOccupants(fit, 90)
		require.ErrorIs(t, err, ErrUndefinedInverse)
		assert.Equal(t, GaussianEstimate{}, got)
	})
}

func TestForwardInverseRoundTrip(t *testing.T) {
	t.Parallel()

	fits := []LinearFit{
		{Slope: 60, Intercept: 350, Sigma: 10},
		{Slope: 0.6, Intercept: 19, Sigma: 0.5},
		{Slope: -3.25, Intercept: 1e4, Sigma: 2},
		{Slope: 1e-3, Intercept: -7, Sigma: 0},
	}
	for _, fit := range fits {
		for x := -50.0; x <= 50; x += 0.75 {
			reading := fit.PredictReading(x).Mean
			back, err := fit.PredictOccupants(reading)
			require.NoError(t, err)
			assert.InDelta(t, x, back.Mean, 1e-6, "fit=%v x=%v", fit, x)
		}
	}
}

func TestLinearFit_Callables(t *testing.T) {
	t.Parallel()

	fit := LinearFit{Slope: 60, Intercept: 350, Sigma: 10}

	model := fit.SensorModel()
	assert.Equal(t, fit.PredictReading(7), model(7))

	predictor, err := fit.Predictor()
	require.NoError(t, err)
	want, err := fit.PredictOccupants(733)
	require.NoError(t, err)
	assert.Equal(t, want, predictor(733))

	_, err = LinearFit{Intercept: 350, Sigma: 10}.Predictor()
	assert.ErrorIs(t, err, ErrUndefinedInverse)
}
