package occupancy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sample is one paired observation of a true occupant count and the sensor
// reading taken at that occupancy.
type Sample struct {
	Occupants float64 `json:"occupants"`
	Reading   float64 `json:"reading"`
}

// LinearFit holds the calibration of a linear sensor model:
//
//	reading ≈ Slope·occupants + Intercept, residual std-dev Sigma
//
// Sigma is the sample standard deviation of the regression residuals with
// n-1 degrees of freedom. N and RSquared are diagnostics only and do not
// influence predictions.
type LinearFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Sigma     float64 `json:"sigma"`

	N        int     `json:"n"`
	RSquared float64 `json:"r_squared"`
}

// Fit calibrates a LinearFit from paired samples by ordinary least squares.
func Fit(samples []Sample) (LinearFit, error) {
	occupants := make([]float64, len(samples))
	readings := make([]float64, len(samples))
	for i, s := range samples {
		occupants[i] = s.Occupants
		readings[i] = s.Reading
	}
	return FitXY(occupants, readings)
}

// FitXY is Fit for column-oriented data: occupants[i] pairs with readings[i].
func FitXY(occupants, readings []float64) (LinearFit, error) {
	if len(occupants) != len(readings) {
		return LinearFit{}, fmt.Errorf("%w: %d occupant values but %d readings",
			ErrInsufficientData, len(occupants), len(readings))
	}
	n := len(occupants)
	if n < 2 {
		return LinearFit{}, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInsufficientData, n)
	}
	for i := range occupants {
		if !isFinite(occupants[i]) || !isFinite(readings[i]) {
			return LinearFit{}, fmt.Errorf("%w: sample %d is not finite (occupants=%v, reading=%v)",
				ErrDegenerateInput, i, occupants[i], readings[i])
		}
	}
	// Exact comparison; variance of repeated values can round to a tiny
	// non-zero number.
	if floats.Min(occupants) == floats.Max(occupants) {
		return LinearFit{}, fmt.Errorf("%w: all %d samples have occupants=%v",
			ErrDegenerateInput, n, occupants[0])
	}

	intercept, slope := stat.LinearRegression(occupants, readings, nil, false)

	var rss float64
	for i := range occupants {
		r := occupants[i]*slope + intercept - readings[i]
		rss += r * r
	}

	return LinearFit{
		Slope:     slope,
		Intercept: intercept,
		Sigma:     math.Sqrt(rss / float64(n-1)),
		N:         n,
		RSquared:  stat.RSquared(occupants, readings, nil, intercept, slope),
	}, nil
}

func (f LinearFit) String() string {
	return fmt.Sprintf("reading = %.4g·occupants + %.4g (σ=%.4g, n=%d)", f.Slope, f.Intercept, f.Sigma, f.N)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
