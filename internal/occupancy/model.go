package occupancy

import (
	"fmt"
	"math"
)

// PredictReading is the forward sensor model: the distribution of readings
// expected at the given occupancy. Noise is homoscedastic, so the spread is
// fit.Sigma at every occupancy level.
func PredictReading(fit LinearFit, occupants float64) GaussianEstimate {
	return GaussianEstimate{
		Mean:  occupants*fit.Slope + fit.Intercept,
		Sigma: fit.Sigma,
	}
}

// PredictOccupants inverts the sensor model: the distribution of occupant
// counts consistent with a single reading. Reading-space noise is scaled by
// 1/|Slope| into occupant space.
func PredictOccupants(fit LinearFit, reading float64) (GaussianEstimate, error) {
	if fit.Slope == 0 {
		return GaussianEstimate{}, fmt.Errorf("%w: slope is zero (intercept=%v)", ErrUndefinedInverse, fit.Intercept)
	}
	return GaussianEstimate{
		Mean:  (reading - fit.Intercept) / fit.Slope,
		Sigma: fit.Sigma / math.Abs(fit.Slope),
	}, nil
}

// PredictReading is the method form of PredictReading.
func (f LinearFit) PredictReading(occupants float64) GaussianEstimate {
	return PredictReading(f, occupants)
}

// PredictOccupants is the method form of PredictOccupants.
func (f LinearFit) PredictOccupants(reading float64) (GaussianEstimate, error) {
	return PredictOccupants(f, reading)
}

// SensorModel returns the forward model as a standalone callable, for
// consumers that sample it over a grid.
func (f LinearFit) SensorModel() func(occupants float64) GaussianEstimate {
	return f.PredictReading
}

// Predictor returns the inverse model as a standalone callable. It fails
// up front with ErrUndefinedInverse so the callable itself cannot fail.
func (f LinearFit) Predictor() (func(reading float64) GaussianEstimate, error) {
	if f.Slope == 0 {
		return nil, fmt.Errorf("%w: slope is zero", ErrUndefinedInverse)
	}
	return func(reading float64) GaussianEstimate {
		e, _ := PredictOccupants(f, reading)
		return e
	}, nil
}
