// Package synth generates synthetic calibration data for a linear occupancy
// sensor. It is used by tests and the demo binary only.
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/banshee-data/occupancy.report/internal/occupancy"
	"gonum.org/v1/gonum/stat/distuv"
)

// Params describes the simulated sensor and the population it observes.
type Params struct {
	Intercept     float64 // reading at zero occupancy
	Slope         float64 // reading change per occupant
	SensorSigma   float64 // std-dev of additive reading noise
	OccupantRange int     // true occupancy is uniform in [0, OccupantRange]
	OccupantSigma float64 // std-dev of the occupancy the sensor "feels"
	Datapoints    int
}

// DefaultCO2Params models a CO2 sensor: 350ppm ambient, 60ppm per occupant.
func DefaultCO2Params() Params {
	return Params{
		Intercept:     350,
		Slope:         60,
		SensorSigma:   10,
		OccupantRange: 15,
		OccupantSigma: 5,
		Datapoints:    250,
	}
}

// DefaultTempParams models a temperature sensor: 19°C empty, 0.6°C per occupant.
func DefaultTempParams() Params {
	return Params{
		Intercept:     19,
		Slope:         0.6,
		SensorSigma:   0.5,
		OccupantRange: 15,
		OccupantSigma: 5,
		Datapoints:    250,
	}
}

// Validate reports parameter combinations that cannot be simulated.
func (p Params) Validate() error {
	var errs []error
	if p.Datapoints < 1 {
		errs = append(errs, fmt.Errorf("datapoints must be positive, got %d", p.Datapoints))
	}
	if p.OccupantRange < 0 {
		errs = append(errs, fmt.Errorf("occupant range must be non-negative, got %d", p.OccupantRange))
	}
	if p.SensorSigma < 0 || math.IsNaN(p.SensorSigma) {
		errs = append(errs, fmt.Errorf("sensor sigma must be non-negative, got %v", p.SensorSigma))
	}
	if p.OccupantSigma < 0 || math.IsNaN(p.OccupantSigma) {
		errs = append(errs, fmt.Errorf("occupant sigma must be non-negative, got %v", p.OccupantSigma))
	}
	return errors.Join(errs...)
}

// Generate draws p.Datapoints samples using src. Each sample records the
// true occupant count; the reading is driven by a noisy, non-negative
// perceived occupancy plus additive sensor noise. The same src seed always
// produces the same dataset.
func Generate(p Params, src rand.Source) ([]occupancy.Sample, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid synth params: %w", err)
	}
	rng := rand.New(src)

	samples := make([]occupancy.Sample, p.Datapoints)
	for i := range samples {
		truth := float64(rng.IntN(p.OccupantRange + 1))
		felt := math.Max(0, gauss(truth, p.OccupantSigma, src))
		reading := gauss(p.Intercept+felt*p.Slope, p.SensorSigma, src)
		samples[i] = occupancy.Sample{Occupants: truth, Reading: reading}
	}
	return samples, nil
}

// gauss draws from N(mu, sigma); sigma == 0 returns mu without consuming
// randomness.
func gauss(mu, sigma float64, src rand.Source) float64 {
	if sigma == 0 {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: src}.Rand()
}

// Readings draws n sensor readings for a room holding the given number of
// occupants, using the same noise model as Generate.
func Readings(p Params, occupants float64, n int, src rand.Source) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid synth params: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("reading count must be non-negative, got %d", n)
	}
	out := make([]float64, n)
	for i := range out {
		felt := math.Max(0, gauss(occupants, p.OccupantSigma, src))
		out[i] = gauss(p.Intercept+felt*p.Slope, p.SensorSigma, src)
	}
	return out, nil
}
