package occupancy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// GaussianEstimate is a normally distributed belief about a reading or an
// occupant count. It is a value type: operations return new estimates and
// never modify their inputs.
type GaussianEstimate struct {
	Mean  float64 `json:"mean"`
	Sigma float64 `json:"sigma"`
}

// Variance returns Sigma².
func (e GaussianEstimate) Variance() float64 {
	return e.Sigma * e.Sigma
}

// Density evaluates the normal probability density of the estimate at x.
// A zero-sigma estimate is a point mass: +Inf at the mean, 0 elsewhere.
func (e GaussianEstimate) Density(x float64) float64 {
	if e.Sigma == 0 {
		if x == e.Mean {
			return math.Inf(1)
		}
		return 0
	}
	return distuv.Normal{Mu: e.Mean, Sigma: math.Abs(e.Sigma)}.Prob(x)
}

// Interval returns the symmetric interval Mean ± z·Sigma.
func (e GaussianEstimate) Interval(z float64) (lo, hi float64) {
	half := math.Abs(z * e.Sigma)
	return e.Mean - half, e.Mean + half
}

func (e GaussianEstimate) String() string {
	return fmt.Sprintf("N(%.4g, %.4g)", e.Mean, e.Sigma)
}
