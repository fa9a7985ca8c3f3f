package occupancy

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Fuse combines two independent Gaussian beliefs about the same quantity
// into their Bayesian posterior (precision-weighted mean, reduced spread).
//
// An estimate with zero sigma is certain and dominates the result. Two
// certain estimates cannot be combined and yield ErrDegenerateVariance,
// even when their means agree.
func Fuse(a, b GaussianEstimate) (GaussianEstimate, error) {
	if a.Sigma == 0 && b.Sigma == 0 {
		return GaussianEstimate{}, fmt.Errorf("%w: means %v and %v", ErrDegenerateVariance, a.Mean, b.Mean)
	}
	// Weights and spread are built from sigma ratios against the hypotenuse
	// so nothing is squared at the raw scale.
	sa, sb := math.Abs(a.Sigma), math.Abs(b.Sigma)
	h := math.Hypot(sa, sb)
	wa, wb := sb/h, sa/h
	return GaussianEstimate{
		Mean:  wa*wa*a.Mean + wb*wb*b.Mean,
		Sigma: math.Min(sa, sb) * (math.Max(sa, sb) / h),
	}, nil
}

// FuseAll folds Fuse left to right over estimates. A single estimate is
// returned unchanged.
func FuseAll(estimates []GaussianEstimate) (GaussianEstimate, error) {
	if len(estimates) == 0 {
		return GaussianEstimate{}, ErrNoEstimates
	}
	acc := estimates[0]
	for i, e := range estimates[1:] {
		next, err := Fuse(acc, e)
		if err != nil {
			return GaussianEstimate{}, fmt.Errorf("fusing estimate %d: %w", i+1, err)
		}
		acc = next
	}
	return acc, nil
}

// FuseTree reduces estimates pairwise as a balanced tree, fusing the pairs
// of each level concurrently. Fuse is associative and commutative, so the
// result matches FuseAll to floating-point tolerance.
func FuseTree(estimates []GaussianEstimate) (GaussianEstimate, error) {
	if len(estimates) == 0 {
		return GaussianEstimate{}, ErrNoEstimates
	}
	level := estimates
	for len(level) > 1 {
		next := make([]GaussianEstimate, (len(level)+1)/2)
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := 0; i+1 < len(level); i += 2 {
			g.Go(func() error {
				fused, err := Fuse(level[i], level[i+1])
				if err != nil {
					return fmt.Errorf("fusing estimates %d and %d: %w", i, i+1, err)
				}
				next[i/2] = fused
				return nil
			})
		}
		if len(level)%2 == 1 {
			next[len(next)-1] = level[len(level)-1]
		}
		if err := g.Wait(); err != nil {
			return GaussianEstimate{}, err
		}
		level = next
	}
	return level[0], nil
}

// Fusion is the outcome of fusing a batch of sensor readings.
type Fusion struct {
	Readings  []float64          `json:"readings"`
	Estimates []GaussianEstimate `json:"estimates"` // one per reading, same order
	Posterior GaussianEstimate   `json:"posterior"`
}

// TreeFuseThreshold is the batch size from which FuseReadings reduces with
// FuseTree instead of a sequential FuseAll.
const TreeFuseThreshold = 256

// FuseReadings predicts the occupancy implied by each reading and fuses the
// predictions into a single posterior. Batches of TreeFuseThreshold or more
// readings are reduced concurrently.
func FuseReadings(fit LinearFit, readings []float64) (Fusion, error) {
	if len(readings) == 0 {
		return Fusion{}, ErrNoEstimates
	}
	estimates := make([]GaussianEstimate, len(readings))
	for i, r := range readings {
		e, err := PredictOccupants(fit, r)
		if err != nil {
			return Fusion{}, fmt.Errorf("reading %d (%v): %w", i, r, err)
		}
		estimates[i] = e
	}
	fuse := FuseAll
	if len(estimates) >= TreeFuseThreshold {
		fuse = FuseTree
	}
	posterior, err := fuse(estimates)
	if err != nil {
		return Fusion{}, err
	}
	return Fusion{
		Readings:  append([]float64(nil), readings...),
		Estimates: estimates,
		Posterior: posterior,
	}, nil
}
