package occupancy

import "errors"

// Validation failures. All are deterministic; callers should not retry.
// Returned errors wrap these sentinels, so match them with errors.Is.
var (
	// ErrInsufficientData is returned when a calibration dataset has fewer
	// than two samples.
	ErrInsufficientData = errors.New("insufficient calibration data")
	// ErrDegenerateInput is returned when every occupant value in a
	// calibration dataset is identical, or a sample is not finite.
	ErrDegenerateInput = errors.New("degenerate calibration input")
	// ErrUndefinedInverse is returned when predicting occupants from a fit
	// whose slope is zero.
	ErrUndefinedInverse = errors.New("sensor model has no inverse")
	// ErrDegenerateVariance is returned when fusing two estimates that both
	// have zero uncertainty.
	ErrDegenerateVariance = errors.New("cannot fuse two zero-variance estimates")
	// ErrNoEstimates is returned when reducing an empty set of estimates.
	ErrNoEstimates = errors.New("no estimates to fuse")
)
