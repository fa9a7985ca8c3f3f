// Package occupancy owns the probabilistic core of the occupancy estimator.
//
// Responsibilities: least-squares calibration of a linear sensor model
// (Fit), the forward Gaussian measurement model (PredictReading), its
// algebraic inverse (PredictOccupants), and precision-weighted Bayesian
// fusion of independent Gaussian estimates (Fuse, FuseAll, FuseTree).
// Key types: Sample, LinearFit, GaussianEstimate.
//
// Every operation is a pure function over immutable values and is safe
// for concurrent use. No I/O, logging, or rendering code is allowed in
// this package; callers own data generation, plotting, and seeding.
package occupancy
