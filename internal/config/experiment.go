package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical experiment defaults file.
const DefaultConfigPath = "config/experiment.defaults.json"

// ExperimentConfig is the root configuration for a calibration run.
// Every field is optional; the Get* methods supply defaults for anything
// the JSON leaves out, so partial configs are safe.
type ExperimentConfig struct {
	// Simulated CO2 sensor
	CO2Intercept   *float64 `json:"co2_intercept,omitempty"`
	CO2Slope       *float64 `json:"co2_slope,omitempty"`
	CO2SensorSigma *float64 `json:"co2_sensor_sigma,omitempty"`

	// Simulated temperature sensor
	TempIntercept   *float64 `json:"temp_intercept,omitempty"`
	TempSlope       *float64 `json:"temp_slope,omitempty"`
	TempSensorSigma *float64 `json:"temp_sensor_sigma,omitempty"`

	// Population
	OccupantRange *int     `json:"occupant_range,omitempty"`
	OccupantSigma *float64 `json:"occupant_sigma,omitempty"`
	Datapoints    *int     `json:"datapoints,omitempty"`
	Seed          *uint64  `json:"seed,omitempty"`

	// Readings to predict and fuse
	Readings []float64 `json:"readings,omitempty"`

	// Plot ranges
	ReadingMin   *float64 `json:"reading_min,omitempty"`
	ReadingMax   *float64 `json:"reading_max,omitempty"`
	OccupantsMax *float64 `json:"occupants_max,omitempty"`
	PlotWidthIn  *float64 `json:"plot_width_in,omitempty"`
	PlotHeightIn *float64 `json:"plot_height_in,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrUint64(v uint64) *uint64    { return &v }

// EmptyExperimentConfig returns an ExperimentConfig with all fields unset.
func EmptyExperimentConfig() *ExperimentConfig {
	return &ExperimentConfig{}
}

// DefaultExperimentConfig returns a config with every field populated from
// the built-in defaults. It matches config/experiment.defaults.json.
func DefaultExperimentConfig() *ExperimentConfig {
	e := EmptyExperimentConfig()
	return &ExperimentConfig{
		CO2Intercept:    ptrFloat64(e.GetCO2Intercept()),
		CO2Slope:        ptrFloat64(e.GetCO2Slope()),
		CO2SensorSigma:  ptrFloat64(e.GetCO2SensorSigma()),
		TempIntercept:   ptrFloat64(e.GetTempIntercept()),
		TempSlope:       ptrFloat64(e.GetTempSlope()),
		TempSensorSigma: ptrFloat64(e.GetTempSensorSigma()),
		OccupantRange:   ptrInt(e.GetOccupantRange()),
		OccupantSigma:   ptrFloat64(e.GetOccupantSigma()),
		Datapoints:      ptrInt(e.GetDatapoints()),
		Seed:            ptrUint64(e.GetSeed()),
		Readings:        e.GetReadings(),
		ReadingMin:      ptrFloat64(e.GetReadingMin()),
		ReadingMax:      ptrFloat64(e.GetReadingMax()),
		OccupantsMax:    ptrFloat64(e.GetOccupantsMax()),
		PlotWidthIn:     ptrFloat64(e.GetPlotWidthIn()),
		PlotHeightIn:    ptrFloat64(e.GetPlotHeightIn()),
	}
}

// LoadExperimentConfig loads an ExperimentConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadExperimentConfig(path string) (*ExperimentConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyExperimentConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents so tests in nested packages can find it.
// Panics if the file cannot be loaded.
func MustLoadDefaultConfig() *ExperimentConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadExperimentConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are usable.
func (c *ExperimentConfig) Validate() error {
	for name, v := range map[string]*float64{
		"co2_sensor_sigma":  c.CO2SensorSigma,
		"temp_sensor_sigma": c.TempSensorSigma,
		"occupant_sigma":    c.OccupantSigma,
	} {
		if v != nil && (*v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%s must be non-negative and finite, got %f", name, *v)
		}
	}

	if c.CO2Slope != nil && *c.CO2Slope == 0 {
		return fmt.Errorf("co2_slope must be non-zero")
	}
	if c.TempSlope != nil && *c.TempSlope == 0 {
		return fmt.Errorf("temp_slope must be non-zero")
	}

	if c.OccupantRange != nil && *c.OccupantRange < 0 {
		return fmt.Errorf("occupant_range must be non-negative, got %d", *c.OccupantRange)
	}

	// Calibration needs at least two samples.
	if c.Datapoints != nil && *c.Datapoints < 2 {
		return fmt.Errorf("datapoints must be at least 2, got %d", *c.Datapoints)
	}

	if c.GetReadingMin() >= c.GetReadingMax() {
		return fmt.Errorf("reading_min (%f) must be less than reading_max (%f)", c.GetReadingMin(), c.GetReadingMax())
	}

	if c.OccupantsMax != nil && *c.OccupantsMax <= 0 {
		return fmt.Errorf("occupants_max must be positive, got %f", *c.OccupantsMax)
	}

	if c.PlotWidthIn != nil && *c.PlotWidthIn <= 0 {
		return fmt.Errorf("plot_width_in must be positive, got %f", *c.PlotWidthIn)
	}
	if c.PlotHeightIn != nil && *c.PlotHeightIn <= 0 {
		return fmt.Errorf("plot_height_in must be positive, got %f", *c.PlotHeightIn)
	}

	for i, r := range c.Readings {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("readings[%d] is not finite", i)
		}
	}

	return nil
}

// GetCO2Intercept returns the co2_intercept value or the default.
func (c *ExperimentConfig) GetCO2Intercept() float64 {
	if c.CO2Intercept == nil {
		return 350
	}
	return *c.CO2Intercept
}

// GetCO2Slope returns the co2_slope value or the default.
func (c *ExperimentConfig) GetCO2Slope() float64 {
	if c.CO2Slope == nil {
		return 60
	}
	return *c.CO2Slope
}

// GetCO2SensorSigma returns the co2_sensor_sigma value or the default.
func (c *ExperimentConfig) GetCO2SensorSigma() float64 {
	if c.CO2SensorSigma == nil {
		return 10
	}
	return *c.CO2SensorSigma
}

// GetTempIntercept returns the temp_intercept value or the default.
func (c *ExperimentConfig) GetTempIntercept() float64 {
	if c.TempIntercept == nil {
		return 19
	}
	return *c.TempIntercept
}

// GetTempSlope returns the temp_slope value or the default.
func (c *ExperimentConfig) GetTempSlope() float64 {
	if c.TempSlope == nil {
		return 0.6
	}
	return *c.TempSlope
}

// GetTempSensorSigma returns the temp_sensor_sigma value or the default.
func (c *ExperimentConfig) GetTempSensorSigma() float64 {
	if c.TempSensorSigma == nil {
		return 0.5
	}
	return *c.TempSensorSigma
}

// GetOccupantRange returns the occupant_range value or the default.
func (c *ExperimentConfig) GetOccupantRange() int {
	if c.OccupantRange == nil {
		return 15
	}
	return *c.OccupantRange
}

// GetOccupantSigma returns the occupant_sigma value or the default.
func (c *ExperimentConfig) GetOccupantSigma() float64 {
	if c.OccupantSigma == nil {
		return 5
	}
	return *c.OccupantSigma
}

// GetDatapoints returns the datapoints value or the default.
func (c *ExperimentConfig) GetDatapoints() int {
	if c.Datapoints == nil {
		return 250
	}
	return *c.Datapoints
}

// GetSeed returns the seed value or the default.
func (c *ExperimentConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 1
	}
	return *c.Seed
}

// GetReadings returns a copy of the configured readings or the default set.
func (c *ExperimentConfig) GetReadings() []float64 {
	if len(c.Readings) == 0 {
		return []float64{733, 790, 1037, 500, 699}
	}
	return append([]float64(nil), c.Readings...)
}

// GetReadingMin returns the reading_min value or the default.
func (c *ExperimentConfig) GetReadingMin() float64 {
	if c.ReadingMin == nil {
		return 0
	}
	return *c.ReadingMin
}

// GetReadingMax returns the reading_max value or the default.
func (c *ExperimentConfig) GetReadingMax() float64 {
	if c.ReadingMax == nil {
		return 1500
	}
	return *c.ReadingMax
}

// GetOccupantsMax returns the occupants_max value or the default.
func (c *ExperimentConfig) GetOccupantsMax() float64 {
	if c.OccupantsMax == nil {
		return 15
	}
	return *c.OccupantsMax
}

// GetPlotWidthIn returns the plot_width_in value or the default.
func (c *ExperimentConfig) GetPlotWidthIn() float64 {
	if c.PlotWidthIn == nil {
		return 8
	}
	return *c.PlotWidthIn
}

// GetPlotHeightIn returns the plot_height_in value or the default.
func (c *ExperimentConfig) GetPlotHeightIn() float64 {
	if c.PlotHeightIn == nil {
		return 6
	}
	return *c.PlotHeightIn
}
