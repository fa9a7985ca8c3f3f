package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/occupancy.report/internal/config"
	"github.com/banshee-data/occupancy.report/internal/fsutil"
	"github.com/banshee-data/occupancy.report/internal/monitoring"
	"github.com/banshee-data/occupancy.report/internal/occupancy"
	"github.com/banshee-data/occupancy.report/internal/sensorport"
	"github.com/banshee-data/occupancy.report/internal/synth"
	"github.com/banshee-data/occupancy.report/internal/visual"
)

// Each simulated sensor draws from its own PCG stream so changing one
// sensor's parameters never perturbs the other's data.
const (
	co2Stream  = 0xC02
	tempStream = 0x7E3
	simStream  = 0x5E7
)

// z95 is the two-sided 95% normal quantile used for logged intervals.
const z95 = 1.96

type runOptions struct {
	Config *config.ExperimentConfig
	FS     fsutil.FileSystem
	OutDir string
	RunID  string
	HTML   bool

	// SimReadings > 0 simulates that many CO2 readings of a room holding
	// Occupants people and fuses them.
	Occupants   float64
	SimReadings int
}

// simulationSummary records a simulated known-occupancy room.
type simulationSummary struct {
	Occupants float64          `json:"occupants"`
	Fusion    occupancy.Fusion `json:"fusion"`
}

// sensorSummary is what a run learned about one sensor.
type sensorSummary struct {
	Fit    occupancy.LinearFit `json:"fit"`
	Fusion *occupancy.Fusion   `json:"fusion,omitempty"`
}

type runSummary struct {
	RunID string             `json:"run_id"`
	Seed  uint64             `json:"seed"`
	CO2   sensorSummary      `json:"co2"`
	Temp  sensorSummary      `json:"temp"`
	Sim   *simulationSummary `json:"simulation,omitempty"`
	Dir   string             `json:"-"`
	Files []string           `json:"files"`
}

// parseCSVFloatSlice parses a comma-separated list of floats
func parseCSVFloatSlice(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// applyOverrides folds command-line values into cfg and revalidates it.
func applyOverrides(cfg *config.ExperimentConfig, seed uint64, readings string) error {
	if seed != 0 {
		cfg.Seed = &seed
	}
	rs, err := parseCSVFloatSlice(readings)
	if err != nil {
		return err
	}
	if len(rs) > 0 {
		cfg.Readings = rs
	}
	return cfg.Validate()
}

func co2Params(cfg *config.ExperimentConfig) synth.Params {
	return synth.Params{
		Intercept:     cfg.GetCO2Intercept(),
		Slope:         cfg.GetCO2Slope(),
		SensorSigma:   cfg.GetCO2SensorSigma(),
		OccupantRange: cfg.GetOccupantRange(),
		OccupantSigma: cfg.GetOccupantSigma(),
		Datapoints:    cfg.GetDatapoints(),
	}
}

func tempParams(cfg *config.ExperimentConfig) synth.Params {
	return synth.Params{
		Intercept:     cfg.GetTempIntercept(),
		Slope:         cfg.GetTempSlope(),
		SensorSigma:   cfg.GetTempSensorSigma(),
		OccupantRange: cfg.GetOccupantRange(),
		OccupantSigma: cfg.GetOccupantSigma(),
		Datapoints:    cfg.GetDatapoints(),
	}
}

func calibrate(name string, p synth.Params, src rand.Source) ([]occupancy.Sample, occupancy.LinearFit, error) {
	samples, err := synth.Generate(p, src)
	if err != nil {
		return nil, occupancy.LinearFit{}, fmt.Errorf("%s: %w", name, err)
	}
	fit, err := occupancy.Fit(samples)
	if err != nil {
		return nil, occupancy.LinearFit{}, fmt.Errorf("%s calibration: %w", name, err)
	}
	monitoring.Logf("%s calibration: %s r²=%.3f", name, fit, fit.RSquared)
	return samples, fit, nil
}

// calibrateCO2 produces the CO2 fit used to interpret live readings.
func calibrateCO2(cfg *config.ExperimentConfig) (occupancy.LinearFit, error) {
	_, fit, err := calibrate("co2", co2Params(cfg), rand.NewPCG(cfg.GetSeed(), co2Stream))
	return fit, err
}

// runBatch calibrates both simulated sensors, fuses the configured CO2
// readings and writes plots plus a run.json summary to <OutDir>/<RunID>.
func runBatch(opts runOptions) (*runSummary, error) {
	cfg := opts.Config
	dir, err := visual.MakeOutputDir(opts.FS, opts.OutDir, opts.RunID)
	if err != nil {
		return nil, err
	}
	summary := &runSummary{RunID: opts.RunID, Seed: cfg.GetSeed(), Dir: dir}
	width := vg.Length(cfg.GetPlotWidthIn()) * vg.Inch
	height := vg.Length(cfg.GetPlotHeightIn()) * vg.Inch

	save := func(name string, p *plot.Plot, err error) error {
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		path := filepath.Join(dir, name)
		if err := visual.SavePNG(opts.FS, path, p, width, height); err != nil {
			return err
		}
		summary.Files = append(summary.Files, name)
		return nil
	}

	// CO2: calibrate, plot, then interpret the configured readings.
	co2Samples, co2Fit, err := calibrate("co2", co2Params(cfg), rand.NewPCG(cfg.GetSeed(), co2Stream))
	if err != nil {
		return nil, err
	}
	summary.CO2.Fit = co2Fit

	p, err := visual.SensorModelPlot(co2Samples, co2Fit, 10)
	if err := save("co2_sensor_model.png", p, err); err != nil {
		return nil, err
	}

	readings := cfg.GetReadings()
	p, err = visual.PredictorPlot(co2Fit, cfg.GetReadingMin(), cfg.GetReadingMax(), readings, 1)
	if err := save("co2_predictor.png", p, err); err != nil {
		return nil, err
	}

	fusion, err := occupancy.FuseReadings(co2Fit, readings)
	if err != nil {
		return nil, fmt.Errorf("co2 fusion: %w", err)
	}
	summary.CO2.Fusion = &fusion
	for i, est := range fusion.Estimates {
		monitoring.Debugf("co2 reading %g -> %s", fusion.Readings[i], est)
	}
	logPosterior("co2", fusion)

	p, err = visual.ReadingsPlot(fusion, 0, cfg.GetOccupantsMax())
	if err := save("co2_readings.png", p, err); err != nil {
		return nil, err
	}

	if opts.HTML {
		name := "co2_readings.html"
		if err := writeChart(opts.FS, filepath.Join(dir, name), fusion, cfg.GetOccupantsMax()); err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, name)
	}

	if opts.SimReadings > 0 {
		sim, err := simulateRoom(cfg, co2Fit, opts.Occupants, opts.SimReadings)
		if err != nil {
			return nil, err
		}
		summary.Sim = sim
	}

	// Temperature: calibration and model plots only.
	tempSamples, tempFit, err := calibrate("temp", tempParams(cfg), rand.NewPCG(cfg.GetSeed(), tempStream))
	if err != nil {
		return nil, err
	}
	summary.Temp.Fit = tempFit

	p, err = visual.SensorModelPlot(tempSamples, tempFit, 1)
	if err := save("temp_sensor_model.png", p, err); err != nil {
		return nil, err
	}

	lo, hi := tempFit.PredictReading(0).Mean, tempFit.PredictReading(float64(cfg.GetOccupantRange())).Mean
	if lo > hi {
		lo, hi = hi, lo
	}
	p, err = visual.PredictorPlot(tempFit, visual.RoundDown(lo, 1), visual.RoundUp(hi, 1)+1, nil, 1)
	if err := save("temp_predictor.png", p, err); err != nil {
		return nil, err
	}

	summary.Files = append(summary.Files, "run.json")
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := opts.FS.WriteFile(filepath.Join(dir, "run.json"), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write run summary: %w", err)
	}
	return summary, nil
}

// simulateRoom draws n CO2 readings for a room with a known occupancy and
// fuses what fit makes of them, the way a deployed sensor would be read.
func simulateRoom(cfg *config.ExperimentConfig, fit occupancy.LinearFit, occupants float64, n int) (*simulationSummary, error) {
	readings, err := synth.Readings(co2Params(cfg), occupants, n, rand.NewPCG(cfg.GetSeed(), simStream))
	if err != nil {
		return nil, fmt.Errorf("simulated room: %w", err)
	}
	fusion, err := occupancy.FuseReadings(fit, readings)
	if err != nil {
		return nil, fmt.Errorf("simulated room fusion: %w", err)
	}
	logPosterior(fmt.Sprintf("simulated room (%g occupants)", occupants), fusion)
	return &simulationSummary{Occupants: occupants, Fusion: fusion}, nil
}

func logPosterior(label string, f occupancy.Fusion) {
	lo, hi := f.Posterior.Interval(z95)
	monitoring.Logf("%s posterior from %d readings: %s, 95%% interval [%.2f, %.2f]",
		label, len(f.Estimates), f.Posterior, lo, hi)
}

func writeChart(fsys fsutil.FileSystem, path string, fusion occupancy.Fusion, occupantsMax float64) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := visual.ReadingsChart(f, fusion, 0, occupantsMax); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// streamReadings interprets each reading from r with fit and folds it into
// a running posterior, logging both. It returns what was fused so far when
// the stream ends, ctx is cancelled, or a reading cannot be fused.
func streamReadings(ctx context.Context, r io.Reader, fit occupancy.LinearFit) (occupancy.Fusion, error) {
	var fusion occupancy.Fusion
	err := sensorport.Monitor(ctx, r, func(reading float64) error {
		est, err := fit.PredictOccupants(reading)
		if err != nil {
			return err
		}
		posterior := est
		if len(fusion.Estimates) > 0 {
			if posterior, err = occupancy.Fuse(fusion.Posterior, est); err != nil {
				return fmt.Errorf("reading %g: %w", reading, err)
			}
		}
		fusion.Readings = append(fusion.Readings, reading)
		fusion.Estimates = append(fusion.Estimates, est)
		fusion.Posterior = posterior
		lo, hi := posterior.Interval(z95)
		monitoring.Logf("reading %g: estimate %s, posterior %s, 95%% interval [%.2f, %.2f]", reading, est, posterior, lo, hi)
		return nil
	})
	return fusion, err
}
