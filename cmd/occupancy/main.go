// Command occupancy calibrates simulated CO2 and temperature sensors against
// known occupant counts, plots the resulting sensor models, and fuses
// readings into a posterior occupancy estimate. With -port it instead
// streams live CO2 readings from a serial sensor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/banshee-data/occupancy.report/internal/config"
	"github.com/banshee-data/occupancy.report/internal/fsutil"
	"github.com/banshee-data/occupancy.report/internal/monitoring"
	"github.com/banshee-data/occupancy.report/internal/sensorport"
	"github.com/banshee-data/occupancy.report/internal/version"
)

var (
	configPath  = flag.String("config", "", "Experiment config JSON (defaults apply when empty)")
	outDir      = flag.String("out", "plots", "Base directory for run output")
	seed        = flag.Uint64("seed", 0, "Random seed (0 keeps the config value)")
	readingsArg = flag.String("readings", "", "Comma-separated CO2 readings to fuse (overrides config)")
	portPath    = flag.String("port", "", "Serial device streaming CO2 readings; enables live mode")
	baudRate    = flag.Int("baud", sensorport.DefaultBaudRate, "Serial baud rate for -port")
	parity      = flag.String("parity", "N", "Serial parity for -port (N, E or O)")
	occupants   = flag.Float64("occupants", -1, "Simulate readings of a room with this many occupants (negative disables)")
	simReadings = flag.Int("sim-readings", 500, "Number of readings simulated for -occupants")
	writeHTML   = flag.Bool("html", false, "Also write interactive HTML charts")
	verbose     = flag.Bool("verbose", false, "Log per-reading detail")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	monitoring.SetVerbose(*verbose)

	cfg := config.EmptyExperimentConfig()
	if *configPath != "" {
		loaded, err := config.LoadExperimentConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	if err := applyOverrides(cfg, *seed, *readingsArg); err != nil {
		log.Fatalf("invalid flags: %v", err)
	}

	runID := uuid.NewString()
	log.Printf("%s run=%s", version.String(), runID)

	if *portPath == "" {
		opts := runOptions{
			Config: cfg,
			FS:     fsutil.OSFileSystem{},
			OutDir: *outDir,
			RunID:  runID,
			HTML:   *writeHTML,
		}
		if *occupants >= 0 {
			opts.Occupants, opts.SimReadings = *occupants, *simReadings
		}
		summary, err := runBatch(opts)
		if err != nil {
			log.Fatalf("run failed: %v", err)
		}
		log.Printf("wrote %d files to %s", len(summary.Files), summary.Dir)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fit, err := calibrateCO2(cfg)
	if err != nil {
		log.Fatalf("calibration failed: %v", err)
	}

	port, err := sensorport.Open(*portPath, sensorport.PortOptions{BaudRate: *baudRate, Parity: *parity}, nil)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fusion, err := streamReadings(ctx, port, fit)
	if cerr := port.Close(); cerr != nil {
		log.Printf("sensor port close error: %v", cerr)
	}
	if len(fusion.Estimates) > 0 {
		log.Printf("final posterior after %d readings: %s", len(fusion.Estimates), fusion.Posterior)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("stream ended: %v", err)
	}
}
