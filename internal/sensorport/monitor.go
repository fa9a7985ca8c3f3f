package sensorport

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/occupancy.report/internal/monitoring"
)

// ErrNoReading marks lines that carry no reading (blank lines, comments).
var ErrNoReading = errors.New("no reading on line")

// ParseReading extracts a reading from one line of sensor output. Accepted
// forms are a bare or comma/space separated number ("733", "733,ppm",
// "733 12.5") where the first field is the reading, and JSON objects with a
// "reading" or "co2" field. Blank lines and lines starting with '#' return
// ErrNoReading.
func ParseReading(line string) (float64, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return 0, ErrNoReading
	}

	if strings.HasPrefix(line, "{") {
		var obj struct {
			Reading *float64 `json:"reading"`
			CO2     *float64 `json:"co2"`
		}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return 0, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
		switch {
		case obj.Reading != nil:
			return checkFinite(*obj.Reading)
		case obj.CO2 != nil:
			return checkFinite(*obj.CO2)
		}
		return 0, fmt.Errorf("%w: JSON has no reading or co2 field", ErrNoReading)
	}

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == ';'
	})
	if len(fields) == 0 {
		return 0, ErrNoReading
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse reading %q: %w", fields[0], err)
	}
	return checkFinite(v)
}

func checkFinite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("reading %v is not finite", v)
	}
	return v, nil
}

// Monitor scans r line by line and calls fn with each parsed reading.
// Unparseable lines are logged and skipped. Monitor returns nil at EOF,
// ctx.Err() on cancellation, or the first error returned by fn.
func Monitor(ctx context.Context, r io.Reader, fn func(reading float64) error) error {
	// Cancelled on return so the scanner goroutine never outlives Monitor.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scan := bufio.NewScanner(r)

	lineChan := make(chan string)
	scanErrChan := make(chan error, 1)

	// The blocking scan runs in its own goroutine so cancellation is
	// observed even while the port is idle.
	go func() {
		defer close(lineChan)
		for scan.Scan() {
			select {
			case lineChan <- scan.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			scanErrChan <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lineChan:
			if !ok {
				select {
				case err := <-scanErrChan:
					return fmt.Errorf("sensor read failed: %w", err)
				default:
					return nil
				}
			}
			reading, err := ParseReading(line)
			if errors.Is(err, ErrNoReading) {
				continue
			}
			if err != nil {
				monitoring.Logf("sensorport: skipping line %q: %v", line, err)
				continue
			}
			monitoring.Debugf("sensorport: reading %.2f", reading)
			if err := fn(reading); err != nil {
				return err
			}
		}
	}
}
