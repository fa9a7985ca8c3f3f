// Package sensorport reads a live stream of sensor readings, one per line,
// from a serial-attached sensor or any other io.Reader.
package sensorport

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Port is the minimal interface needed from a serial port. It allows unit
// testing without real hardware.
type Port interface {
	io.ReadWriteCloser
}

// Opener opens a Port at path. Tests substitute their own.
type Opener func(path string, mode *serial.Mode) (Port, error)

// SerialOpener opens a real serial device.
func SerialOpener(path string, mode *serial.Mode) (Port, error) {
	return serial.Open(path, mode)
}

// Open opens the sensor at path with opts using open, or SerialOpener when
// open is nil.
func Open(path string, opts PortOptions, open Opener) (Port, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	if open == nil {
		open = SerialOpener
	}
	port, err := open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open sensor port %s: %w", path, err)
	}
	return port, nil
}
