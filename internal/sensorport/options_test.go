package sensorport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestPortOptions_Normalise(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      PortOptions
		want    PortOptions
		wantErr string
	}{
		{"defaults", PortOptions{}, PortOptions{BaudRate: 9600, DataBits: 8, StopBits: 1, Parity: "N"}, ""},
		{"even parity lower case", PortOptions{BaudRate: 19200, Parity: " even "}, PortOptions{BaudRate: 19200, DataBits: 8, StopBits: 1, Parity: "E"}, ""},
		{"odd parity two stop bits", PortOptions{DataBits: 7, StopBits: 2, Parity: "o"}, PortOptions{BaudRate: 9600, DataBits: 7, StopBits: 2, Parity: "O"}, ""},
		{"bad data bits", PortOptions{DataBits: 9}, PortOptions{}, "invalid data bits"},
		{"bad stop bits", PortOptions{StopBits: 3}, PortOptions{}, "invalid stop bits"},
		{"bad parity", PortOptions{Parity: "mark"}, PortOptions{}, "unsupported parity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.in.Normalise()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPortOptions_SerialMode(t *testing.T) {
	t.Parallel()

	mode, err := PortOptions{BaudRate: 115200, StopBits: 2, Parity: "E"}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.EvenParity,
		StopBits: serial.TwoStopBits,
	}, mode)

	mode, err = PortOptions{}.SerialMode()
	require.NoError(t, err)
	assert.Equal(t, serial.NoParity, mode.Parity)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)

	_, err = PortOptions{Parity: "X"}.SerialMode()
	assert.Error(t, err)
}

type nopPort struct{}

func (nopPort) Read([]byte) (int, error)    { return 0, nil }
func (nopPort) Write(p []byte) (int, error) { return len(p), nil }
func (nopPort) Close() error                { return nil }

func TestOpen(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotMode *serial.Mode
	opener := func(path string, mode *serial.Mode) (Port, error) {
		gotPath, gotMode = path, mode
		return nopPort{}, nil
	}

	port, err := Open("/dev/ttyUSB0", PortOptions{BaudRate: 4800}, opener)
	require.NoError(t, err)
	assert.NotNil(t, port)
	assert.Equal(t, "/dev/ttyUSB0", gotPath)
	assert.Equal(t, 4800, gotMode.BaudRate)

	failing := func(string, *serial.Mode) (Port, error) { return nil, errors.New("busy") }
	_, err = Open("/dev/ttyUSB1", PortOptions{}, failing)
	assert.ErrorContains(t, err, "/dev/ttyUSB1")
	assert.ErrorContains(t, err, "busy")

	_, err = Open("/dev/ttyUSB0", PortOptions{DataBits: 4}, opener)
	assert.ErrorContains(t, err, "invalid data bits")
}
