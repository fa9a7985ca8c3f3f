package monitoring

import (
	"fmt"
	"testing"
)

func captureLogs(t *testing.T) *[]string {
	t.Helper()
	original := Logf
	t.Cleanup(func() {
		Logf = original
		SetVerbose(false)
	})
	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	lines := captureLogs(t)

	Logf("fit slope=%.1f", 60.0)
	if len(*lines) != 1 || (*lines)[0] != "fit slope=60.0" {
		t.Fatalf("custom logger got %q", *lines)
	}

	// nil installs a no-op logger
	SetLogger(nil)
	Logf("dropped")
	if len(*lines) != 1 {
		t.Errorf("no-op logger should not have triggered callback, got %q", *lines)
	}
}

func TestDebugf_GatedByVerbose(t *testing.T) {
	lines := captureLogs(t)

	Debugf("reading %d", 1)
	if len(*lines) != 0 {
		t.Fatalf("Debugf logged while quiet: %q", *lines)
	}

	SetVerbose(true)
	Debugf("reading %d", 2)
	if len(*lines) != 1 || (*lines)[0] != "[debug] reading 2" {
		t.Errorf("Debugf output = %q, want [\"[debug] reading 2\"]", *lines)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}
