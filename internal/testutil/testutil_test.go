package testutil

import (
	"encoding/json"
	"os"
	"testing"
)

// The failure paths call t.Errorf/t.Fatalf; they are exercised through a
// recording testing.TB so the outer test stays green.
type recorder struct {
	testing.TB
	failed bool
}

func (r *recorder) Helper()                       {}
func (r *recorder) Errorf(string, ...interface{}) { r.failed = true }
func (r *recorder) Fatalf(string, ...interface{}) { r.failed = true }
func (r *recorder) Fatal(...interface{})          { r.failed = true }

func TestAssertClose(t *testing.T) {
	t.Parallel()

	AssertClose(t, "x", 10.001, 10, 0.01)

	r := &recorder{TB: t}
	AssertClose(r, "x", 10.1, 10, 0.01)
	if !r.failed {
		t.Error("AssertClose accepted a value outside tolerance")
	}

	r = &recorder{TB: t}
	AssertClose(r, "x", 0, 0, 1)
	if r.failed {
		t.Error("AssertClose rejected an exact match")
	}
}

func TestAssertAllClose(t *testing.T) {
	t.Parallel()

	AssertAllClose(t, "xs", []float64{1, 2, 3}, []float64{1, 2, 3.0000001}, 1e-6)

	r := &recorder{TB: t}
	AssertAllClose(r, "xs", []float64{1, 2}, []float64{1, 2, 3}, 1e-6)
	if !r.failed {
		t.Error("AssertAllClose accepted mismatched lengths")
	}
}

func TestAssertErrorHelpers(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)

	r := &recorder{TB: t}
	AssertError(r, nil)
	if !r.failed {
		t.Error("AssertError accepted a nil error")
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	path := WriteJSON(t, t.TempDir(), "cfg.json", map[string]float64{"co2_slope": 60})
	data, err := os.ReadFile(path)
	AssertNoError(t, err)

	var got map[string]float64
	AssertNoError(t, json.Unmarshal(data, &got))
	if got["co2_slope"] != 60 {
		t.Errorf("co2_slope = %v, want 60", got["co2_slope"])
	}
}
