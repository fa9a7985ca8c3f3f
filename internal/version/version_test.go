package version

import "testing"

func TestString(t *testing.T) {
	origVersion, origSHA, origTime := Version, GitSHA, BuildTime
	t.Cleanup(func() { Version, GitSHA, BuildTime = origVersion, origSHA, origTime })

	Version, GitSHA, BuildTime = "v0.3.0", "abc1234", "2026-10-01T00:00:00Z"
	want := "occupancy v0.3.0 (abc1234, built 2026-10-01T00:00:00Z)"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
