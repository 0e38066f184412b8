package toolchain

import (
	"testing"
	"time"
)

func TestSpecStringNightly(t *testing.T) {
	s := NewNightly(time.Date(2018, 7, 20, 0, 0, 0, 0, time.UTC))
	if got, want := s.String(), "2018-07-20"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSpecStringCi(t *testing.T) {
	s := NewCi("a1b2c3d", false)
	if got, want := s.String(), "a1b2c3d"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	alt := NewCi("a1b2c3d", true)
	if got, want := alt.String(), "a1b2c3d-alt"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNewDedupesAndSorts(t *testing.T) {
	tc := New(NewNightly(time.Now()), "x86_64-unknown-linux-gnu",
		[]string{"wasm32-unknown-unknown", "x86_64-apple-darwin", "wasm32-unknown-unknown", ""})
	want := []string{"wasm32-unknown-unknown", "x86_64-apple-darwin"}
	if len(tc.StdTargets) != len(want) {
		t.Fatalf("got %v, want %v", tc.StdTargets, want)
	}
	for i := range want {
		if tc.StdTargets[i] != want[i] {
			t.Fatalf("got %v, want %v", tc.StdTargets, want)
		}
	}
}

func TestToolchainName(t *testing.T) {
	tc := New(NewNightly(time.Date(2018, 7, 20, 0, 0, 0, 0, time.UTC)), "x86_64-unknown-linux-gnu", nil)
	if got, want := tc.Name(), "2018-07-20-x86_64-unknown-linux-gnu"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
