package search

import "testing"

func TestLeastSatisfyingMonotone(t *testing.T) {
	cases := []struct {
		n, m int
	}{
		{1, 0},
		{5, 0},
		{5, 3},
		{5, 5},
		{32, 17},
	}
	for _, c := range cases {
		probe := func(i int) Satisfies {
			if i >= c.m {
				return Yes
			}
			return No
		}
		if got := LeastSatisfying(c.n, probe); got != c.m {
			t.Errorf("n=%d m=%d: got %d", c.n, c.m, got)
		}
	}
}

func TestLeastSatisfyingWithUnknowns(t *testing.T) {
	// Truth is m=6 over [0,10), but indices 5 and 6 themselves always answer
	// Unknown; their neighbours still carry a definite answer. Index 6 never
	// answers Yes, so the smallest index that does is 7: once the window
	// shrinks to [6,7) and is all Unknown, the search falls back to hi.
	const n, m, want = 10, 6, 7
	probe := func(i int) Satisfies {
		if i == 5 || i == 6 {
			return Unknown
		}
		if i >= m {
			return Yes
		}
		return No
	}
	if got := LeastSatisfying(n, probe); got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}

func TestLeastSatisfyingAllUnknownFallsBackToHi(t *testing.T) {
	probe := func(i int) Satisfies { return Unknown }
	const n = 8
	if got := LeastSatisfying(n, probe); got != n {
		t.Fatalf("got %d, want fallback %d", got, n)
	}
}

func TestLeastSatisfyingEmptySequence(t *testing.T) {
	if got := LeastSatisfying(0, func(i int) Satisfies { return Yes }); got != 0 {
		t.Fatalf("empty sequence: got %d, want 0", got)
	}
}
