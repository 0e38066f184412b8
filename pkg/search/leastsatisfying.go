// Package search implements the generic least-satisfying binary search and
// the nightly-finder backward stride. Grounded on the `least_satisfying`
// module referenced from original_source/src/main.rs (bisect_to_regression)
// and on the binary-search shape of the teacher's
// pkg/bisect/bisector.go:FindRegression.
package search

// Satisfies is the three-valued outcome of probing a single index.
type Satisfies int

const (
	No Satisfies = iota
	Yes
	Unknown
)

func (s Satisfies) String() string {
	switch s {
	case Yes:
		return "Yes"
	case No:
		return "No"
	default:
		return "Unknown"
	}
}

// LeastSatisfying returns the smallest index k in [0, n) such that
// probe(k) == Yes, assuming probe is monotone: once it returns Yes it never
// returns No at a later index. probe may also answer Unknown for any index;
// the search still converges using the remaining answers, resolving an
// Unknown midpoint by probing neighbours outward (mid-1, mid+1, mid-2, ...)
// until a definite answer is found. If the whole remaining window answers
// Unknown, the search falls back to returning hi, the leftmost still-plausible
// Yes boundary.
func LeastSatisfying(n int, probe func(i int) Satisfies) int {
	lo, hi := 0, n
	for lo < hi {
		mid := lo + (hi-lo)/2
		switch resolve(mid, lo, hi, probe) {
		case definiteYes:
			hi = mid
		case definiteNo:
			lo = mid + 1
		case allUnknown:
			return hi
		}
	}
	return hi
}

type resolution int

const (
	definiteYes resolution = iota
	definiteNo
	allUnknown
)

// resolve probes outward from mid within [lo, hi) until a Yes or No answer
// is found, treating every skipped index along the way as Unknown. It never
// calls probe outside [lo, hi).
func resolve(mid, lo, hi int, probe func(i int) Satisfies) resolution {
	if r := probe(mid); r != Unknown {
		return asResolution(r)
	}
	for step := 1; ; step++ {
		left, right := mid-step, mid+step
		any := false
		if left >= lo {
			any = true
			if r := probe(left); r != Unknown {
				return asResolution(r)
			}
		}
		if right < hi {
			any = true
			if r := probe(right); r != Unknown {
				return asResolution(r)
			}
		}
		if !any {
			return allUnknown
		}
	}
}

func asResolution(s Satisfies) resolution {
	if s == Yes {
		return definiteYes
	}
	return definiteNo
}
