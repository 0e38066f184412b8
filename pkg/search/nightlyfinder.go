package search

import "time"

// NightlyFinder produces an infinite, lazy sequence of dates stepping
// backwards from an anchor, one day-resolution calendar date per call to
// Next. The stride widens the further back the walk gets, on the
// assumption that regressions introduced long ago don't need day-by-day
// scrutiny: 2 days while within a week of the anchor, 7 days out through
// seven weeks, 14 days beyond that. Grounded on NightlyFinderIter in
// original_source/src/main.rs, including its stride thresholds.
type NightlyFinder struct {
	anchor   time.Time
	current  time.Time
	distance int
}

// NewNightlyFinder builds a finder anchored at date. The first call to
// Next returns anchor-2.
func NewNightlyFinder(anchor time.Time) *NightlyFinder {
	return &NightlyFinder{anchor: anchor, current: anchor}
}

// Next advances the walk by one stride and returns the new, older date.
func (f *NightlyFinder) Next() time.Time {
	f.current = f.current.AddDate(0, 0, -f.stride())
	f.distance = int(f.anchor.Sub(f.current).Hours() / 24)
	return f.current
}

// stride returns the jump, in days, to apply next, based on how far the
// walk has already travelled from the anchor.
func (f *NightlyFinder) stride() int {
	switch {
	case f.distance < 7:
		return 2
	case f.distance < 49:
		return 7
	default:
		return 14
	}
}
