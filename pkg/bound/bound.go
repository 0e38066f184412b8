// Package bound implements the Bound tagged variant: a search endpoint that
// is either a calendar date (resolved against nightly manifests) or a git
// commit reference (sha, prefix, branch, or tag).
package bound

import (
	"fmt"
	"time"
)

// Kind distinguishes the two Bound variants.
type Kind int

const (
	// KindCommit holds an unresolved ref string: sha, prefix, branch, or tag.
	KindCommit Kind = iota
	// KindDate holds a UTC, day-precision calendar date.
	KindDate
)

// DateLayout is the wire and display format for date bounds.
const DateLayout = "2006-01-02"

// Bound is either a Commit ref or a calendar Date. Build one with Parse,
// NewCommit or NewDate; the zero value is not a valid Bound.
type Bound struct {
	kind   Kind
	commit string
	date   time.Time
}

// Parse interprets s as a Bound: YYYY-MM-DD parses as a Date, anything else
// is taken verbatim as a Commit ref.
func Parse(s string) (Bound, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Bound{kind: KindDate, date: t.UTC()}, nil
	}
	if s == "" {
		return Bound{}, fmt.Errorf("bound: empty value")
	}
	return Bound{kind: KindCommit, commit: s}, nil
}

// MustParse is Parse but panics on error; intended for compiled-in constants
// and tests, never for user input.
func MustParse(s string) Bound {
	b, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return b
}

// NewCommit builds a Commit-kind Bound directly, bypassing date detection.
func NewCommit(ref string) Bound {
	return Bound{kind: KindCommit, commit: ref}
}

// NewDate builds a Date-kind Bound directly from a UTC, day-precision time.
func NewDate(t time.Time) Bound {
	return Bound{kind: KindDate, date: truncateToDay(t)}
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsDate reports whether this Bound is a calendar date.
func (b Bound) IsDate() bool { return b.kind == KindDate }

// IsCommit reports whether this Bound is a commit reference.
func (b Bound) IsCommit() bool { return b.kind == KindCommit }

// Date returns the underlying date. Only valid when IsDate is true.
func (b Bound) Date() time.Time { return b.date }

// Commit returns the underlying ref string. Only valid when IsCommit is true.
func (b Bound) Commit() string { return b.commit }

// String formats the Bound the way it would be parsed back: YYYY-MM-DD for
// dates, the ref verbatim for commits. Round-trips through Parse.
func (b Bound) String() string {
	switch b.kind {
	case KindDate:
		return b.date.Format(DateLayout)
	default:
		return b.commit
	}
}

// SameKind reports whether a and b are both dates or both commits.
func SameKind(a, b Bound) bool {
	return a.kind == b.kind
}
