package bisectrustc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jtodic/rustc-bisect/pkg/bound"
	"github.com/jtodic/rustc-bisect/pkg/search"
	"github.com/jtodic/rustc-bisect/pkg/toolchain"
)

// nightlyPhase narrows a regression to a pair of adjacent nightly builds
// (§4.7 "Nightly phase"), grounded on bisect_nightlies in
// original_source/src/main.rs: a backward walk from the pinned start date
// (or from the end date when no start is given) using the Nightly-Finder
// stride, recovering from a missing artifact by stepping back one day,
// until a non-regressing nightly is found or the hard floor is reached.
func (o *Orchestrator) nightlyPhase(ctx context.Context, start *bound.Bound, end bound.Bound) (*Result, error) {
	hasStart := start != nil

	// The walk's first candidate is the pinned start when given, else the
	// end itself — mirroring get_start_date/get_end_date in
	// original_source/src/main.rs, whose first loop iteration is exactly
	// how the original validates whichever bound it is (start must not
	// regress, end — absent a pinned start — must). This is the only probe
	// of that bound; Bisect no longer probes it separately.
	anchor := end.Date()
	if hasStart {
		anchor = start.Date()
	}

	lastFailure := end.Date()
	var firstSuccess time.Time
	haveSuccess := false

	finder := search.NewNightlyFinder(anchor)
	candidate := anchor
	for !haveSuccess {
		if candidate.Before(NightlyFloor) {
			return nil, ErrNoBaselineFound
		}

		verdict, err := o.probeNightlyWithRecovery(ctx, &candidate, hasStart)
		if err != nil {
			return nil, err
		}

		switch verdict {
		case search.Yes:
			if hasStart {
				return nil, ErrEndpointBaseline
			}
			lastFailure = candidate
		case search.No:
			firstSuccess = candidate
			haveSuccess = true
		case search.Unknown:
			// Inconclusive probe; keep walking backward without
			// updating either boundary (§7 propagation policy).
		}

		if !haveSuccess {
			candidate = finder.Next()
		}
	}

	// Re-confirm the regression at last_failure (§4.7 step 5): the
	// original re-checks the end of the range unconditionally after the
	// loop, even though last_failure may be the very candidate (the end
	// itself, when hasStart is false and the first candidate already
	// regressed) already probed above — that duplication is the source
	// algorithm's own behavior, not introduced here.
	reconfirm, err := o.cfg.Prober.Probe(ctx, o.toolchainForDate(lastFailure))
	if err != nil {
		return nil, fmt.Errorf("re-confirming regression at %s: %w", lastFailure.Format(bound.DateLayout), err)
	}
	if reconfirm != search.Yes {
		return nil, fmt.Errorf("%w: nightly %s no longer reproduces on re-confirmation", ErrEndpointRegression, lastFailure.Format(bound.DateLayout))
	}

	days := enumerateDays(firstSuccess, lastFailure)
	sequence := make([]toolchain.Toolchain, len(days))
	for i, d := range days {
		sequence[i] = o.toolchainForDate(d)
	}

	found := search.LeastSatisfying(len(sequence), func(i int) search.Satisfies {
		v, err := o.cfg.Prober.Probe(ctx, sequence[i])
		if err != nil && !errors.Is(err, toolchain.ErrNotFound) {
			return search.Unknown
		}
		return v
	})

	return &Result{
		Sequence:            sequence,
		Found:                found,
		Params:               paramsFor(o.cfg.Prober.ParamsTemplate, sequence[found]),
		NightlyFirstSuccess: firstSuccess,
		NightlyLastFailure:  lastFailure,
	}, nil
}

// probeNightlyWithRecovery probes the nightly dated *candidate, stepping
// the date back one day at a time on ErrNotFound (the artifact mirror has
// no entry for that date) until an installable nightly is found or the
// floor is reached. The caller's candidate variable is updated in place so
// the stepped date is the one recorded as first_success/last_failure. When
// userPinnedStart is set, ErrNotFound is not recovered from: it is returned
// wrapped in ErrAccessorError. Any other probe error yields Unknown.
func (o *Orchestrator) probeNightlyWithRecovery(ctx context.Context, candidate *time.Time, userPinnedStart bool) (search.Satisfies, error) {
	for {
		verdict, err := o.cfg.Prober.Probe(ctx, o.toolchainForDate(*candidate))
		if err == nil {
			return verdict, nil
		}
		if !errors.Is(err, toolchain.ErrNotFound) {
			return search.Unknown, nil
		}
		if userPinnedStart {
			return search.Unknown, fmt.Errorf("%w: %v", ErrAccessorError, err)
		}
		*candidate = candidate.AddDate(0, 0, -1)
		if candidate.Before(NightlyFloor) {
			return search.Unknown, ErrNoBaselineFound
		}
	}
}

// enumerateDays returns every calendar day in [start, end] inclusive.
func enumerateDays(start, end time.Time) []time.Time {
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func paramsFor(template toolchain.DownloadParams, t toolchain.Toolchain) toolchain.DownloadParams {
	template.Toolchain = t
	return template
}
