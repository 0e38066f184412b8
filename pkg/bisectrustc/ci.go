package bisectrustc

import (
	"context"
	"errors"
	"fmt"

	"github.com/jtodic/rustc-bisect/pkg/repo"
	"github.com/jtodic/rustc-bisect/pkg/search"
	"github.com/jtodic/rustc-bisect/pkg/toolchain"
)

// ciPhase descends to commit-level attribution between startSha and endSha
// (§4.7 "CI phase"), grounded on the teacher's Bisector.getCommitsBetween +
// FindRegression. The 167-day artifact-retention horizon is applied before
// the search, never during it, so LeastSatisfying always sees a
// contiguous, already-eligible sequence.
func (o *Orchestrator) ciPhase(ctx context.Context, startSha, endSha string) (*Result, error) {
	commits, err := o.cfg.Access.Commits(ctx, startSha, endSha)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccessorError, err)
	}
	for i := 1; i < len(commits); i++ {
		if commits[i].Date.Before(commits[i-1].Date) {
			return nil, fmt.Errorf("%w: commits not in chronological order", ErrAccessorError)
		}
	}

	horizon := o.cfg.Now.AddDate(0, 0, -ArtifactRetentionDays)
	var eligible []repo.Commit
	for _, c := range commits {
		if !c.Date.Before(horizon) {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrEmptyCommitRange
	}

	sequence := make([]toolchain.Toolchain, len(eligible))
	for i, c := range eligible {
		sequence[i] = o.toolchainForCommit(c.Sha, o.alt())
	}

	first, err := o.cfg.Prober.Probe(ctx, sequence[0])
	if err != nil && !errors.Is(err, toolchain.ErrNotFound) {
		return nil, fmt.Errorf("probing first surviving commit %s: %w", eligible[0].Sha, err)
	}
	if first != search.No {
		return nil, ErrEndpointBaseline
	}

	last, err := o.cfg.Prober.Probe(ctx, sequence[len(sequence)-1])
	if err != nil && !errors.Is(err, toolchain.ErrNotFound) {
		return nil, fmt.Errorf("probing last commit %s: %w", eligible[len(eligible)-1].Sha, err)
	}
	if last != search.Yes {
		return nil, ErrEndpointRegression
	}

	found := search.LeastSatisfying(len(sequence), func(i int) search.Satisfies {
		v, err := o.cfg.Prober.Probe(ctx, sequence[i])
		if err != nil && !errors.Is(err, toolchain.ErrNotFound) {
			return search.Unknown
		}
		return v
	})

	return &Result{
		Sequence:   sequence,
		Found:      found,
		Params:     paramsFor(o.cfg.Prober.ParamsTemplate, sequence[found]),
		CIStartSha: eligible[0].Sha,
		CIEndSha:   eligible[len(eligible)-1].Sha,
	}, nil
}

func (o *Orchestrator) alt() bool { return o.cfg.Alt }
