package bisectrustc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jtodic/rustc-bisect/pkg/bound"
	"github.com/jtodic/rustc-bisect/pkg/repo"
	"github.com/jtodic/rustc-bisect/pkg/toolchain"
)

// EpochCommit is the oldest commit for which CI artifacts ever existed;
// it is the default start of the CI phase when no earlier bound is known.
const EpochCommit = "927c55d86b0be44337f37cf5b0a76fb8ba86e06c"

// NightlyFloor is the hard floor before which standard-library packages
// were not published in nightly builds; the nightly walk never probes an
// earlier date.
var NightlyFloor = time.Date(2015, 10, 20, 0, 0, 0, 0, time.UTC)

// ArtifactRetentionDays is the CI artifact-retention horizon (§3): commits
// older than this are never probed in the CI phase.
const ArtifactRetentionDays = 167

// Config wires the Orchestrator to its collaborators: the repository
// accessor, the toolchain lifecycle, the nightly date resolver, and the
// probe templates that fill in per-candidate Toolchain/Spec fields.
type Config struct {
	Host     string
	Target   string
	Access   repo.Accessor
	Resolver *toolchain.Resolver
	Prober   *Prober
	ByCommit bool
	Alt      bool
	Now      time.Time // injected for deterministic retention-horizon filtering in tests
}

// Result is the outcome of a full bisection: the searched Toolchain
// sequence, the index of its first regressed element, and the download
// parameters used, kept so the found toolchain can be reinstalled for a
// final confirmation (§3 BisectionResult).
type Result struct {
	Sequence []toolchain.Toolchain
	Found    int
	Params   toolchain.DownloadParams

	// Present only when the nightly phase ran.
	NightlyFirstSuccess, NightlyLastFailure time.Time
	// Present only when the CI phase ran.
	CIStartSha, CIEndSha string
}

// Orchestrator drives endpoint validation, strategy selection, and the two
// search phases (§4.7). Grounded on the teacher's Bisector (binary search
// over a go-git commit slice), extended to the two-phase nightly→CI
// strategy and the generic Least-Satisfying Search.
type Orchestrator struct {
	cfg Config
}

// New builds an Orchestrator from cfg.
func New(cfg Config) *Orchestrator {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	return &Orchestrator{cfg: cfg}
}

func (o *Orchestrator) toolchainForDate(date time.Time) toolchain.Toolchain {
	return toolchain.New(toolchain.NewNightly(date), o.cfg.Host, o.targets())
}

func (o *Orchestrator) toolchainForCommit(sha string, alt bool) toolchain.Toolchain {
	return toolchain.New(toolchain.NewCi(sha, alt), o.cfg.Host, o.targets())
}

// targets returns the std-library target list passed to toolchain.New: the
// host triple's own std is always installed (original_source/src/main.rs's
// `vec![cfg.args.host.clone(), cfg.target.clone()]`), plus the optional
// cross-compile target from --target.
func (o *Orchestrator) targets() []string {
	targets := []string{o.cfg.Host}
	if o.cfg.Target != "" {
		targets = append(targets, o.cfg.Target)
	}
	return targets
}

// Bisect validates the bound shapes, selects a strategy, and runs the
// corresponding search. start is nil when the user did not supply a lower
// bound (the tool must auto-discover one via the nightly walk). Endpoint
// reproduction (end must regress, start must not) is validated exactly once
// by whichever phase actually runs — ciPhase validates the first/last
// commit of its sequence, nightlyPhase validates its own start/end — rather
// than here, so a direct commit-to-commit bisection costs exactly the two
// endpoint probes plus the search, matching
// original_source/src/main.rs's bisect_ci_in_commits.
func (o *Orchestrator) Bisect(ctx context.Context, start *bound.Bound, end bound.Bound) (*Result, error) {
	if start != nil && !bound.SameKind(*start, end) {
		return nil, ErrBoundMismatch
	}
	if start != nil && start.IsDate() && end.IsDate() && end.Date().Before(start.Date()) {
		return nil, ErrBoundOrder
	}

	endIsCommit := end.IsCommit()
	startIsCommit := start != nil && start.IsCommit()
	if endIsCommit {
		// A commit-typed end with no date phase to run first: either both
		// bounds are commits (run CI directly between them), or only the
		// end was pinned (run CI from the epoch commit).
		startSha := EpochCommit
		if startIsCommit {
			startSha = start.Commit()
		}
		return o.ciPhase(ctx, startSha, end.Commit())
	}

	nr, err := o.nightlyPhase(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if !o.cfg.ByCommit {
		return nr, nil
	}

	regressedDay := nr.Sequence[nr.Found].Spec.Date()
	dMinus1 := regressedDay.AddDate(0, 0, -1)

	startSha, err := o.cfg.Resolver.CommitForDate(ctx, dMinus1)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving commit for %s: %v", ErrAccessorError, dMinus1.Format(bound.DateLayout), err)
	}
	endSha, err := o.cfg.Resolver.CommitForDate(ctx, regressedDay)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving commit for %s: %v", ErrAccessorError, regressedDay.Format(bound.DateLayout), err)
	}

	cr, err := o.ciPhase(ctx, startSha, endSha)
	if err != nil {
		return nil, err
	}
	cr.NightlyFirstSuccess = nr.NightlyFirstSuccess
	cr.NightlyLastFailure = nr.NightlyLastFailure
	return cr, nil
}

// toolchainForEndpoint resolves a user Bound to a probeable Toolchain: a
// Nightly spec for a date bound, a Ci spec for a commit bound.
func (o *Orchestrator) toolchainForEndpoint(b bound.Bound, alt bool) (toolchain.Toolchain, error) {
	if b.IsDate() {
		return o.toolchainForDate(b.Date()), nil
	}
	return o.toolchainForCommit(b.Commit(), alt || o.cfg.Alt), nil
}

// Install implements Install Mode (§4.8): install a single toolchain named
// by b and exit without searching.
func (o *Orchestrator) Install(ctx context.Context, b bound.Bound, force bool) error {
	tc, err := o.toolchainForEndpoint(b, false)
	if err != nil {
		return err
	}
	params := o.cfg.Prober.ParamsTemplate
	params.Toolchain = tc
	if err := o.cfg.Prober.Lifecycle.Install(ctx, params, force); err != nil {
		if errors.Is(err, toolchain.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNoSuchArtifact, tc.Spec)
		}
		return err
	}
	return nil
}
