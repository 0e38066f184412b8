package bisectrustc

import (
	"context"
	"fmt"

	"github.com/jtodic/rustc-bisect/pkg/classify"
	"github.com/jtodic/rustc-bisect/pkg/search"
	"github.com/jtodic/rustc-bisect/pkg/toolchain"
)

// Prompter lets the user confirm, invert, or override a probe verdict when
// --prompt is set (§7 "Prompt mode"). A nil Prompter leaves the classifier's
// own verdict untouched.
type Prompter interface {
	Confirm(t toolchain.Toolchain, verdict classify.TestOutcome) search.Satisfies
}

// Prober runs one full install/test/remove cycle (§4.6) and classifies the
// result into a Satisfies verdict search.LeastSatisfying can consume.
// Grounded on the teacher's FindRegression inner loop (pkg/bisect/bisector.go),
// generalized from a fixed size/time threshold check to the
// classify.Mode-driven Outcome Classifier.
type Prober struct {
	Lifecycle      toolchain.Lifecycle
	ParamsTemplate toolchain.DownloadParams
	TestTemplate   toolchain.TestConfig
	Mode           classify.Mode
	Preserve       bool
	ForceInstall   bool
	Prompt         Prompter
}

// Probe installs t, runs the configured test, removes t again, and returns
// the verdict. An install error, toolchain.ErrNotFound included, is returned
// verbatim (callers distinguish toolchain.ErrNotFound via errors.Is); a
// failure to run the test is wrapped in ErrSubcommandError. The
// orchestrator is responsible for deciding whether that error is fatal or
// should be folded into search.Unknown for the index.
func (p *Prober) Probe(ctx context.Context, t toolchain.Toolchain) (search.Satisfies, error) {
	params := p.ParamsTemplate
	params.Toolchain = t
	if err := p.Lifecycle.Install(ctx, params, p.ForceInstall); err != nil {
		return search.Unknown, err
	}
	defer p.Lifecycle.Remove(params, p.Preserve)

	cfg := p.TestTemplate
	cfg.Toolchain = t
	cfg.Mode = p.Mode

	result, err := p.Lifecycle.Test(ctx, cfg)
	if err != nil {
		return search.Unknown, fmt.Errorf("%w: %v", ErrSubcommandError, err)
	}

	outcome := classify.Classify(p.Mode, result)
	verdict := outcomeToSatisfies(outcome)
	if p.Prompt != nil {
		verdict = p.Prompt.Confirm(t, outcome)
	}
	return verdict, nil
}

func outcomeToSatisfies(o classify.TestOutcome) search.Satisfies {
	if o == classify.Regressed {
		return search.Yes
	}
	return search.No
}
