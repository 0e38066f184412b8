package bisectrustc

import (
	"context"
	"testing"
	"time"

	"github.com/jtodic/rustc-bisect/pkg/bound"
	"github.com/jtodic/rustc-bisect/pkg/classify"
	"github.com/jtodic/rustc-bisect/pkg/repo"
	"github.com/jtodic/rustc-bisect/pkg/toolchain"
)

// fakeLifecycle never touches disk or the network; it classifies a probe
// as Regressed whenever the test-supplied regressedFrom predicate returns
// true for the candidate toolchain. The tests below pass monotone
// predicates (a commit index or a date threshold) to simulate a regression.
type fakeLifecycle struct {
	regressedFrom func(toolchain.Toolchain) bool
	notFound      map[string]bool // spec string -> simulate a missing artifact
	installs      int
}

func (f *fakeLifecycle) Install(_ context.Context, params toolchain.DownloadParams, _ bool) error {
	f.installs++
	if f.notFound[params.Toolchain.Spec.String()] {
		return toolchain.ErrNotFound
	}
	return nil
}

func (f *fakeLifecycle) Test(_ context.Context, cfg toolchain.TestConfig) (classify.Result, error) {
	if f.regressedFrom(cfg.Toolchain) {
		return classify.Result{Success: false}, nil
	}
	return classify.Result{Success: true}, nil
}

func (f *fakeLifecycle) Remove(toolchain.DownloadParams, bool) {}

var _ toolchain.Lifecycle = (*fakeLifecycle)(nil)

func TestOrchestratorCIPhaseFindsExactCommit(t *testing.T) {
	// Three commits; regression begins at index 2.
	shas := []string{"aaa1", "bbb2", "ccc3"}
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	access := &scriptedAccessor{
		commits: map[string]repo.Commit{
			shas[0]: {Sha: shas[0], Date: base, Summary: "one"},
			shas[1]: {Sha: shas[1], Date: base.AddDate(0, 0, 1), Summary: "two"},
			shas[2]: {Sha: shas[2], Date: base.AddDate(0, 0, 2), Summary: "three"},
		},
		order: shas,
	}

	fl := &fakeLifecycle{
		regressedFrom: func(tc toolchain.Toolchain) bool {
			for i, s := range shas {
				if tc.Spec.Commit() == s {
					return i >= 2
				}
			}
			return false
		},
	}

	o := New(Config{
		Access: access,
		Prober: &Prober{Lifecycle: fl, Mode: classify.RegressOnErrorStatus},
		Now:    base.AddDate(0, 5, 0),
	})

	start := bound.NewCommit(shas[0])
	res, err := o.Bisect(context.Background(), &start, bound.NewCommit(shas[2]))
	if err != nil {
		t.Fatalf("Bisect: %v", err)
	}
	if res.Found != 2 {
		t.Fatalf("Found = %d, want 2", res.Found)
	}
	if res.Sequence[res.Found].Spec.Commit() != shas[2] {
		t.Fatalf("found commit = %s, want %s", res.Sequence[res.Found].Spec.Commit(), shas[2])
	}
}

func TestOrchestratorEndpointBaseline(t *testing.T) {
	shas := []string{"good1", "bad2"}
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	access := &scriptedAccessor{
		commits: map[string]repo.Commit{
			shas[0]: {Sha: shas[0], Date: base},
			shas[1]: {Sha: shas[1], Date: base.AddDate(0, 0, 1)},
		},
		order: shas,
	}
	// Both bounds "regress" (always fails) -> end is fine, start should be
	// baseline (No) but here it's also regressed, so expect
	// ErrEndpointBaseline.
	fl := &fakeLifecycle{regressedFrom: func(toolchain.Toolchain) bool { return true }}

	o := New(Config{
		Access: access,
		Prober: &Prober{Lifecycle: fl, Mode: classify.RegressOnErrorStatus},
		Now:    base.AddDate(0, 5, 0),
	})

	start := bound.NewCommit(shas[0])
	_, err := o.Bisect(context.Background(), &start, bound.NewCommit(shas[1]))
	if err != ErrEndpointBaseline {
		t.Fatalf("got %v, want ErrEndpointBaseline", err)
	}
}

func TestOrchestratorEndpointRegression(t *testing.T) {
	shas := []string{"good1", "stillgood2"}
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	access := &scriptedAccessor{
		commits: map[string]repo.Commit{
			shas[0]: {Sha: shas[0], Date: base},
			shas[1]: {Sha: shas[1], Date: base.AddDate(0, 0, 1)},
		},
		order: shas,
	}
	fl := &fakeLifecycle{regressedFrom: func(toolchain.Toolchain) bool { return false }}

	o := New(Config{
		Access: access,
		Prober: &Prober{Lifecycle: fl, Mode: classify.RegressOnErrorStatus},
		Now:    base.AddDate(0, 5, 0),
	})

	start := bound.NewCommit(shas[0])
	_, err := o.Bisect(context.Background(), &start, bound.NewCommit(shas[1]))
	if err != ErrEndpointRegression {
		t.Fatalf("got %v, want ErrEndpointRegression", err)
	}
}

func TestOrchestratorBoundMismatch(t *testing.T) {
	o := New(Config{Prober: &Prober{Lifecycle: &fakeLifecycle{regressedFrom: func(toolchain.Toolchain) bool { return false }}}})
	start := bound.MustParse("2018-07-07")
	end := bound.NewCommit("deadbeef")
	_, err := o.Bisect(context.Background(), &start, end)
	if err != ErrBoundMismatch {
		t.Fatalf("got %v, want ErrBoundMismatch", err)
	}
}

func TestOrchestratorNightlyPhaseWithPinnedStart(t *testing.T) {
	start := bound.MustParse("2018-07-18")
	end := bound.MustParse("2018-07-20")

	regressDate := time.Date(2018, 7, 20, 0, 0, 0, 0, time.UTC)
	fl := &fakeLifecycle{
		regressedFrom: func(tc toolchain.Toolchain) bool {
			return !tc.Spec.Date().Before(regressDate)
		},
	}

	o := New(Config{
		Prober: &Prober{Lifecycle: fl, Mode: classify.RegressOnErrorStatus},
	})

	res, err := o.Bisect(context.Background(), &start, end)
	if err != nil {
		t.Fatalf("Bisect: %v", err)
	}
	if got := res.Sequence[res.Found].Spec.Date(); !got.Equal(regressDate) {
		t.Fatalf("found date = %s, want %s", got.Format("2006-01-02"), regressDate.Format("2006-01-02"))
	}
}

// scriptedAccessor is a minimal fixed-order Accessor for orchestrator tests.
type scriptedAccessor struct {
	commits map[string]repo.Commit
	order   []string
}

func (s *scriptedAccessor) Commit(_ context.Context, ref string) (repo.Commit, error) {
	c, ok := s.commits[ref]
	if !ok {
		return repo.Commit{}, repo.ErrNotFound
	}
	return c, nil
}

func (s *scriptedAccessor) Commits(_ context.Context, startSha, endSha string) ([]repo.Commit, error) {
	startIdx, endIdx := -1, -1
	for i, sha := range s.order {
		if sha == startSha {
			startIdx = i
		}
		if sha == endSha {
			endIdx = i
		}
	}
	if startIdx == -1 || endIdx == -1 || startIdx > endIdx {
		return nil, repo.ErrNotAncestor
	}
	out := make([]repo.Commit, 0, endIdx-startIdx+1)
	for _, sha := range s.order[startIdx : endIdx+1] {
		out = append(out, s.commits[sha])
	}
	return out, nil
}

var _ repo.Accessor = (*scriptedAccessor)(nil)
