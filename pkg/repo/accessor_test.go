package repo

import (
	"context"
	"testing"
	"time"
)

// fakeAccessor is a minimal in-memory Accessor used to exercise code that
// depends on the Accessor interface without touching a real git clone or
// the network.
type fakeAccessor struct {
	commits map[string]Commit
	order   []string
}

func (f *fakeAccessor) Commit(_ context.Context, ref string) (Commit, error) {
	c, ok := f.commits[ref]
	if !ok {
		return Commit{}, ErrNotFound
	}
	return c, nil
}

func (f *fakeAccessor) Commits(_ context.Context, startSha, endSha string) ([]Commit, error) {
	startIdx, endIdx := -1, -1
	for i, sha := range f.order {
		if sha == startSha {
			startIdx = i
		}
		if sha == endSha {
			endIdx = i
		}
	}
	if startIdx == -1 || endIdx == -1 || startIdx > endIdx {
		return nil, ErrNotAncestor
	}
	out := make([]Commit, 0, endIdx-startIdx+1)
	for _, sha := range f.order[startIdx : endIdx+1] {
		out = append(out, f.commits[sha])
	}
	return out, nil
}

func newFakeAccessor(n int) *fakeAccessor {
	base := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &fakeAccessor{commits: map[string]Commit{}}
	for i := 0; i < n; i++ {
		sha := string(rune('a' + i))
		f.commits[sha] = Commit{Sha: sha, Date: base.AddDate(0, 0, i), Summary: "commit " + sha}
		f.order = append(f.order, sha)
	}
	return f
}

func TestFakeAccessorChronology(t *testing.T) {
	f := newFakeAccessor(5)
	commits, err := f.Commits(context.Background(), "a", "e")
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 5 {
		t.Fatalf("got %d commits, want 5", len(commits))
	}
	for i := 1; i < len(commits); i++ {
		if commits[i].Date.Before(commits[i-1].Date) {
			t.Fatalf("commits not chronological at %d", i)
		}
	}
	if commits[len(commits)-1].Sha != "e" {
		t.Fatalf("last commit sha = %q, want %q", commits[len(commits)-1].Sha, "e")
	}
}

func TestFakeAccessorNotAncestor(t *testing.T) {
	f := newFakeAccessor(5)
	if _, err := f.Commits(context.Background(), "e", "a"); err != ErrNotAncestor {
		t.Fatalf("got %v, want ErrNotAncestor", err)
	}
}

var _ Accessor = (*fakeAccessor)(nil)
