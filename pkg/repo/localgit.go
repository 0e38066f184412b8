package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// LocalAccessor implements Accessor against a local clone of rust-lang/rust,
// opened with go-git. Ref resolution tries, in order: a full 40-character
// sha, refs/heads/<ref>, refs/tags/<ref>, then the literal "HEAD" — the
// same order the teacher's resolveRevision and comparer.go's analyzeBranch
// use. An abbreviated sha is not expanded and resolves to ErrNotFound
// unless a branch or tag of that name exists.
type LocalAccessor struct {
	repo *git.Repository
}

// NewLocalAccessor opens the git repository at path. The caller is
// responsible for keeping it up to date (fetching a remote); the accessor
// never mutates the clone beyond reading it.
func NewLocalAccessor(path string) (*LocalAccessor, error) {
	r, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("repo: open %s: %w", path, err)
	}
	return &LocalAccessor{repo: r}, nil
}

func (a *LocalAccessor) resolveHash(ref string) (plumbing.Hash, error) {
	if h := plumbing.NewHash(ref); !h.IsZero() {
		if _, err := a.repo.CommitObject(h); err == nil {
			return h, nil
		}
	}
	for _, prefix := range []string{"refs/heads/", "refs/tags/"} {
		if r, err := a.repo.Reference(plumbing.ReferenceName(prefix+ref), true); err == nil {
			return r.Hash(), nil
		}
	}
	if ref == "HEAD" {
		if h, err := a.repo.Head(); err == nil {
			return h.Hash(), nil
		}
	}
	return plumbing.ZeroHash, ErrNotFound
}

func toCommit(c *object.Commit) Commit {
	summary := c.Message
	if i := strings.IndexByte(summary, '\n'); i >= 0 {
		summary = summary[:i]
	}
	return Commit{
		Sha:     c.Hash.String(),
		Date:    c.Author.When.UTC(),
		Summary: strings.TrimSpace(summary),
	}
}

// Commit resolves ref against the local clone.
func (a *LocalAccessor) Commit(_ context.Context, ref string) (Commit, error) {
	hash, err := a.resolveHash(ref)
	if err != nil {
		return Commit{}, err
	}
	c, err := a.repo.CommitObject(hash)
	if err != nil {
		return Commit{}, fmt.Errorf("%w: %s: %v", ErrNotFound, ref, err)
	}
	return toCommit(c), nil
}

// Commits walks the first-parent log backward from endSha until startSha is
// reached, then reverses the result into chronological order. Mirrors the
// teacher's getCommitsBetween, minus its Dockerfile path filter — the whole
// repository history is in scope here, not commits touching one file.
func (a *LocalAccessor) Commits(_ context.Context, startSha, endSha string) ([]Commit, error) {
	startHash, err := a.resolveHash(startSha)
	if err != nil {
		return nil, fmt.Errorf("resolve start: %w", err)
	}
	endHash, err := a.resolveHash(endSha)
	if err != nil {
		return nil, fmt.Errorf("resolve end: %w", err)
	}

	iter, err := a.repo.Log(&git.LogOptions{From: endHash})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAncestor, err)
	}

	var commits []*object.Commit
	foundStart := false
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, c)
		if c.Hash == startHash {
			foundStart = true
			return object.ErrCanceled
		}
		return nil
	})
	if err != nil && err != object.ErrCanceled {
		return nil, fmt.Errorf("repo: walk log: %w", err)
	}
	if !foundStart {
		return nil, ErrNotAncestor
	}

	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}

	out := make([]Commit, len(commits))
	for i, c := range commits {
		out[i] = toCommit(c)
	}
	if len(out) == 0 {
		return nil, ErrNotAncestor
	}
	return out, nil
}
