// Package repo implements the Repository Accessor collaborator contract
// (two interchangeable backends: a local git clone via go-git, and the
// GitHub REST API). Grounded on the teacher's pkg/bisect/bisector.go
// (resolveRevision, getCommitsBetween) and pkg/analyzer/comparer.go
// (ref resolution against both refs/heads and refs/tags).
package repo

import (
	"context"
	"errors"
	"time"
)

// Commit is the accessor's immutable view of a single commit: sha, date,
// and the first line of the commit message. LocalAccessor records the
// author date; GithubAccessor records the committer date.
type Commit struct {
	Sha     string
	Date    time.Time
	Summary string
}

// ErrNotFound is returned by Accessor.Commit when ref cannot be resolved.
var ErrNotFound = errors.New("repo: commit not found")

// ErrNotAncestor is returned by Accessor.Commits when startSha is not an
// ancestor of endSha, or when the resulting range is empty.
var ErrNotAncestor = errors.New("repo: start is not an ancestor of end")

// Accessor resolves refs to commits and enumerates linear history between
// two of them. Two implementations exist — LocalAccessor (go-git against a
// checkout on disk) and GithubAccessor (go-github against the remote API) —
// selected by the --access flag and otherwise used interchangeably by the
// orchestrator.
type Accessor interface {
	// Commit resolves ref (a sha, a sha prefix, a branch, or a tag) to a
	// full Commit record. Returns ErrNotFound if ref cannot be resolved.
	Commit(ctx context.Context, ref string) (Commit, error)

	// Commits returns the inclusive linear history from startSha to
	// endSha, chronologically non-decreasing, with the last element's Sha
	// equal to endSha. Returns ErrNotAncestor if startSha is not an
	// ancestor of endSha or if the range is empty.
	Commits(ctx context.Context, startSha, endSha string) ([]Commit, error)
}
