package repo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v29/github"
	"golang.org/x/oauth2"
)

// GithubAccessor implements Accessor against the remote GitHub REST API,
// for use when no local clone of rust-lang/rust is available. Grounded on
// the client construction and pointer-field conventions exercised in
// google-skia-buildbot/go/github's test suite (NewGitHub(ctx, owner, repo,
// httpClient)); token auth wired via golang.org/x/oauth2 as in that repo's
// go.mod.
type GithubAccessor struct {
	client *github.Client
	owner  string
	name   string
}

// NewGithubAccessor builds a GithubAccessor for owner/name. If token is
// non-empty, requests are authenticated via an oauth2 static token source;
// otherwise the accessor makes unauthenticated requests, subject to
// GitHub's stricter anonymous rate limit.
func NewGithubAccessor(ctx context.Context, owner, name, token string) *GithubAccessor {
	httpClient := http.DefaultClient
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return &GithubAccessor{
		client: github.NewClient(httpClient),
		owner:  owner,
		name:   name,
	}
}

// Commit resolves ref via the GitHub single-commit endpoint.
func (a *GithubAccessor) Commit(ctx context.Context, ref string) (Commit, error) {
	rc, _, err := a.client.Repositories.GetCommit(ctx, a.owner, a.name, ref)
	if err != nil {
		return Commit{}, fmt.Errorf("%w: %s: %v", ErrNotFound, ref, err)
	}
	return repositoryCommitToCommit(rc), nil
}

// Commits uses the GitHub compare API, which returns the chronological
// list of commits reachable from endSha but not from startSha, with
// endSha's commit last — exactly the inclusive-from-start semantics this
// accessor needs once startSha's own Commit is prepended.
func (a *GithubAccessor) Commits(ctx context.Context, startSha, endSha string) ([]Commit, error) {
	start, err := a.Commit(ctx, startSha)
	if err != nil {
		return nil, fmt.Errorf("resolve start: %w", err)
	}

	cmp, _, err := a.client.Repositories.CompareCommits(ctx, a.owner, a.name, startSha, endSha)
	if err != nil {
		return nil, fmt.Errorf("%w: compare %s..%s: %v", ErrNotAncestor, startSha, endSha, err)
	}

	commits := make([]Commit, 0, len(cmp.Commits)+1)
	commits = append(commits, start)
	for _, rc := range cmp.Commits {
		commits = append(commits, repositoryCommitToCommit(&rc))
	}
	if len(commits) < 2 {
		return nil, ErrNotAncestor
	}
	return commits, nil
}

func repositoryCommitToCommit(rc *github.RepositoryCommit) Commit {
	var c Commit
	if rc.SHA != nil {
		c.Sha = *rc.SHA
	}
	if gc := rc.Commit; gc != nil {
		if gc.Message != nil {
			c.Summary = firstLine(*gc.Message)
		}
		if author := gc.Committer; author != nil && author.Date != nil {
			c.Date = author.Date.UTC()
		}
	}
	return c
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
