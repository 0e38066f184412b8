// Package toolchain implements the Toolchain Lifecycle collaborator
// contract (§4.6): install, test, remove for a candidate rustc build, plus
// the Date→Commit Resolver (§4.4). Grounded on the teacher's download/auth
// plumbing in pkg/docker/registry_client.go and its progress-bar usage in
// cmd/registry.go, adapted from container-registry HTTP fetches to nightly
// manifest and artifact fetches.
package toolchain

import (
	"fmt"
	"sort"
	"time"
)

// Kind distinguishes the two ToolchainSpec variants.
type Kind int

const (
	KindNightly Kind = iota
	KindCi
)

// Spec is either Nightly{date} or Ci{commit, alt}. The alt flag selects an
// alternate build flavor of the same commit (e.g. an alt codegen config).
type Spec struct {
	kind   Kind
	date   time.Time
	commit string
	alt    bool
}

// NewNightly builds a Nightly-kind Spec for the given calendar date.
func NewNightly(date time.Time) Spec {
	return Spec{kind: KindNightly, date: date.UTC()}
}

// NewCi builds a Ci-kind Spec for the given commit, optionally selecting
// the alternate build flavor.
func NewCi(commit string, alt bool) Spec {
	return Spec{kind: KindCi, commit: commit, alt: alt}
}

func (s Spec) IsNightly() bool { return s.kind == KindNightly }
func (s Spec) IsCi() bool      { return s.kind == KindCi }
func (s Spec) Date() time.Time { return s.date }
func (s Spec) Commit() string  { return s.commit }
func (s Spec) Alt() bool       { return s.alt }

// String renders the canonical user-facing form of the spec: the ISO date
// for a nightly, or the commit sha (suffixed "-alt" when alt is set) for a
// CI build.
func (s Spec) String() string {
	switch s.kind {
	case KindNightly:
		return s.date.Format("2006-01-02")
	default:
		if s.alt {
			return s.commit + "-alt"
		}
		return s.commit
	}
}

// Toolchain pairs a Spec with the host triple it runs on and the
// deduplicated, sorted set of standard-library target triples to install
// alongside it.
type Toolchain struct {
	Spec       Spec
	Host       string
	StdTargets []string
}

// New builds a Toolchain, sorting and deduplicating targets.
func New(spec Spec, host string, targets []string) Toolchain {
	return Toolchain{Spec: spec, Host: host, StdTargets: dedupSorted(targets)}
}

func dedupSorted(in []string) []string {
	set := make(map[string]struct{}, len(in))
	for _, t := range in {
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Name returns the toolchain's installed directory name, the form rustup
// uses under $RUSTUP_HOME/toolchains: "<spec>-<host>".
func (t Toolchain) Name() string {
	return fmt.Sprintf("%s-%s", t.Spec.String(), t.Host)
}

// DownloadParams carries everything install/remove need to locate and name
// a toolchain's artifacts, kept after a successful bisection so the found
// toolchain can be reinstalled for a final confirmation.
type DownloadParams struct {
	Toolchain Toolchain
	WithCargo bool
	WithSrc   bool
}
