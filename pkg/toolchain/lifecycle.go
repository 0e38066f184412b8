package toolchain

import (
	"context"

	"github.com/jtodic/rustc-bisect/pkg/classify"
)

// Lifecycle is the Toolchain Lifecycle collaborator contract (§4.6):
// install a candidate, run the user's test under it, remove it again.
// DiskLifecycle is the concrete, disk-and-network-backed implementation
// used at runtime; tests substitute a fake to exercise the orchestrator
// without touching $RUSTUP_HOME or the nightly mirror.
type Lifecycle interface {
	Install(ctx context.Context, params DownloadParams, force bool) error
	Test(ctx context.Context, cfg TestConfig) (classify.Result, error)
	Remove(params DownloadParams, preserve bool)
}

var _ Lifecycle = (*DiskLifecycle)(nil)
