package toolchain

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jtodic/rustc-bisect/pkg/classify"
)

// TestConfig describes one probe's invocation: which toolchain is active,
// what to run under it, and where. Adapted from the teacher's docker.Builder
// seam (pkg/docker/builder.go), which built a single fixed command; here
// the command itself varies per probe (cargo subcommand, or a user script).
type TestConfig struct {
	Toolchain  Toolchain
	TestDir    string
	Subcommand string   // e.g. "build"; ignored when Script is set
	Script     string   // path to a user-supplied executable, replaces cargo
	Args       []string // trailing args appended verbatim
	Mode       classify.Mode
	StreamOut  bool // -vv: echo the subprocess's own stdout/stderr live
}

// Test runs the configured command under t's installed toolchain and
// returns the classifier Result for it. RUSTUP_TOOLCHAIN pins rustup's
// proxy binaries to this exact install without needing `rustup override`.
func (l *DiskLifecycle) Test(ctx context.Context, cfg TestConfig) (classify.Result, error) {
	name, args := cfg.command()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = cfg.TestDir
	cmd.Env = append(os.Environ(),
		"RUSTUP_TOOLCHAIN="+cfg.Toolchain.Name(),
		"RUSTUP_HOME="+l.Root,
	)

	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr
	if cfg.StreamOut {
		cmd.Stdout = os.Stdout
		// Tee stderr rather than replacing the buffer outright: the
		// classifier still needs the captured bytes even when -vv
		// also echoes them live.
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
	}

	err := cmd.Run()
	success := err == nil
	var exitErr *exec.ExitError
	if err != nil && !isExitError(err, &exitErr) {
		return classify.Result{}, err
	}

	return classify.Result{Success: success, Stderr: stderr.Bytes()}, nil
}

func isExitError(err error, target **exec.ExitError) bool {
	if ee, ok := err.(*exec.ExitError); ok {
		*target = ee
		return true
	}
	return false
}

// command resolves the configured invocation into an executable name and
// argument list: a user --script replaces `cargo <subcommand>` outright.
func (c TestConfig) command() (string, []string) {
	if c.Script != "" {
		return c.Script, c.Args
	}
	sub := c.Subcommand
	if sub == "" {
		sub = "build"
	}
	return "cargo", append([]string{sub}, c.Args...)
}

// ResolveTestDir defaults to the current working directory when not set.
func ResolveTestDir(dir string) (string, error) {
	if dir != "" {
		return filepath.Abs(dir)
	}
	return os.Getwd()
}
