package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/docker/docker/pkg/archive"
	"github.com/schollz/progressbar/v3"
)

// ErrNotFound is returned by Install when no artifact exists on the server
// for the requested Spec. It is distinguished from every other install
// failure because, per §4.6, a missing artifact must never be read as a
// regression verdict — the orchestrator instead steps the search elsewhere.
var ErrNotFound = errors.New("toolchain: artifact not found")

// DiskLifecycle owns a toolchains root (default $RUSTUP_HOME, falling back to
// ~/.rustup) and performs install/test/remove against it. Installation is
// atomic: artifacts are extracted into a sibling tmp/ directory on the same
// filesystem, then renamed into place, so a crash mid-install never leaves
// a partially-populated toolchain directory visible under toolchains/.
type DiskLifecycle struct {
	Root       string // $RUSTUP_HOME or ~/.rustup
	DistServer string // artifact base URL, defaults to NightlyServer
	httpClient *http.Client
}

// NewLifecycle builds a DiskLifecycle rooted at root (the toolchains directory
// lives at root/toolchains, the staging area at root/tmp).
func NewLifecycle(root string) *DiskLifecycle {
	return &DiskLifecycle{
		Root:       root,
		DistServer: NightlyServer,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (l *DiskLifecycle) toolchainsDir() string { return filepath.Join(l.Root, "toolchains") }
func (l *DiskLifecycle) tmpDir() string        { return filepath.Join(l.Root, "tmp") }

func (l *DiskLifecycle) installDir(t Toolchain) string {
	return filepath.Join(l.toolchainsDir(), t.Name())
}

// artifactURLs returns the tarball URLs to fetch for params, in the order
// they must be extracted: the compiler itself, then cargo, then src, each
// optional component layered on top of the previous extraction.
func (l *DiskLifecycle) artifactURLs(params DownloadParams) []string {
	t := params.Toolchain
	specDir := t.Spec.String()
	if t.Spec.IsCi() && t.Spec.Alt() {
		specDir += "-alt"
	}

	var components []string
	components = append(components, "rustc")
	if params.WithCargo {
		components = append(components, "cargo")
	}
	if params.WithSrc {
		components = append(components, "rust-src")
	}
	for _, target := range t.StdTargets {
		components = append(components, "rust-std-"+target)
	}

	urls := make([]string, 0, len(components))
	for _, c := range components {
		host := t.Host
		if c == "rust-src" {
			host = ""
		}
		name := c
		if host != "" {
			name = fmt.Sprintf("%s-%s-%s", c, specDir, host)
		} else {
			name = fmt.Sprintf("%s-%s", c, specDir)
		}
		urls = append(urls, fmt.Sprintf("%s/%s/%s.tar.gz", l.DistServer, specDir, name))
	}
	return urls
}

// Install downloads and extracts every artifact named by params, streaming
// each download to a progress indicator and retrying transient network
// failures. A 403/404 response from the mirror is reported as ErrNotFound;
// every other failure (network, unexpected HTTP status, filesystem,
// extraction) is reported as-is and must not be interpreted as a regression
// verdict. No checksum of the downloaded artifacts is verified.
func (l *DiskLifecycle) Install(ctx context.Context, params DownloadParams, force bool) error {
	dest := l.installDir(params.Toolchain)
	if !force {
		if _, err := os.Stat(dest); err == nil {
			return nil
		}
	}

	tmp, err := os.MkdirTemp(l.tmpDir(), "install-*")
	if err != nil {
		return fmt.Errorf("toolchain: create staging dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	for _, url := range l.artifactURLs(params) {
		if err := l.downloadAndExtract(ctx, url, tmp); err != nil {
			return err
		}
	}

	if err := os.RemoveAll(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("toolchain: clearing existing install: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("toolchain: rename into place: %w", err)
	}
	return nil
}

func (l *DiskLifecycle) downloadAndExtract(ctx context.Context, url, dest string) error {
	var body io.ReadCloser
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := l.httpClient.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
			resp.Body.Close()
			return backoff.Permanent(ErrNotFound)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("toolchain: fetching %s: unexpected status %s", url, resp.Status)
		}
		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetDescription("[cyan]downloading "+filepath.Base(url)+"[reset]"),
			progressbar.OptionSetWidth(20),
		)
		body = &teeReadCloser{r: io.TeeReader(resp.Body, bar), c: resp.Body}
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return err
	}
	defer body.Close()

	if err := archive.Untar(body, dest, &archive.TarOptions{NoLchown: true}); err != nil {
		return fmt.Errorf("toolchain: extracting %s: %w", url, err)
	}
	return nil
}

type teeReadCloser struct {
	r io.Reader
	c io.Closer
}

func (t *teeReadCloser) Read(p []byte) (int, error) { return t.r.Read(p) }
func (t *teeReadCloser) Close() error                { return t.c.Close() }

// Remove deletes the installed toolchain directory. Failures are swallowed
// unless preserve is set, in which case removal is skipped entirely (§4.6).
func (l *DiskLifecycle) Remove(params DownloadParams, preserve bool) {
	if preserve {
		return
	}
	_ = os.RemoveAll(l.installDir(params.Toolchain))
}
