package toolchain

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/schollz/progressbar/v3"
)

// NightlyServer is the default root of the nightly manifest mirror.
const NightlyServer = "https://static.rust-lang.org/dist"

// Resolver fetches the commit sha a nightly channel was built from on a
// given date (§4.4). Retries transient network failures with exponential
// backoff, grounded on the teacher's retry-free but timeout-bounded
// RegistryClient — hardened here because nightly fetches run inside a long
// unattended bisection and a single flaky response shouldn't abort it.
type Resolver struct {
	httpClient *http.Client
	server     string
}

// NewResolver builds a Resolver against the default nightly server.
func NewResolver(httpClient *http.Client) *Resolver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Resolver{httpClient: httpClient, server: NightlyServer}
}

// ErrNoSuchArtifact is returned when the manifest mirror has no entry for
// the requested date (HTTP 403/404 from the static mirror).
var ErrNoSuchArtifact = fmt.Errorf("toolchain: no nightly manifest for that date")

// CommitForDate fetches the commit sha recorded for the nightly built on
// date, streaming the response body to a progress indicator as it reads.
func (r *Resolver) CommitForDate(ctx context.Context, date time.Time) (string, error) {
	url := fmt.Sprintf("%s/%s/channel-rust-nightly-git-commit-hash.txt", r.server, date.Format("2006-01-02"))

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := r.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
			return backoff.Permanent(ErrNoSuchArtifact)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("toolchain: fetching %s: unexpected status %s", url, resp.Status)
		}

		bar := progressbar.NewOptions64(resp.ContentLength,
			progressbar.OptionSetDescription("[cyan]resolving "+date.Format("2006-01-02")+"[reset]"),
			progressbar.OptionSetWidth(20),
		)
		buf, readErr := io.ReadAll(io.TeeReader(resp.Body, bar))
		if readErr != nil {
			return readErr
		}
		body = buf
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4)
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}
