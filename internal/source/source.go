// Package source opens the raw cumulative snapshot stream for a run.
// Retry and backoff belong to the external scheduler, not here: a fetch
// either yields a readable stream or fails fast.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/schema"
)

// HTTPClient downloads the snapshot over HTTP with a bounded timeout.
type HTTPClient struct {
	url    string
	client *http.Client
}

var _ contract.SourceClient = &HTTPClient{} // Compile-time check

// NewHTTPClient returns a client for the given snapshot URL.
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch opens the snapshot stream. Any transport failure or non-200
// response maps to schema.ErrSourceUnavailable.
func (c *HTTPClient) Fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", schema.ErrSourceUnavailable, c.url, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: fetching %s: %v", schema.ErrTimeout, c.url, err)
		}
		return nil, fmt.Errorf("%w: fetching %s: %v", schema.ErrSourceUnavailable, c.url, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", schema.ErrSourceUnavailable, c.url, resp.Status)
	}
	return resp.Body, nil
}

// FileClient reads the snapshot from a local file, mainly for backfills
// and development.
type FileClient struct {
	path string
}

var _ contract.SourceClient = &FileClient{} // Compile-time check

// NewFileClient returns a client for the given local snapshot file.
func NewFileClient(path string) *FileClient {
	return &FileClient{path: path}
}

// Fetch opens the local snapshot file.
func (c *FileClient) Fetch(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", schema.ErrSourceUnavailable, c.path, err)
	}
	return f, nil
}
