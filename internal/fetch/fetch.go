// Package fetch downloads the published sanctions document.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var ErrUnexpectedStatus = errors.New("unexpected response status")

const userAgent = "sdnscreen"

type Result struct {
	Bytes        int64
	ETag         string
	LastModified string
	Duration     time.Duration
}

type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// New returns a Client; a nil httpClient uses one with a 10 minute timeout.
func New(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{http: httpClient, logger: logger}
}

// Download streams url into path. The body goes to a temporary file in the
// same directory first; path is replaced only after the whole body arrived.
func (c *Client) Download(ctx context.Context, url, path string) (res Result, err error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Info("downloading source document", "url", url, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, resp.Status, url)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading body: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return Result{}, fmt.Errorf("replacing %s: %w", path, err)
	}

	res = Result{
		Bytes:        n,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		Duration:     time.Since(start),
	}
	c.logger.Info("download complete", "bytes", n, "duration", res.Duration)
	return res, nil
}
