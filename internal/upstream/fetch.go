// Package upstream holds the HTTP clients for the remote APIs the dashboard is
// built on: disease.sh for live statistics and the forecast backend for
// per-country history and predictions.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"covidtracker.io/internal/cachedb"
	"covidtracker.io/internal/logging"
)

// maxBodyBytes bounds how much of an upstream response is read
const maxBodyBytes = 64 << 20

// ErrNotFound matches a StatusError with status 404.
var ErrNotFound = errors.New("upstream resource not found")

// StatusError is returned for non-2xx upstream responses
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Option configures a client
type Option func(*fetcher)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(f *fetcher) {
		f.httpClient = client
	}
}

// WithCache serves GET requests from cache while entries are younger than ttl
func WithCache(cache *cachedb.Client, ttl time.Duration) Option {
	return func(f *fetcher) {
		f.cache = cache
		f.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for cache and transport problems
func WithLogger(logger *slog.Logger) Option {
	return func(f *fetcher) {
		f.logger = logger
	}
}

type fetcher struct {
	name       string
	baseURL    string
	httpClient *http.Client
	cache      *cachedb.Client
	cacheTTL   time.Duration
	logger     *slog.Logger
}

func newFetcher(name, baseURL string, opts []Option) *fetcher {
	f := &fetcher{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(slog.String("component", name+"_client"))
	return f
}

func (f *fetcher) cacheKey(path string) string {
	return f.name + ":" + path
}

// getJSON decodes the response of GET path into out, using the cache if one is attached
func (f *fetcher) getJSON(ctx context.Context, path string, out any) error {
	key := f.cacheKey(path)

	if f.cache != nil {
		body, ok, err := f.cache.Get(ctx, key, f.cacheTTL)
		if err != nil {
			logging.LogError(f.logger, "cache read failed", err, slog.String("key", key))
		} else if ok {
			if err := json.Unmarshal(body, out); err == nil {
				return nil
			}
			// fall through and refetch a corrupt entry
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return err
	}
	body, err := f.do(req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", req.URL, err)
	}

	if f.cache != nil {
		if err := f.cache.Put(ctx, key, body, time.Now()); err != nil {
			logging.LogError(f.logger, "cache write failed", err, slog.String("key", key))
		}
	}
	return nil
}

// postJSON sends payload as JSON to path and decodes the response into out
func (f *fetcher) postJSON(ctx context.Context, path string, payload any, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := f.do(req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s: %w", req.URL, err)
	}
	return nil
}

func (f *fetcher) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", req.URL, err)
	}
	defer logging.SafeCloseWithLogging(resp.Body, f.logger, "http_response_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", req.URL, err)
	}
	return body, nil
}
