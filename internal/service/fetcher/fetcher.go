package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oshokin/agf-installer/internal/config"
	"github.com/oshokin/agf-installer/internal/domain/release"
	"github.com/oshokin/agf-installer/internal/logger"
	"github.com/oshokin/agf-installer/internal/version"
)

const (
	// defaultBackoff is multiplied by the attempt number between retries.
	defaultBackoff = time.Second
)

var (
	// errBadHTTPStatus is returned for non-200 replies.
	errBadHTTPStatus = errors.New("unexpected http status")
	// errTooLarge is returned when the body exceeds the size cap.
	errTooLarge = errors.New("artifact exceeds size limit")
)

// HTTPFetcher downloads artifacts into memory.
type HTTPFetcher struct {
	// client performs the requests.
	client *http.Client
	// timeout bounds a single attempt including reading the body.
	timeout time.Duration
	// retries is the number of extra attempts after a transient failure.
	retries int
	// backoff is the base delay between attempts.
	backoff time.Duration
	// maxSize caps the response body in bytes.
	maxSize int64
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *HTTPFetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// WithRetries sets the number of extra attempts.
func WithRetries(retries int) Option {
	return func(f *HTTPFetcher) {
		if retries >= 0 {
			f.retries = retries
		}
	}
}

// WithBackoff sets the base delay between attempts.
func WithBackoff(backoff time.Duration) Option {
	return func(f *HTTPFetcher) {
		if backoff >= 0 {
			f.backoff = backoff
		}
	}
}

// WithMaxSize sets the body size cap.
func WithMaxSize(maxSize int64) Option {
	return func(f *HTTPFetcher) {
		if maxSize > 0 {
			f.maxSize = maxSize
		}
	}
}

// New creates a fetcher with config defaults.
func New(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:  http.DefaultClient,
		timeout: config.DefaultTimeout,
		backoff: defaultBackoff,
		maxSize: config.DefaultMaxArtifactSize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// FromConfig creates a fetcher from installer settings.
func FromConfig(cfg *config.Config) *HTTPFetcher {
	return New(
		WithTimeout(cfg.Timeout),
		WithRetries(cfg.Retries),
		WithMaxSize(cfg.MaxArtifactSize),
	)
}

// Fetch downloads url. Every failure wraps release.ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			logger.WarnKV(ctx, "Retrying download", "url", url, "attempt", attempt+1, "error", lastErr)

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %w", release.ErrFetch, ctx.Err())
			case <-time.After(time.Duration(attempt) * f.backoff):
			}
		}

		data, retryable, err := f.fetchOnce(ctx, url)
		if err == nil {
			logger.DebugKV(ctx, "Downloaded artifact", "url", url, "bytes", len(data))
			return data, nil
		}

		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%w: %w", release.ErrFetch, lastErr)
}

// fetchOnce performs a single attempt and reports whether a failure is worth retrying.
func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, false, err
	}

	req.Header.Set("User-Agent", "agf-installer/"+version.Short())

	response, err := f.client.Do(req)
	if err != nil {
		return nil, true, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		retryable := response.StatusCode >= http.StatusInternalServerError
		return nil, retryable, fmt.Errorf("%s, %s: %w", url, response.Status, errBadHTTPStatus)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, f.maxSize+1))
	if err != nil {
		return nil, true, err
	}

	if int64(len(data)) > f.maxSize {
		return nil, false, fmt.Errorf("%s: %w (%d bytes)", url, errTooLarge, f.maxSize)
	}

	return data, false, nil
}
