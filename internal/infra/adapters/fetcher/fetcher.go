// fetcher is the HTTP adapter for the catalog API. Every request
// carries the static API key header and runs under a retry policy for
// transient failures. It implements the ports.ForFetching interface.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sa6mwa/drpod/internal/app/humanreadable"
	"github.com/sa6mwa/drpod/internal/app/ports"
	"github.com/sa6mwa/drpod/internal/app/retry"
	"github.com/sa6mwa/drpod/internal/infra/adapters/logger"
	"golang.org/x/time/rate"
)

const (
	APIKeyHeader   = "x-apikey"
	DefaultTimeout = 30 * time.Second
	// Upper bound on a response body.
	maxBodySize = 64 << 20
)

// StatusError is returned for non-2xx responses. It is always
// retryable. A 404 also matches ports.ErrNotFound.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

func (e *StatusError) Unwrap() error { return ports.ErrTransient }

func (e *StatusError) Is(target error) bool {
	return target == ports.ErrNotFound && e.StatusCode == http.StatusNotFound
}

type Option func(*forFetching)

// WithHTTPClient replaces the default client (which has a 30 second
// timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(f *forFetching) {
		f.client = c
	}
}

// WithTimeout sets the per request timeout on a copy of the client,
// a client passed to WithHTTPClient is left as is.
func WithTimeout(d time.Duration) Option {
	return func(f *forFetching) {
		if d <= 0 {
			return
		}
		c := *f.client
		c.Timeout = d
		f.client = &c
	}
}

func WithPolicy(p retry.Policy) Option {
	return func(f *forFetching) {
		f.policy = p
	}
}

// WithRateLimit caps requests per second across every caller of this
// fetcher. Zero or negative means unlimited.
func WithRateLimit(perSecond float64) Option {
	return func(f *forFetching) {
		if perSecond <= 0 {
			f.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

type forFetching struct {
	client  *http.Client
	apiKey  string
	policy  retry.Policy
	limiter *rate.Limiter
}

// fetcher.New returns a ports.ForFetching sending apiKey in the
// x-apikey header of every request.
func New(apiKey string, options ...Option) ports.ForFetching {
	f := &forFetching{
		client: &http.Client{Timeout: DefaultTimeout},
		apiKey: apiKey,
		policy: retry.DefaultPolicy(),
	}
	for _, o := range options {
		o(f)
	}
	return f
}

func (f *forFetching) Fetch(ctx context.Context, url string) ([]byte, error) {
	l := logger.FromContext(ctx)
	policy := f.policy
	policy.Retryable = isTransient
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		l.Warn("Retrying request", "url", url, "attempt", attempt, "maxRetries", f.policy.MaxRetries, "delay", delay, "error", err)
	}
	var body []byte
	err := retry.Do(ctx, policy, func(ctx context.Context) error {
		b, err := f.get(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ports.ErrUpstream, err)
	}
	l.Debug("Fetched", "url", url, "size", len(body), "humanSize", humanreadable.IEC(int64(len(body))))
	return body, nil
}

func (f *forFetching) get(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, retry.Permanent(err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set(APIKeyHeader, f.apiKey)
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w", ports.ErrTransient, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: url}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("%w: reading body of %s: %w", ports.ErrTransient, url, err)
	}
	return body, nil
}

func isTransient(err error) bool {
	return errors.Is(err, ports.ErrTransient)
}
