package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Named transport implementations selectable at client construction.
const (
	// TransportPooled shares keep-alive connections across requests. The
	// default, and the right choice for concurrent use.
	TransportPooled = "pooled"
	// TransportSimple opens a fresh connection per request. Slower, but
	// leaves nothing held open between calls.
	TransportSimple = "simple"
)

const defaultTimeout = 30 * time.Second

// Transport fetches a JSON document for an endpoint URL plus query
// parameters. Implementations own connection mechanics; callers own URL
// construction and parameter normalization.
type Transport interface {
	Fetch(ctx context.Context, endpoint string, params url.Values) (map[string]any, error)
}

// TransportOption configures the built-in HTTP transports.
type TransportOption func(*transportOptions)

type transportOptions struct {
	timeout time.Duration
	qps     int
	logger  zerolog.Logger
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) TransportOption {
	return func(o *transportOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithQPS adds a client-side request budget of qps requests per second,
// applied before each request leaves. Zero disables the limiter; the
// reactive 429 handling stays active either way.
func WithQPS(qps int) TransportOption {
	return func(o *transportOptions) {
		if qps > 0 {
			o.qps = qps
		}
	}
}

// WithTransportLogger sets the logger used for request-level logging.
func WithTransportLogger(logger zerolog.Logger) TransportOption {
	return func(o *transportOptions) {
		o.logger = logger
	}
}

// NewTransport builds one of the named transports.
func NewTransport(name string, opts ...TransportOption) (Transport, error) {
	o := transportOptions{
		timeout: defaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var client *http.Client
	switch name {
	case TransportPooled, "":
		client = &http.Client{Timeout: o.timeout}
	case TransportSimple:
		client = &http.Client{
			Timeout: o.timeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		}
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", ErrTMDB, name)
	}

	t := &httpTransport{
		client: client,
		logger: o.logger,
	}
	if o.qps > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(o.qps), o.qps)
	}
	return t, nil
}

// httpTransport implements Transport on net/http.
type httpTransport struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// Fetch issues a GET and decodes the JSON body.
//
// Rate-limit protocol: a 429 response is retried exactly once, after waiting
// out the server's Retry-After value; a second 429 for the same logical call
// fails with ErrRatelimitExceeded. The retried flag bounds the loop.
func (t *httpTransport) Fetch(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	requestURL := endpoint
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	retried := false
	for {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("waiting for request budget: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		t.logger.Debug().Str("url", requestURL).Msg("Requesting JSON")

		resp, err := t.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if retried {
				return nil, ErrRatelimitExceeded
			}
			retried = true

			wait := retryAfter(resp.Header)
			t.logger.Warn().Dur("retry_after", wait).Msg("Rate limited, retrying once")
			if err := sleepContext(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &HTTPError{Status: resp.StatusCode}
		}

		if len(body) == 0 {
			return nil, fmt.Errorf("%w: empty body", ErrDecode)
		}

		var parsed map[string]any
		if err := json.Unmarshal(body, &parsed); err != nil {
			t.logger.Debug().Str("body", string(body)).Msg("Malformed response body")
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}

		return parsed, nil
	}
}

// retryAfter reads the wait hint from a 429 response. A missing or
// unparseable header means retry immediately; negative values are clamped.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// sleepContext sleeps for d or until the context is done, whichever comes
// first. Never sleeps a non-positive duration.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
