package fetchcache

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"tcgmeta/lib/restyutil"
	"tcgmeta/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Fetcher retrieves the raw contents of a URL from its origin.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// FetchError is returned once every attempt at fetching a URL has failed.
type FetchError struct {
	URL      string
	Attempts int
	// StatusCode is the status of the last response, 0 if no response was received
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: status %d after %d attempts", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %s after %d attempts", e.URL, e.Err.Error(), e.Attempts)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 6.1; Win64; x64; rv:62.0) Gecko/20100101 Firefox/80.0"

type HTTPOptions struct {
	UserAgent string
	// Timeout bounds a single attempt
	Timeout    time.Duration
	Attempts   int
	RetryDelay time.Duration
	// RequestsPerSecond paces requests across all callers, 0 disables pacing
	RequestsPerSecond float64
	// Dump receives a transcript of every http exchange when set
	Dump restyutil.Output
}

func DefaultHTTPOptions() HTTPOptions {
	return HTTPOptions{
		UserAgent:  DefaultUserAgent,
		Timeout:    120 * time.Second,
		Attempts:   100,
		RetryDelay: 5 * time.Second,
	}
}

type HTTPFetcher struct {
	http     *resty.Client
	attempts int
	limiter  *rate.Limiter
}

func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	client := resty.New()
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.Attempts - 1)
	// equal bounds turn resty's jittered backoff into a fixed delay
	client.SetRetryWaitTime(opts.RetryDelay)
	client.SetRetryMaxWaitTime(opts.RetryDelay)
	// resty replaces its own transport error check once a condition is added
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		if res == nil {
			return false
		}
		code := res.StatusCode()
		return code == http.StatusTooManyRequests || code >= 500
	})
	client.AddRetryHook(func(res *resty.Response, err error) {
		retryCounter.Add(context.Background(), 1)
	})
	telemetry.InstrumentResty(client, "tcgmeta/lib/fetchcache/http")
	if opts.Dump != nil {
		restyutil.DumpMessages(client, opts.Dump)
	}

	f := &HTTPFetcher{http: client, attempts: opts.Attempts}
	if opts.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		err := f.limiter.Wait(ctx)
		if err != nil {
			return nil, err
		}
	}

	slog.DebugContext(ctx, "downloading", "url", url)
	res, err := f.http.R().
		SetContext(ctx).
		Get(url)
	attempts := f.attempts
	if res != nil && res.Request != nil && res.Request.Attempt > 0 {
		attempts = res.Request.Attempt
	}
	if err != nil {
		fetchErr := &FetchError{URL: url, Attempts: attempts, Err: err}
		if res != nil && res.RawResponse != nil {
			fetchErr.StatusCode = res.StatusCode()
		}
		return nil, fetchErr
	}
	if res.IsError() {
		return nil, &FetchError{URL: url, Attempts: attempts, StatusCode: res.StatusCode()}
	}
	return res.Body(), nil
}
