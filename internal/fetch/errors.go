package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Kind classifies a fetch failure.
type Kind int

const (
	KindTimeout Kind = iota + 1
	KindHTTPStatus
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is returned by Fetcher.Fetch once retries are exhausted or a
// non-transient failure is seen.
type Error struct {
	Kind       Kind
	StatusCode int // set when Kind == KindHTTPStatus
	URL        string
	Attempts   int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("fetch %s: http status %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
	default:
		if e.Err != nil {
			return fmt.Sprintf("fetch %s: %s after %d attempt(s): %v", e.URL, e.Kind, e.Attempts, e.Err)
		}
		return fmt.Sprintf("fetch %s: %s after %d attempt(s)", e.URL, e.Kind, e.Attempts)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether a retry could plausibly succeed.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindNetwork:
		return true
	case KindHTTPStatus:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	}
	return false
}

// IsNotFound reports whether err is an HTTP 404 fetch error, which callers
// treat as "no data for this query".
func IsNotFound(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == KindHTTPStatus && fe.StatusCode == http.StatusNotFound
}

// IsTransient reports whether err is a fetch error worth retrying.
func IsTransient(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Transient()
}

// classify turns a transport-level error into a typed fetch error. Parent
// context cancellation is returned untouched so it is never retried.
func classify(ctx context.Context, url string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, URL: url, Err: err}
	}
	return &Error{Kind: KindNetwork, URL: url, Err: err}
}
