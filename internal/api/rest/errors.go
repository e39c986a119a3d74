package rest

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/hoops/internal/backfill"
	"github.com/fortuna/hoops/internal/fetch"
	"github.com/fortuna/hoops/internal/schema"
)

// statusClientClosedRequest is the non-standard status recorded when the
// client goes away before the response is ready.
const statusClientClosedRequest = 499

type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &badRequestError{err: err} }

// classify maps an error to an HTTP status and a short message.
func classify(err error) (int, string) {
	var bad *badRequestError
	var fe *fetch.Error
	var se *schema.Error

	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, "Invalid request"
	case schema.IsKind(err, schema.KindUnknownTeam):
		return http.StatusBadRequest, "Unknown team"
	case errors.Is(err, backfill.ErrJobNotFound):
		return http.StatusNotFound, "Job not found"
	case errors.Is(err, backfill.ErrQueueFull):
		return http.StatusServiceUnavailable, "Backfill queue is full"
	case fetch.IsNotFound(err):
		return http.StatusNotFound, "Page not found upstream"
	case errors.As(err, &fe) && fe.Kind == fetch.KindTimeout:
		return http.StatusGatewayTimeout, "Upstream timed out"
	case errors.As(err, &fe):
		return http.StatusBadGateway, "Upstream fetch failed"
	case errors.As(err, &se):
		return http.StatusBadGateway, "Upstream page did not match the expected layout"
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, "Request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}
