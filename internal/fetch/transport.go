package fetch

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is a raw page as returned by a Transport.
type Response struct {
	StatusCode int
	Body       string
}

// Transport issues a single GET. It must not retry or pace on its own.
type Transport interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// HTTPTransport fetches pages with a plain HTTP client.
type HTTPTransport struct {
	client *resty.Client
}

// NewHTTPTransport creates a transport with a per-request timeout.
func NewHTTPTransport(timeout time.Duration, userAgent string) *HTTPTransport {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	return NewHTTPTransportWithClient(client)
}

// NewHTTPTransportWithClient wraps an existing resty client.
func NewHTTPTransportWithClient(client *resty.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

func (t *HTTPTransport) Get(ctx context.Context, url string) (*Response, error) {
	res, err := t.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: res.StatusCode(),
		Body:       res.String(),
	}, nil
}
