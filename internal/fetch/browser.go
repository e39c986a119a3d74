package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/cockroachdb/errors"
)

// BrowserTransport renders pages in headless Chrome. Slower than
// HTTPTransport, but gets through when the site rejects plain HTTP clients.
type BrowserTransport struct {
	timeout time.Duration

	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc

	startOnce sync.Once
	startErr  error
}

// NewBrowserTransport prepares a headless browser; Chrome itself is started
// on the first request.
func NewBrowserTransport(timeout time.Duration, userAgent string) *BrowserTransport {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserStop := chromedp.NewContext(allocCtx)

	return &BrowserTransport{
		timeout:     timeout,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		browserStop: browserStop,
	}
}

// Close shuts the browser down.
func (b *BrowserTransport) Close() {
	b.browserStop()
	b.allocCancel()
}

func (b *BrowserTransport) Get(ctx context.Context, url string) (*Response, error) {
	b.startOnce.Do(func() {
		b.startErr = chromedp.Run(b.browserCtx)
	})
	if b.startErr != nil {
		return nil, errors.Wrap(b.startErr, "start browser")
	}

	// One tab per request, torn down when the caller gives up.
	tabCtx, closeTab := chromedp.NewContext(b.browserCtx)
	defer closeTab()
	tabCtx, cancel := context.WithTimeout(tabCtx, b.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(url))
	if err != nil {
		return nil, err
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, err
	}

	status := 200
	if resp != nil {
		status = int(resp.Status)
	}
	return &Response{StatusCode: status, Body: html}, nil
}
