package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fortuna/hoops/internal/logging"
	"github.com/fortuna/hoops/internal/retry"
)

const (
	// DefaultMinInterval keeps us under the site's 20 requests per minute.
	DefaultMinInterval = 3 * time.Second
	DefaultMaxRetries  = 3

	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// NoPacing as MinInterval and NoRetries as MaxRetries switch those off.
const (
	NoPacing  time.Duration = -1
	NoRetries               = -1
)

// Options configures a Fetcher. Zero values pick the defaults; use NoPacing
// and NoRetries to disable pacing and retries.
type Options struct {
	MinInterval    time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Clock          Clock
	Logger         *zap.Logger
}

// DefaultOptions returns the options used in production.
func DefaultOptions() Options {
	return Options{
		MinInterval:    DefaultMinInterval,
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
	}
}

// Fetcher issues paced GET requests and retries transient failures.
// One Fetcher owns one pacing gate: every caller sharing the Fetcher,
// from any goroutine, observes the same minimum interval between requests.
type Fetcher struct {
	transport Transport
	limiter   *rate.Limiter
	clock     Clock
	retry     retry.RetryOptions
	logger    *zap.Logger
}

// New creates a Fetcher on top of transport.
func New(transport Transport, opts Options) *Fetcher {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock()
	}
	switch {
	case opts.MinInterval == 0:
		opts.MinInterval = DefaultMinInterval
	case opts.MinInterval < 0:
		opts.MinInterval = 0
	}
	switch {
	case opts.MaxRetries == 0:
		opts.MaxRetries = DefaultMaxRetries
	case opts.MaxRetries < 0:
		opts.MaxRetries = 0
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}

	f := &Fetcher{
		transport: transport,
		clock:     clock,
		logger:    logging.OrNop(opts.Logger).Named("fetch"),
	}
	if opts.MinInterval > 0 {
		f.limiter = rate.NewLimiter(rate.Every(opts.MinInterval), 1)
	}

	f.retry = retry.RetryOptions{
		MaxAttempts:     opts.MaxRetries + 1,
		InitialInterval: opts.InitialBackoff,
		MaxInterval:     opts.MaxBackoff,
		Multiplier:      2.0,
		Classifier:      IsTransient,
		Sleep:           clock.Sleep,
	}
	return f
}

// Fetch returns the body of url. It fails with *Error when the server keeps
// failing, or with the context error when ctx is done first.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var (
		body     string
		attempts int
	)

	opts := f.retry
	opts.OnRetry = func(attempt int, err error, wait time.Duration) {
		f.logger.Warn("transient fetch failure, backing off",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err := retry.Do(ctx, func() error {
		attempts++
		if err := f.pace(ctx); err != nil {
			return err
		}
		b, err := f.attempt(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	}, opts)
	if err != nil {
		var fe *Error
		if errors.As(err, &fe) {
			fe.Attempts = attempts
		}
		return "", err
	}

	f.logger.Debug("fetched page", zap.String("url", url), zap.Int("attempts", attempts), zap.Int("bytes", len(body)))
	return body, nil
}

func (f *Fetcher) attempt(ctx context.Context, url string) (string, error) {
	res, err := f.transport.Get(ctx, url)
	if err != nil {
		return "", classify(ctx, url, err)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return "", &Error{Kind: KindHTTPStatus, StatusCode: res.StatusCode, URL: url}
	}
	return res.Body, nil
}

// pace blocks until the shared gate admits one more request.
func (f *Fetcher) pace(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}

	now := f.clock.Now()
	r := f.limiter.ReserveN(now, 1)
	if !r.OK() {
		return errors.New("rate limiter refused reservation")
	}
	delay := r.DelayFrom(now)
	if delay <= 0 {
		return nil
	}

	f.logger.Debug("rate limiting: waiting before next request", zap.Duration("wait", delay))
	if err := f.clock.Sleep(ctx, delay); err != nil {
		r.CancelAt(f.clock.Now())
		return err
	}
	return nil
}
