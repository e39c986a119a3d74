package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 2, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	return nil
}

// scriptedTransport replays canned responses and records when each request
// was issued according to the fake clock.
type scriptedTransport struct {
	clock     *fakeClock
	responses []scripted
	calls     []time.Time
}

type scripted struct {
	status int
	body   string
	err    error
}

func (s *scriptedTransport) Get(ctx context.Context, url string) (*Response, error) {
	s.calls = append(s.calls, s.clock.Now())
	r := s.responses[len(s.calls)-1]
	if r.err != nil {
		return nil, r.err
	}
	return &Response{StatusCode: r.status, Body: r.body}, nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func testOptions(clock Clock) Options {
	return Options{
		MinInterval:    2 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
		Clock:          clock,
	}
}

func TestFetch_RetriesTooManyRequestsWithOneIntervalGap(t *testing.T) {
	clock := newFakeClock()
	transport := &scriptedTransport{clock: clock, responses: []scripted{
		{status: http.StatusTooManyRequests},
		{status: http.StatusOK, body: "<html>ok</html>"},
	}}

	f := New(transport, testOptions(clock))
	body, err := f.Fetch(context.Background(), "https://example.test/page.html")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", body)

	require.Len(t, transport.calls, 2)
	gap := transport.calls[1].Sub(transport.calls[0])
	assert.GreaterOrEqual(t, gap, 2*time.Second)
}

func TestFetch_NotFoundFailsImmediately(t *testing.T) {
	clock := newFakeClock()
	transport := &scriptedTransport{clock: clock, responses: []scripted{
		{status: http.StatusNotFound},
	}}

	f := New(transport, testOptions(clock))
	_, err := f.Fetch(context.Background(), "https://example.test/missing.html")
	require.Error(t, err)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindHTTPStatus, fe.Kind)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Equal(t, 1, fe.Attempts)
	assert.True(t, IsNotFound(err))
	assert.Len(t, transport.calls, 1)
}

func TestFetch_ExhaustsRetriesOnServerErrors(t *testing.T) {
	clock := newFakeClock()
	transport := &scriptedTransport{clock: clock, responses: []scripted{
		{status: 500}, {status: 502}, {status: 503}, {status: 503},
	}}

	f := New(transport, testOptions(clock))
	_, err := f.Fetch(context.Background(), "https://example.test/flaky.html")

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 503, fe.StatusCode)
	assert.Equal(t, 4, fe.Attempts)
	assert.False(t, IsNotFound(err))
	assert.Len(t, transport.calls, 4)

	for i := 1; i < len(transport.calls); i++ {
		assert.GreaterOrEqual(t, transport.calls[i].Sub(transport.calls[i-1]), 2*time.Second)
	}
}

func TestFetch_ClassifiesTimeoutsAndNetworkErrors(t *testing.T) {
	clock := newFakeClock()
	transport := &scriptedTransport{clock: clock, responses: []scripted{
		{err: timeoutErr{}},
		{err: errors.New("connection refused")},
	}}

	opts := testOptions(clock)
	opts.MaxRetries = 1
	f := New(transport, opts)
	_, err := f.Fetch(context.Background(), "https://example.test/down.html")

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindNetwork, fe.Kind)
	assert.Equal(t, 2, fe.Attempts)
	assert.Len(t, transport.calls, 2)
}

func TestFetch_TimeoutKind(t *testing.T) {
	clock := newFakeClock()
	transport := &scriptedTransport{clock: clock, responses: []scripted{
		{err: timeoutErr{}},
	}}

	opts := testOptions(clock)
	opts.MaxRetries = NoRetries
	_, err := New(transport, opts).Fetch(context.Background(), "https://example.test/slow.html")

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindTimeout, fe.Kind)
	assert.True(t, fe.Transient())
}

func TestNew_ZeroOptionsUseDefaults(t *testing.T) {
	clock := newFakeClock()
	transport := &scriptedTransport{clock: clock, responses: []scripted{
		{status: http.StatusServiceUnavailable},
		{status: http.StatusOK, body: "schedule"},
	}}

	body, err := New(transport, Options{Clock: clock}).Fetch(context.Background(), "https://example.test/games.html")
	require.NoError(t, err, "a 503 is retried by default")
	assert.Equal(t, "schedule", body)
	require.Len(t, transport.calls, 2)
	assert.GreaterOrEqual(t, transport.calls[1].Sub(transport.calls[0]), DefaultMinInterval)
}

func TestNew_PacingAndRetriesCanBeDisabled(t *testing.T) {
	clock := newFakeClock()
	transport := &scriptedTransport{clock: clock, responses: []scripted{
		{status: http.StatusServiceUnavailable},
		{status: http.StatusOK},
	}}

	f := New(transport, Options{MinInterval: NoPacing, MaxRetries: NoRetries, Clock: clock})
	_, err := f.Fetch(context.Background(), "https://example.test/a.html")
	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 1, fe.Attempts)

	_, err = f.Fetch(context.Background(), "https://example.test/b.html")
	require.NoError(t, err)
	assert.Equal(t, transport.calls[0], transport.calls[1], "no pacing delay")
}

func TestFetch_CancelledBetweenRetries(t *testing.T) {
	clock := newFakeClock()
	ctx, cancel := context.WithCancel(context.Background())

	transport := &cancelingTransport{cancel: cancel}
	f := New(transport, testOptions(clock))
	_, err := f.Fetch(ctx, "https://example.test/page.html")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, transport.calls)
}

type cancelingTransport struct {
	cancel context.CancelFunc
	calls  int
}

func (c *cancelingTransport) Get(ctx context.Context, url string) (*Response, error) {
	c.calls++
	c.cancel()
	return &Response{StatusCode: http.StatusServiceUnavailable}, nil
}

func TestFetch_SharedGateAcrossGoroutines(t *testing.T) {
	var (
		mu    sync.Mutex
		stamp []time.Time
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		stamp = append(stamp, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	const interval = 60 * time.Millisecond
	f := New(NewHTTPTransport(time.Second, "hoops-test"), Options{MinInterval: interval})

	var wg sync.WaitGroup
	var failures atomic.Int32
	for _, path := range []string{"/schedule", "/roster", "/injuries"} {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			if _, err := f.Fetch(context.Background(), server.URL+path); err != nil {
				failures.Add(1)
			}
		}(path)
	}
	wg.Wait()

	require.Zero(t, failures.Load())
	require.Len(t, stamp, 3)
	first, last := stamp[0], stamp[0]
	for _, s := range stamp {
		if s.Before(first) {
			first = s
		}
		if s.After(last) {
			last = s
		}
	}
	// three requests through one gate span at least two intervals
	assert.GreaterOrEqual(t, last.Sub(first), 2*interval-20*time.Millisecond)
}

func TestErrorMessages(t *testing.T) {
	err := &Error{Kind: KindHTTPStatus, StatusCode: 404, URL: "u", Attempts: 1}
	assert.Equal(t, "fetch u: http status 404 after 1 attempt(s)", err.Error())

	err = &Error{Kind: KindTimeout, URL: "u", Attempts: 4}
	assert.Equal(t, "fetch u: timeout after 4 attempt(s)", err.Error())
}
