package throttle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's
// Requests Per Second and Burst Rate
type Config struct {
	RPS   int
	Burst int
}

// throttle spaces outbound calls with a token bucket and, after the
// server answers 429, holds every later call until its Retry-After
// has passed. The 429 itself is returned to the caller unchanged.
type throttle struct {
	limiter *rate.Limiter
	cfg     Config
	next    http.RoundTripper
	logFn   func() *slog.Logger

	mu        sync.Mutex
	coolUntil time.Time
}

// NewRoundTripper returns an http.RoundTripper that throttles outbound requests
// using a token bucket rate limiter. logFn lazily resolves the logger at request
// time, making option ordering irrelevant. A nil-returning logFn skips logging.
func NewRoundTripper(rps, burst int, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		cfg:     Config{RPS: rps, Burst: burst},
		next:    next,
		logFn:   logFn,
	}

	return t, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	if pause := t.cooldown(); pause > 0 {
		t.log("kaggle rate limit cooldown", "path", r.URL.Path, "wait", pause.String())
		if err := sleep(ctx, pause); err != nil {
			return nil, err
		}
	}

	// Reserve rather than Allow+Wait so the token check doesn't consume
	// a second token.
	res := t.limiter.Reserve()
	if !res.OK() {
		return nil, fmt.Errorf("%w: burst %d exceeded", ErrWaitingFailed, t.cfg.Burst)
	}

	if delay := res.Delay(); delay > 0 {
		t.log("throttle tokens exhausted", "rate", t.cfg.RPS, "burst", t.cfg.Burst, "path", r.URL.Path, "wait", delay.String())
		if err := sleep(ctx, delay); err != nil {
			res.Cancel()
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	resp, err := t.next.RoundTrip(r)
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		t.coolFor(ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()))
	}

	return resp, err
}

func (t *throttle) cooldown() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	return time.Until(t.coolUntil)
}

func (t *throttle) coolFor(d time.Duration) {
	if d <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if until := time.Now().Add(d); until.After(t.coolUntil) {
		t.coolUntil = until
	}
}

func (t *throttle) log(msg string, args ...any) {
	if logger := t.logFn(); logger != nil {
		logger.Info(msg, args...)
	}
}

// sleep waits for d unless ctx ends first or its deadline is too close.
func sleep(ctx context.Context, d time.Duration) error {
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < d {
		return fmt.Errorf("%w: would exceed context deadline", ErrWaitingFailed)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrWaitingFailed, ctx.Err())
	}
}

// ParseRetryAfter reads a Retry-After header in either form allowed by
// RFC 9110: delay-seconds or an HTTP-date. Zero when absent, invalid or
// already past.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}

	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}

	return 0
}
