// Package breaker provides an http.RoundTripper that stops sending requests
// to a host that keeps failing, and lets a probe request through once the
// cool-down has elapsed.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	// ErrOpen is returned while the breaker is open or half-open and
	// already probing.
	ErrOpen = errors.New("circuit breaker open")
	// ErrInvalidSettings is returned by NewRoundTripper for unusable settings.
	ErrInvalidSettings = errors.New("invalid circuit breaker settings")

	errServerStatus = errors.New("server error status")
)

// Settings configures the breaker.
type Settings struct {
	// Name identifies the breaker in log records.
	Name string
	// MaxRequests is the number of probe requests allowed while half-open.
	// Defaults to 1.
	MaxRequests uint32
	// Interval is the cyclic period in the closed state after which
	// failure counts reset. Zero never resets.
	Interval time.Duration
	// Timeout is how long the breaker stays open before half-opening.
	// Defaults to 30s.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that trips
	// the breaker. Defaults to 5.
	FailureThreshold uint32
}

type roundTripper struct {
	cb   *gobreaker.CircuitBreaker[*http.Response]
	next http.RoundTripper
}

// NewRoundTripper wraps next with a circuit breaker. Transport errors and
// 5xx responses count as failures. A cancelled context does not.
func NewRoundTripper(settings Settings, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if settings.Name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidSettings)
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = slog.Default
	}

	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	st := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logFn().Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &roundTripper{
		cb:   gobreaker.NewCircuitBreaker[*http.Response](st),
		next: next,
	}, nil
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := rt.cb.Execute(func() (*http.Response, error) {
		resp, err := rt.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})

	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, errServerStatus):
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, rt.cb.Name(), err)
	default:
		return nil, err
	}
}
