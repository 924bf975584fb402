package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adamwoolhether/kaggle/client/throttle"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code. This prevents
// unbounded memory usage when a large response arrives with a
// wrong status.
const maxErrBodySize = 4 << 10 // 4KB

// execFn represents a func to operate on a response.
type execFn func(response *http.Response) error

// Each [UnexpectedStatusError] wraps exactly one of the status sentinels
// below, so callers can branch on the kind with [errors.Is].
var (
	// ErrUnexpectedStatusCode is wrapped for any non-matching status that
	// isn't covered by a more specific sentinel.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is wrapped when the server responds with
	// 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrNotFound is wrapped when the server responds with 404 Not Found.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited is wrapped when the server responds with 429 Too Many Requests.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransport wraps failures that occur before a response is received:
	// dialing, TLS, timeouts, cancelled contexts.
	ErrTransport = errors.New("transport failure")
	// ErrDecode wraps failures to decode a response body into its destination.
	ErrDecode = errors.New("decoding response")
)

// UnexpectedStatusError is returned when the HTTP response status code
// does not match the expected value.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	// RetryAfter is parsed from the Retry-After header on 429 responses.
	// Zero when absent or unparsable.
	RetryAfter time.Duration
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%v: %d, retry after %s, body: %s", e.Err, e.StatusCode, e.RetryAfter, e.Body)
	}

	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// statusError classifies a response whose status did not match expectations.
func statusError(resp *http.Response, body []byte) *UnexpectedStatusError {
	sErr := &UnexpectedStatusError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Err:        ErrUnexpectedStatusCode,
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		sErr.Err = ErrAuthFailure
	case http.StatusNotFound:
		sErr.Err = ErrNotFound
	case http.StatusTooManyRequests:
		sErr.Err = ErrRateLimited
		sErr.RetryAfter = throttle.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	}

	return sErr
}
