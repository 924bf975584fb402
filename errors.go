package kaggle

import (
	"errors"
	"time"

	"github.com/adamwoolhether/kaggle/archive"
	"github.com/adamwoolhether/kaggle/client"
	"github.com/adamwoolhether/kaggle/credentials"
	"github.com/adamwoolhether/kaggle/validate"
)

// Error kinds. Every error returned by a [Client] operation matches at
// most one of the status kinds (ErrAuth, ErrNotFound, ErrRateLimited,
// ErrAPI) via [errors.Is].
var (
	// ErrAuth is returned for 401 and 403 responses.
	ErrAuth = client.ErrAuthFailure
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = client.ErrNotFound
	// ErrRateLimited is returned for 429 responses. See [RetryAfter].
	ErrRateLimited = client.ErrRateLimited
	// ErrAPI is returned for any other unexpected status.
	ErrAPI = client.ErrUnexpectedStatusCode

	// ErrTransport is returned when no response was received.
	ErrTransport = client.ErrTransport
	// ErrDecode is returned when a response body is not valid JSON or
	// lacks a required field.
	ErrDecode = client.ErrDecode

	// ErrConfig is returned by [New] for missing or malformed credentials.
	ErrConfig = credentials.ErrConfig
	// ErrValidation is returned for invalid caller parameters, before
	// any request is sent.
	ErrValidation = validate.ErrValidation
	// ErrArchive is returned when a downloaded archive cannot be extracted.
	ErrArchive = archive.ErrArchive
	// ErrUnsafePath is returned when an archive entry would escape the
	// extraction directory.
	ErrUnsafePath = archive.ErrUnsafePath

	// ErrRejected is returned when the API answers 200 but reports the
	// request itself as failed, e.g. a dataset creation with an error status.
	ErrRejected = errors.New("request rejected")
)

// StatusError carries the status code and a bounded copy of the body
// of an unexpected response.
type StatusError = client.UnexpectedStatusError

// RetryAfter reports the server-requested wait carried by a rate-limit
// error. ok is false when err is not rate-limited or no wait was given.
func RetryAfter(err error) (d time.Duration, ok bool) {
	var sErr *StatusError
	if !errors.As(err, &sErr) || !errors.Is(sErr, ErrRateLimited) {
		return 0, false
	}

	return sErr.RetryAfter, sErr.RetryAfter > 0
}
