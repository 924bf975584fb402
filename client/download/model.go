package download

import (
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	ErrContentLengthMismatch = errors.New("content length mismatch")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrDownloadCancelled     = errors.New("download cancelled")
)

// Source is a response body on its way to disk.
type Source struct {
	Body io.Reader
	// Size is the announced length, or -1 when unknown.
	Size int64
	// Modified is the server's Last-Modified time. Zero when not sent.
	Modified time.Time
}

// Error carries a sentinel along with the file and detail that triggered it.
type Error struct {
	Path   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Detail)
	}

	return fmt.Sprintf("%s: %v: %s", e.Path, e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}
