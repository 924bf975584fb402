package client

import (
	"hash"
	"io"

	"github.com/adamwoolhether/kaggle/client/download"
)

// Download types and errors live in [download] and are re-exported here
// so most callers need a single import.

type (
	// DownloadOption configures [Client.Download] and [Client.DownloadDir].
	DownloadOption = download.Option

	// DownloadError carries a download sentinel with the file and detail.
	DownloadError = download.Error
)

var (
	// ErrContentLengthMismatch indicates the byte count did not match Content-Length.
	ErrContentLengthMismatch = download.ErrContentLengthMismatch

	// ErrChecksumMismatch indicates the file checksum did not match the expected value.
	ErrChecksumMismatch = download.ErrChecksumMismatch

	// ErrDownloadCancelled indicates the download was cancelled via context.
	ErrDownloadCancelled = download.ErrDownloadCancelled
)

// WithChecksum verifies the saved bytes against expected, a hex digest
// computed with h (e.g. sha256.New()).
func WithChecksum(h hash.Hash, expected string) DownloadOption {
	return download.WithChecksum(h, expected)
}

// WithProgress logs download progress at info level.
func WithProgress() DownloadOption { return download.WithProgress() }

// WithSkipExisting keeps a destination file that already matches the
// response's Content-Length and is no older than its Last-Modified.
func WithSkipExisting() DownloadOption { return download.WithSkipExisting() }

// WithBodyWrapper lets the caller observe the body as it streams,
// e.g. to drive a progress bar. total is -1 when unknown.
func WithBodyWrapper(fn func(r io.Reader, total int64) io.Reader) DownloadOption {
	return download.WithBodyWrapper(fn)
}
