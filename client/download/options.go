package download

import (
	"errors"
	"hash"
	"io"
)

// Option configures [Save].
type Option func(*options) error

type options struct {
	digest       *digest
	progress     bool
	skipExisting bool
	wrap         func(io.Reader, int64) io.Reader
}

// WithChecksum hashes the body with h while saving and fails with
// [ErrChecksumMismatch] unless the hex digest equals expected.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}
		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.digest = &digest{h: h, want: expected}
		return nil
	}
}

// WithProgress logs transfer progress at info level about once a second.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

// WithSkipExisting leaves the destination alone when it already holds
// the file: same size as announced and no older than Last-Modified.
func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}

// WithBodyWrapper hands the body to fn before copying so callers can
// observe the stream. total is -1 when unknown.
func WithBodyWrapper(fn func(r io.Reader, total int64) io.Reader) Option {
	return func(opts *options) error {
		if fn == nil {
			return errors.New("body wrapper must not be nil")
		}

		opts.wrap = fn
		return nil
	}
}
