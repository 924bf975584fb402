package download

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TempPrefix starts the name of every partial download.
const TempPrefix = ".kaggle-dl-"

const progressEvery = time.Second

// Save writes src to dest. The body goes to a partial file next to dest
// that is renamed over it only once the length and checksum check out,
// so dest is either the old file or the complete new one. When the
// server sent Last-Modified, dest takes that as its modification time.
func Save(ctx context.Context, src Source, dest string, logger *slog.Logger, optFns ...Option) error {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return fmt.Errorf("applying option: %w", err)
		}
	}

	if opts.skipExisting && upToDate(dest, src) {
		logger.Info("kaggle file up to date, skipping", "path", dest)
		return nil
	}

	p, err := newPartial(dest)
	if err != nil {
		return err
	}
	defer p.discard(logger)

	var body io.Reader = ctxReader{ctx: ctx, r: src.Body}
	if opts.wrap != nil {
		body = opts.wrap(body, src.Size)
	}

	sinks := []io.Writer{p.f}
	if opts.digest != nil {
		sinks = append(sinks, opts.digest)
	}
	var m *meter
	if opts.progress {
		m = &meter{logger: logger, path: dest, total: src.Size, start: time.Now()}
		sinks = append(sinks, m)
	}

	n, err := io.Copy(io.MultiWriter(sinks...), body)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", ErrDownloadCancelled, err)
		}
		return fmt.Errorf("copying body: %w", err)
	}
	if m != nil {
		m.report("kaggle download finished")
	}

	if src.Size >= 0 && n != src.Size {
		return &Error{
			Path:   dest,
			Err:    ErrContentLengthMismatch,
			Detail: fmt.Sprintf("expected %d bytes, got %d", src.Size, n),
		}
	}

	if opts.digest != nil {
		if err := opts.digest.check(dest); err != nil {
			return err
		}
	}

	return p.commit(src.Modified)
}

// upToDate reports whether dest already holds src.
func upToDate(dest string, src Source) bool {
	info, err := os.Stat(dest)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if src.Size >= 0 && info.Size() != src.Size {
		return false
	}
	if !src.Modified.IsZero() && info.ModTime().Before(src.Modified) {
		return false
	}

	return true
}

// partial is a download in progress. It lives in dest's directory so
// the final rename never crosses filesystems.
type partial struct {
	f    *os.File
	dest string
	done bool
}

func newPartial(dest string) (*partial, error) {
	f, err := os.CreateTemp(filepath.Dir(dest), TempPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}

	return &partial{f: f, dest: dest}, nil
}

func (p *partial) commit(modified time.Time) error {
	if err := p.f.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := p.f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if !modified.IsZero() {
		if err := os.Chtimes(p.f.Name(), time.Time{}, modified); err != nil {
			return fmt.Errorf("setting modification time: %w", err)
		}
	}
	if err := os.Rename(p.f.Name(), p.dest); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	p.done = true

	return nil
}

// discard removes the partial file unless it was committed.
func (p *partial) discard(logger *slog.Logger) {
	if p.done {
		return
	}
	if err := p.f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		logger.Error("closing temp file", "error", err)
	}
	if err := os.Remove(p.f.Name()); err != nil {
		logger.Error("removing temp file", "path", p.f.Name(), "error", err)
	}
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr ctxReader) Read(b []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}

	return cr.r.Read(b)
}

// digest hashes everything written to it.
type digest struct {
	h    hash.Hash
	want string
}

func (d *digest) Write(b []byte) (int, error) {
	return d.h.Write(b)
}

func (d *digest) check(path string) error {
	got := hex.EncodeToString(d.h.Sum(nil))
	if strings.EqualFold(got, strings.TrimSpace(d.want)) {
		return nil
	}

	return &Error{
		Path:   path,
		Err:    ErrChecksumMismatch,
		Detail: fmt.Sprintf("expected %s, got %s", d.want, got),
	}
}

// meter counts bytes and logs throughput at most once per progressEvery.
type meter struct {
	logger *slog.Logger
	path   string
	total  int64
	n      int64
	start  time.Time
	last   time.Time
}

func (m *meter) Write(b []byte) (int, error) {
	m.n += int64(len(b))

	if now := time.Now(); now.Sub(m.last) >= progressEvery {
		m.last = now
		m.report("kaggle download progress")
	}

	return len(b), nil
}

func (m *meter) report(msg string) {
	elapsed := time.Since(m.start)
	attrs := []any{
		"path", m.path,
		"bytes", m.n,
		"elapsed", elapsed.Round(time.Millisecond),
		"mib_per_sec", fmt.Sprintf("%.2f", float64(m.n)/max(elapsed.Seconds(), 1e-9)/(1<<20)),
	}
	if m.total > 0 {
		attrs = append(attrs,
			"total", m.total,
			"percent", fmt.Sprintf("%.1f", float64(m.n)/float64(m.total)*100),
		)
	}

	m.logger.Info(msg, attrs...)
}
