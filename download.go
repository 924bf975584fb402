package kaggle

import (
	"context"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/adamwoolhether/kaggle/archive"
	"github.com/adamwoolhether/kaggle/client"
)

// DownloadOptions controls where a download is saved and what happens
// to it afterwards.
type DownloadOptions struct {
	// Dir receives the download and any extracted files. It is created
	// if missing. Defaults to the working directory.
	Dir string
	// FileName overrides the saved file's name.
	FileName string
	// Version selects a dataset version. Zero means the latest.
	Version int
	// Extract unpacks a zip or gzip-tar download into Dir. Downloads
	// that are not archives are left as they are.
	Extract bool
	// KeepExisting leaves files already present in Dir untouched when
	// extracting. By default they are overwritten.
	KeepExisting bool
	// RemoveArchive deletes the archive after a successful extraction.
	RemoveArchive bool
	// Checksum verifies the downloaded bytes.
	Checksum *Checksum
	// Progress logs download progress at info level.
	Progress bool
	// SkipExisting keeps a destination file that already matches the
	// server's size and is no older than its Last-Modified time.
	SkipExisting bool
	// Wrap observes the body as it streams, e.g. to drive a progress
	// bar. total is -1 when unknown.
	Wrap func(r io.Reader, total int64) io.Reader
}

// Checksum is an expected digest of a download.
type Checksum struct {
	// New returns a fresh hash, e.g. sha256.New.
	New func() hash.Hash
	// Expected is the hex-encoded digest.
	Expected string
}

// DownloadResult describes a completed download.
type DownloadResult struct {
	// Path is the saved file.
	Path string `json:"path"`
	// Format is the detected archive format, or archive.FormatUnknown.
	Format archive.Format `json:"format,omitempty"`
	// Extracted lists the files written by extraction.
	Extracted []string `json:"extracted,omitempty"`
	// Removed reports whether the archive was deleted after extraction.
	Removed bool `json:"removed"`
}

func (o DownloadOptions) dir() string {
	if o.Dir == "" {
		return "."
	}

	return o.Dir
}

func (o DownloadOptions) clientOpts() ([]client.DownloadOption, error) {
	var opts []client.DownloadOption

	if o.Version < 0 {
		return nil, fmt.Errorf("%w: version %d must not be negative", ErrValidation, o.Version)
	}
	if o.Checksum != nil {
		if o.Checksum.New == nil || o.Checksum.Expected == "" {
			return nil, fmt.Errorf("%w: checksum needs a hash and an expected value", ErrValidation)
		}
		opts = append(opts, client.WithChecksum(o.Checksum.New(), o.Checksum.Expected))
	}
	if o.Progress {
		opts = append(opts, client.WithProgress())
	}
	if o.SkipExisting {
		opts = append(opts, client.WithSkipExisting())
	}
	if o.Wrap != nil {
		opts = append(opts, client.WithBodyWrapper(o.Wrap))
	}

	return opts, nil
}

// download streams u into opts.Dir. With fixedName the file is saved as
// opts.FileName or defaultName. Otherwise the server's Content-Disposition
// name is preferred, falling back to defaultName.
func (c *Client) download(ctx context.Context, op string, u *url.URL, defaultName string, fixedName bool, opts DownloadOptions) (_ *DownloadResult, err error) {
	ctx, span := c.startSpan(ctx, op, attribute.String("http.request.method", http.MethodGet))
	defer func() { endSpan(span, err) }()

	dlOpts, err := opts.clientOpts()
	if err != nil {
		return nil, err
	}

	req, err := c.request(ctx, http.MethodGet, u)
	if err != nil {
		return nil, err
	}

	dir := opts.dir()

	var path string
	switch {
	case opts.FileName != "":
		path, err = c.saveAs(req, dir, opts.FileName, dlOpts)
	case fixedName:
		path, err = c.saveAs(req, dir, defaultName, dlOpts)
	default:
		path, err = c.http.DownloadDir(req, http.StatusOK, dir, defaultName, dlOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	span.SetAttributes(attribute.String("kaggle.download.path", path))
	c.logger.Debug("kaggle download saved", "op", op, "path", path)

	res := DownloadResult{Path: path}
	if !opts.Extract {
		return &res, nil
	}

	if err := c.unpack(&res, dir, opts); err != nil {
		return &res, fmt.Errorf("%s: %w", op, err)
	}

	return &res, nil
}

func (c *Client) saveAs(req *http.Request, dir, name string, dlOpts []client.DownloadOption) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating destination dir: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := c.http.Download(req, http.StatusOK, path, dlOpts...); err != nil {
		return "", err
	}

	return path, nil
}

// unpack extracts res.Path into dir when it is an archive.
func (c *Client) unpack(res *DownloadResult, dir string, opts DownloadOptions) error {
	format, err := archive.Detect(res.Path)
	switch {
	case errors.Is(err, archive.ErrUnsupportedFormat):
		c.logger.Debug("kaggle download is not an archive", "path", res.Path)
		return nil
	case err != nil:
		return err
	}
	res.Format = format

	var extractOpts []archive.Option
	if opts.KeepExisting {
		extractOpts = append(extractOpts, archive.WithKeepExisting())
	}

	files, err := archive.Extract(res.Path, dir, extractOpts...)
	res.Extracted = files
	if err != nil {
		return err
	}

	if opts.RemoveArchive {
		if err := os.Remove(res.Path); err != nil {
			return fmt.Errorf("removing archive: %w", err)
		}
		res.Removed = true
	}

	return nil
}
