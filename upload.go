package kaggle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"go.opentelemetry.io/otel/attribute"

	"github.com/adamwoolhether/kaggle/archive"
	"github.com/adamwoolhether/kaggle/client"
)

// ArchiveMode decides how a directory is sent by [Client.UploadDatasetFile].
type ArchiveMode string

const (
	// ArchiveSkip refuses to upload directories.
	ArchiveSkip ArchiveMode = "skip"
	// ArchiveZip packs directories into a zip archive.
	ArchiveZip ArchiveMode = "zip"
	// ArchiveTar packs directories into a gzip-compressed tar archive.
	ArchiveTar ArchiveMode = "tar"
)

func (m ArchiveMode) format() (archive.Format, error) {
	switch m {
	case ArchiveZip:
		return archive.FormatZip, nil
	case ArchiveTar:
		return archive.FormatTarGz, nil
	case ArchiveSkip, "":
		return archive.FormatUnknown, fmt.Errorf("%w: directories are not uploaded with archive mode %q", ErrValidation, ArchiveSkip)
	default:
		return archive.FormatUnknown, fmt.Errorf("%w: unknown archive mode %q", ErrValidation, string(m))
	}
}

// UploadDatasetFile sends the file at path so it can be referenced by
// token from [Client.CreateDataset] or [Client.CreateDatasetVersion].
// A directory is packed into a temporary archive first according to mode.
func (c *Client) UploadDatasetFile(ctx context.Context, path string, mode ArchiveMode) (_ *FileUploadInfo, err error) {
	ctx, span := c.startSpan(ctx, "datasets.upload", attribute.String("kaggle.upload.path", path))
	defer func() { endSpan(span, err) }()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("datasets.upload: %w", err)
	}

	if info.IsDir() {
		format, err := mode.format()
		if err != nil {
			return nil, fmt.Errorf("datasets.upload %s: %w", path, err)
		}

		tmp, err := os.MkdirTemp("", "kaggle-upload-")
		if err != nil {
			return nil, fmt.Errorf("datasets.upload: %w", err)
		}
		defer os.RemoveAll(tmp)

		packed, err := archive.Pack(path, filepath.Join(tmp, filepath.Base(filepath.Clean(path))), format)
		if err != nil {
			return nil, fmt.Errorf("datasets.upload: %w", err)
		}
		c.logger.Debug("kaggle packed directory for upload", "dir", path, "archive", packed)

		path = packed
		if info, err = os.Stat(path); err != nil {
			return nil, fmt.Errorf("datasets.upload: %w", err)
		}
	}

	u := c.endpoint([]string{"datasets", "upload", "file", strconv.FormatInt(info.Size(), 10), strconv.FormatInt(info.ModTime().Unix(), 10)}, nil)

	upload, err := fetch[FileUploadInfo](ctx, c, "datasets.upload.url", http.MethodPost, u, client.WithFormField("fileName", filepath.Base(path)))
	if err != nil {
		return nil, err
	}

	if err := c.putFile(ctx, upload.CreateURL, path, info.Size()); err != nil {
		return nil, fmt.Errorf("datasets.upload: %w", err)
	}

	return &upload, nil
}

// putFile streams the file at path to a pre-signed storage URL. The
// storage service is not Kaggle, so no credentials are sent.
func (c *Client) putFile(ctx context.Context, rawURL, path string, size int64) (err error) {
	ctx, span := c.startSpan(ctx, "upload.put", attribute.String("http.request.method", http.MethodPut))
	defer func() { endSpan(span, err) }()

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: upload url: %w", ErrDecode, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	req, err := client.Request(ctx, u, http.MethodPut, client.WithRawBody(f, size))
	if err != nil {
		return err
	}

	err = c.http.Do(req, http.StatusOK)

	var sErr *StatusError
	if errors.As(err, &sErr) && sErr.StatusCode == http.StatusCreated {
		return nil
	}

	return err
}
