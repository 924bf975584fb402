package kaggle

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/adamwoolhether/kaggle/client"
	"github.com/adamwoolhether/kaggle/validate"
)

// ListDatasets searches public datasets, or the caller's or another
// user's datasets depending on opts.Group.
func (c *Client) ListDatasets(ctx context.Context, opts DatasetListOptions) ([]Dataset, error) {
	q, err := opts.values()
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}

	return fetch[[]Dataset](ctx, c, "datasets.list", http.MethodGet, c.endpoint([]string{"datasets", "list"}, q))
}

// ViewDataset returns a single dataset.
func (c *Client) ViewDataset(ctx context.Context, slug Slug) (*Dataset, error) {
	if err := slug.check(); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"datasets", "view", slug.Owner, slug.Name}, nil)

	ds, err := fetch[Dataset](ctx, c, "datasets.view", http.MethodGet, u)
	if err != nil {
		return nil, err
	}

	return &ds, nil
}

// ListDatasetFiles lists the files of the latest dataset version.
func (c *Client) ListDatasetFiles(ctx context.Context, slug Slug) (*ListFilesResult, error) {
	if err := slug.check(); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"datasets", "list", slug.Owner, slug.Name}, nil)

	res, err := fetch[ListFilesResult](ctx, c, "datasets.files", http.MethodGet, u)
	if err != nil {
		return nil, err
	}
	if res.ErrorMessage != nil && *res.ErrorMessage != "" {
		return nil, fmt.Errorf("datasets.files: %w: %s", ErrRejected, *res.ErrorMessage)
	}

	return &res, nil
}

// DatasetStatus reports whether a dataset has finished processing.
func (c *Client) DatasetStatus(ctx context.Context, slug Slug) (DatasetStatus, error) {
	if err := slug.check(); err != nil {
		return "", err
	}

	u := c.endpoint([]string{"datasets", "status", slug.Owner, slug.Name}, nil)

	return fetch[DatasetStatus](ctx, c, "datasets.status", http.MethodGet, u)
}

// DatasetMetadata returns a dataset's editable metadata.
func (c *Client) DatasetMetadata(ctx context.Context, slug Slug) (*DatasetMetadata, error) {
	if err := slug.check(); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"datasets", "metadata", slug.Owner, slug.Name}, nil)

	md, err := fetch[DatasetMetadata](ctx, c, "datasets.metadata", http.MethodGet, u)
	if err != nil {
		return nil, err
	}

	return &md, nil
}

// UpdateDatasetMetadata replaces the metadata fields set in settings.
func (c *Client) UpdateDatasetMetadata(ctx context.Context, slug Slug, settings DatasetUpdateSettingsRequest) error {
	if err := slug.check(); err != nil {
		return err
	}
	if err := validate.Check(settings); err != nil {
		return fmt.Errorf("update dataset metadata: %w", err)
	}

	u := c.endpoint([]string{"datasets", "metadata", slug.Owner, slug.Name}, nil)

	return c.send(ctx, "datasets.metadata.update", http.MethodPost, u, client.WithPayload(settings))
}

// DownloadDataset downloads every file of a dataset as <Dir>/<name>.zip.
func (c *Client) DownloadDataset(ctx context.Context, slug Slug, opts DownloadOptions) (*DownloadResult, error) {
	if err := slug.check(); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"datasets", "download", slug.Owner, slug.Name}, versionQuery(opts.Version))

	return c.download(ctx, "datasets.download", u, slug.Name+".zip", true, opts)
}

// DownloadDatasetFile downloads a single file of a dataset. The server
// may send large files compressed, in which case the saved name is the
// one it reports.
func (c *Client) DownloadDatasetFile(ctx context.Context, slug Slug, fileName string, opts DownloadOptions) (*DownloadResult, error) {
	if err := slug.check(); err != nil {
		return nil, err
	}
	if err := checkFileName(fileName); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"datasets", "download", slug.Owner, slug.Name, fileName}, versionQuery(opts.Version))

	return c.download(ctx, "datasets.download.file", u, fileName, false, opts)
}

// CreateDataset creates a dataset from files sent with
// [Client.UploadDatasetFile]. A response whose status is not "ok" is
// returned along with [ErrRejected].
func (c *Client) CreateDataset(ctx context.Context, req DatasetNewRequest) (*DatasetNewResponse, error) {
	if err := validate.Check(req); err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}

	u := c.endpoint([]string{"datasets", "create", "new"}, nil)

	return c.createDataset(ctx, "datasets.create", u, req)
}

// CreateDatasetVersion publishes a new version of the dataset at slug.
func (c *Client) CreateDatasetVersion(ctx context.Context, slug Slug, req DatasetNewVersionRequest) (*DatasetNewResponse, error) {
	if err := slug.check(); err != nil {
		return nil, err
	}
	if err := validate.Check(req); err != nil {
		return nil, fmt.Errorf("create dataset version: %w", err)
	}

	u := c.endpoint([]string{"datasets", "create", "version", slug.Owner, slug.Name}, nil)

	return c.createDataset(ctx, "datasets.version", u, req)
}

// CreateDatasetVersionByID is like [Client.CreateDatasetVersion] for a
// dataset known by its numeric id.
func (c *Client) CreateDatasetVersionByID(ctx context.Context, id int64, req DatasetNewVersionRequest) (*DatasetNewResponse, error) {
	if id <= 0 {
		return nil, fmt.Errorf("dataset id %d: %w", id, ErrValidation)
	}
	if err := validate.Check(req); err != nil {
		return nil, fmt.Errorf("create dataset version: %w", err)
	}

	u := c.endpoint([]string{"datasets", "create", "version", strconv.FormatInt(id, 10)}, nil)

	return c.createDataset(ctx, "datasets.version", u, req)
}

func (c *Client) createDataset(ctx context.Context, op string, u *url.URL, body any) (*DatasetNewResponse, error) {
	res, err := fetch[DatasetNewResponse](ctx, c, op, http.MethodPost, u, client.WithPayload(body))
	if err != nil {
		return nil, err
	}
	if err := res.err(); err != nil {
		return &res, fmt.Errorf("%s: %w", op, err)
	}

	return &res, nil
}

func versionQuery(version int) url.Values {
	if version <= 0 {
		return nil
	}

	return url.Values{"datasetVersionNumber": {strconv.Itoa(version)}}
}
