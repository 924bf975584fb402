package kaggle

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/adamwoolhether/kaggle/client"
	"github.com/adamwoolhether/kaggle/validate"
)

// ListKernels searches kernels.
func (c *Client) ListKernels(ctx context.Context, opts KernelListOptions) ([]Kernel, error) {
	q, err := opts.values()
	if err != nil {
		return nil, fmt.Errorf("list kernels: %w", err)
	}

	return fetch[[]Kernel](ctx, c, "kernels.list", http.MethodGet, c.endpoint([]string{"kernels", "list"}, q))
}

// PullKernel returns a kernel's metadata and source. See
// [KernelPullResponse.CodeFileName] for where to save the source.
func (c *Client) PullKernel(ctx context.Context, slug Slug) (*KernelPullResponse, error) {
	if err := slug.check(); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"kernels", "pull"}, slug.kernelQuery())

	res, err := fetch[KernelPullResponse](ctx, c, "kernels.pull", http.MethodGet, u)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// PushKernel uploads a new kernel version. Errors the API reports in a
// 200 response are returned in the response and as [ErrRejected].
func (c *Client) PushKernel(ctx context.Context, req KernelPushRequest) (*KernelPushResponse, error) {
	if err := validate.Check(req); err != nil {
		return nil, fmt.Errorf("push kernel: %w", err)
	}

	u := c.endpoint([]string{"kernels", "push"}, nil)

	res, err := fetch[KernelPushResponse](ctx, c, "kernels.push", http.MethodPost, u, client.WithPayload(req))
	if err != nil {
		return nil, err
	}
	if res.Error != "" {
		return &res, fmt.Errorf("kernels.push: %w: %s", ErrRejected, res.Error)
	}

	return &res, nil
}

// KernelStatus returns the run state of a kernel's latest version.
func (c *Client) KernelStatus(ctx context.Context, slug Slug) (*KernelStatus, error) {
	if err := slug.check(); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"kernels", "status"}, slug.kernelQuery())

	res, err := fetch[KernelStatus](ctx, c, "kernels.status", http.MethodGet, u)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// KernelOutput lists the output files and log of a kernel's latest run.
func (c *Client) KernelOutput(ctx context.Context, slug Slug) (*KernelOutput, error) {
	if err := slug.check(); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"kernels", "output"}, slug.kernelQuery())

	res, err := fetch[KernelOutput](ctx, c, "kernels.output", http.MethodGet, u)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// DownloadKernelOutput saves every output file of a kernel's latest run
// into opts.Dir, one request at a time, and writes the run log to
// <slug name>.log when there is one. It returns the saved paths.
// Only Dir, Progress, SkipExisting and Wrap apply.
func (c *Client) DownloadKernelOutput(ctx context.Context, slug Slug, opts DownloadOptions) (_ []string, err error) {
	out, err := c.KernelOutput(ctx, slug)
	if err != nil {
		return nil, err
	}

	ctx, span := c.startSpan(ctx, "kernels.output.download", attribute.Int("kaggle.output.files", len(out.Files)))
	defer func() { endSpan(span, err) }()

	dir := opts.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating destination dir: %w", err)
	}

	opts.Checksum = nil
	dlOpts, err := opts.clientOpts()
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, f := range out.Files {
		if !filepath.IsLocal(filepath.FromSlash(f.FileName)) {
			return paths, fmt.Errorf("kernels.output.download: %q: %w", f.FileName, ErrUnsafePath)
		}

		u, err := url.Parse(string(f.URL))
		if err != nil || !u.IsAbs() {
			return paths, fmt.Errorf("kernels.output.download: %w: url for %q", ErrDecode, f.FileName)
		}

		// Output URLs point at storage, not the API.
		req, err := client.Request(ctx, u, http.MethodGet)
		if err != nil {
			return paths, err
		}

		path := filepath.Join(dir, filepath.FromSlash(f.FileName))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return paths, err
		}
		if err := c.http.Download(req, http.StatusOK, path, dlOpts...); err != nil {
			return paths, fmt.Errorf("kernels.output.download %s: %w", f.FileName, err)
		}

		paths = append(paths, path)
	}

	if out.Log != nil && *out.Log != "" {
		path := filepath.Join(dir, slug.Name+".log")
		if err := os.WriteFile(path, []byte(*out.Log), 0o644); err != nil {
			return paths, fmt.Errorf("writing log: %w", err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// SaveKernel pulls a kernel and writes its source into dir under
// [KernelPullResponse.CodeFileName]. It returns the written path.
func (c *Client) SaveKernel(ctx context.Context, slug Slug, dir string) (string, error) {
	res, err := c.PullKernel(ctx, slug)
	if err != nil {
		return "", err
	}

	name := res.CodeFileName()
	if name == "" {
		return "", fmt.Errorf("save kernel: no file extension for %s %s", res.Blob.Language, res.Blob.KernelType)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating destination dir: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, []byte(res.Blob.Source), 0o644); err != nil {
		return "", fmt.Errorf("save kernel: %w", err)
	}

	return path, nil
}
