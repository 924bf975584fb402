package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/adamwoolhether/kaggle/client/breaker"
	"github.com/adamwoolhether/kaggle/client/download"
	"github.com/adamwoolhether/kaggle/client/metrics"
	"github.com/adamwoolhether/kaggle/client/throttle"
)

// Client wraps the std-lib *http.Client
// It sets a default *http.Client and *http.Transport, which
// can be customized via optional funcs.
type Client struct {
	c      *http.Client
	logger *slog.Logger
}

// Build instantiates a *Client with the provided options.
// If not specified, a copy of http.DefaultClient using http.DefaultTransport is used.
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		c:      &http.Client{},
		logger: slog.Default(),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		client.c = opts.client
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.tracerProvider != nil {
		transport = otelhttp.NewTransport(transport, otelhttp.WithTracerProvider(opts.tracerProvider))
	}
	if opts.metrics != nil {
		rt, err := metrics.NewRoundTripper(opts.metrics.Registerer, opts.metrics.Namespace, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring metrics: %w", err)
		}
		transport = rt
	}
	if opts.breaker != nil {
		rt, err := breaker.NewRoundTripper(*opts.breaker, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring circuit breaker: %w", err)
		}
		transport = rt
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// Logger returns the logger the Client was built with.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Do will fire the request, and write response to the given dest object if any.
func (c *Client) Do(req *http.Request, expCode int, opts ...DoOption) error {
	var settings doOpts
	for _, opt := range opts {
		err := opt(&settings)
		if err != nil {
			return err
		}
	}

	doFunc := func(resp *http.Response) error {
		if settings.responseBody != nil {
			if err := json.NewDecoder(resp.Body).Decode(settings.responseBody); err != nil {
				return fmt.Errorf("%w: %w", ErrDecode, err)
			}
		}

		return nil
	}

	return c.exec(req, expCode, doFunc)
}

// Download streams the response body to destPath through a partial file
// in the same directory, which is renamed to destPath on success and
// removed on failure.
func (c *Client) Download(req *http.Request, expCode int, destPath string, opts ...DownloadOption) error {
	if destPath == "" {
		return errors.New("destPath must not be empty")
	}

	dlFunc := func(resp *http.Response) error {
		if err := download.Save(req.Context(), bodySource(resp), destPath, c.logger, opts...); err != nil {
			return fmt.Errorf("download: %w", err)
		}

		return nil
	}

	return c.exec(req, expCode, dlFunc)
}

// DownloadDir is like Download, but names the file inside dir from the
// response's Content-Disposition header, falling back to fallbackName.
// dir is created if it doesn't exist. The saved path is returned.
func (c *Client) DownloadDir(req *http.Request, expCode int, dir, fallbackName string, opts ...DownloadOption) (string, error) {
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating destination dir: %w", err)
	}

	var destPath string
	dlFunc := func(resp *http.Response) error {
		name := FileName(resp, fallbackName)
		if name == "" {
			return errors.New("unable to determine file name")
		}
		destPath = filepath.Join(dir, name)

		if err := download.Save(req.Context(), bodySource(resp), destPath, c.logger, opts...); err != nil {
			return fmt.Errorf("download: %w", err)
		}

		return nil
	}

	if err := c.exec(req, expCode, dlFunc); err != nil {
		return "", err
	}

	return destPath, nil
}

// Request instantiates an *http.Request with the provided information.
// It's just a convenience method that wraps the public Request func.
func (c *Client) Request(ctx context.Context, reqURL *url.URL, method string, opts ...RequestOption) (*http.Request, error) {
	return Request(ctx, reqURL, method, opts...)
}

// URL creates a url.URL for use in Request.
// It's just a convenience method that wraps the public URL func.
func (c *Client) URL(base *url.URL, segments []string, opts ...URLOption) *url.URL {
	return URL(base, segments, opts...)
}

// exec runs the request and injected function on success after validating the expected status code.
func (c *Client) exec(req *http.Request, expCode int, fn execFn) error {
	resp, err := c.c.Do(req)
	if err != nil {
		return fmt.Errorf("%w: exec http do: %w", ErrTransport, err)
	}

	discardBody := true
	defer func() {
		if discardBody {
			if _, err = io.Copy(io.Discard, resp.Body); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err = resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != expCode {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		return statusError(resp, b)
	}

	if err := fn(resp); err != nil {
		discardBody = false
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

// Request instantiates an *http.Request with the provided information.
// Content-Type defaults to `application/json` if unspecified via WithContentType.
// A multipart or raw body set via options takes precedence over a JSON payload.
func Request(ctx context.Context, reqURL *url.URL, method string, opts ...RequestOption) (*http.Request, error) {
	var settings requestOpts
	for _, opt := range opts {
		err := opt(&settings)
		if err != nil {
			return nil, err
		}
	}

	var (
		body          io.Reader
		contentLength int64 = -1
		contentType         = "application/json"
	)

	switch {
	case settings.multipart != nil:
		var payload bytes.Buffer
		ct, err := settings.multipart.encode(&payload)
		if err != nil {
			return nil, fmt.Errorf("encoding multipart payload: %w", err)
		}
		body, contentLength, contentType = &payload, int64(payload.Len()), ct
	case settings.raw != nil:
		body, contentLength, contentType = settings.raw.r, settings.raw.size, "application/octet-stream"
	default:
		var payload bytes.Buffer
		if settings.body != nil {
			if err := json.NewEncoder(&payload).Encode(settings.body); err != nil {
				return nil, fmt.Errorf("encoding request payload: %w", err)
			}
		}
		body, contentLength = &payload, int64(payload.Len())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}
	if contentLength >= 0 {
		req.ContentLength = contentLength
	}

	if settings.contentType != nil {
		contentType = *settings.contentType
	}

	req.Header.Set("Content-Type", contentType)
	for k, v := range settings.headers {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	if settings.basicAuth != nil {
		req.SetBasicAuth(settings.basicAuth.username, settings.basicAuth.password)
	}

	return req, nil
}

// URL joins segments onto base, escaping each one so that a segment can
// never introduce extra path levels. The order of segments is preserved.
func URL(base *url.URL, segments []string, opts ...URLOption) *url.URL {
	var settings urlOpts
	for _, opt := range opts {
		opt(&settings)
	}

	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}

	endpoint := base.JoinPath(escaped...)

	if len(settings.query) > 0 {
		endpoint.RawQuery = settings.query.Encode()
	}

	return endpoint
}

// FileName resolves a download's file name from the Content-Disposition
// header. Only the base name is kept. fallback is returned when the
// header is missing or unusable.
func FileName(resp *http.Response, fallback string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := cleanName(params["filename"]); name != "" {
				return name
			}
		}
	}

	return cleanName(fallback)
}

// bodySource describes resp's body for [download.Save].
func bodySource(resp *http.Response) download.Source {
	src := download.Source{Body: resp.Body, Size: resp.ContentLength}
	if t, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		src.Modified = t
	}

	return src
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	switch name {
	case ".", "..", "/":
		return ""
	}

	return name
}

// encode writes the multipart form into w, returning the Content-Type
// including the boundary.
func (m *multipartBody) encode(w io.Writer) (string, error) {
	mw := multipart.NewWriter(w)

	for _, f := range m.fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return "", fmt.Errorf("writing field %s: %w", f.name, err)
		}
	}

	if m.file != nil {
		part, err := mw.CreateFormFile(m.file.field, m.file.name)
		if err != nil {
			return "", fmt.Errorf("creating form file: %w", err)
		}

		if _, err := io.Copy(part, m.file.r); err != nil {
			return "", fmt.Errorf("copying form file: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return mw.FormDataContentType(), nil
}
