// Package kaggle is an unofficial client for the Kaggle public REST API.
//
// A [Client] resolves credentials once at construction and then maps each
// API operation onto a single authenticated HTTP request:
//
//	c, err := kaggle.New()
//	if err != nil {
//		return err
//	}
//
//	datasets, err := c.ListDatasets(ctx, kaggle.DatasetListOptions{Search: "titanic"})
//
// Downloads stream to disk and may be unpacked with the archive package.
// Errors are classified with the sentinels in errors.go and can be
// matched with [errors.Is].
package kaggle

import (
	"fmt"
	"log/slog"
	"net/url"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/kaggle/client"
	"github.com/adamwoolhether/kaggle/credentials"
)

const (
	// DefaultBaseURL is the root of the Kaggle API.
	DefaultBaseURL = "https://www.kaggle.com/api/v1"

	// DefaultUserAgent is sent when no other User-Agent is configured.
	DefaultUserAgent = "kaggle-go/1.0"

	tracerName = "github.com/adamwoolhether/kaggle"
)

// Client issues requests against the Kaggle API. It is safe for
// concurrent use and holds no mutable state after [New] returns.
type Client struct {
	creds   credentials.Credentials
	baseURL *url.URL
	http    *client.Client
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New resolves credentials and builds a Client. Credentials come from
// [credentials.Default] unless [WithCredentials] is given. Missing or
// malformed credentials fail with [ErrConfig] before any network I/O.
func New(optFns ...Option) (*Client, error) {
	opts := options{
		source:    credentials.Default(),
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}

	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying option: %w", err)
		}
	}

	base, err := url.Parse(opts.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing base url: %w", ErrConfig, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute", ErrConfig, opts.baseURL)
	}

	creds, err := credentials.Resolve(opts.source)
	if err != nil {
		return nil, err
	}

	httpOpts := append([]client.Option{
		client.WithLogger(opts.logger),
		client.WithUserAgent(opts.userAgent),
	}, opts.httpOpts...)

	hc, err := client.Build(httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("building http client: %w", err)
	}

	tracer := noop.NewTracerProvider().Tracer("")
	if opts.tracerProvider != nil {
		tracer = opts.tracerProvider.Tracer(tracerName)
	}

	c := Client{
		creds:   creds,
		baseURL: base,
		http:    hc,
		logger:  opts.logger,
		tracer:  tracer,
	}

	opts.logger.Debug("kaggle client ready", "credentials", creds, "base_url", base.String())

	return &c, nil
}

// Username returns the account the Client authenticates as.
func (c *Client) Username() string {
	return c.creds.Username
}
