package client

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/kaggle/client/breaker"
	"github.com/adamwoolhether/kaggle/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	breaker           *breaker.Settings
	metrics           *metricsConfig
	tracerProvider    trace.TracerProvider
	noFollowRedirects bool
	logger            *slog.Logger
}

type metricsConfig struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// WithClient replaces the default [http.Client] used by the [Client].
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithCircuitBreaker wraps the transport in a circuit breaker that fails
// fast with [breaker.ErrOpen] after repeated transport or 5xx failures.
func WithCircuitBreaker(settings breaker.Settings) Option {
	return func(c *options) error {
		if settings.Name == "" {
			return errors.New("circuit breaker name must not be empty")
		}
		c.breaker = &settings
		return nil
	}
}

// WithMetrics records request counts, latencies and in-flight requests
// with the given Prometheus registerer.
func WithMetrics(reg prometheus.Registerer, namespace string) Option {
	return func(c *options) error {
		if reg == nil {
			return errors.New("registerer must not be nil")
		}
		c.metrics = &metricsConfig{Registerer: reg, Namespace: namespace}
		return nil
	}
}

// WithTracing records a client span for every outgoing request using tp,
// and propagates the trace context in request headers.
func WithTracing(tp trace.TracerProvider) Option {
	return func(c *options) error {
		if tp == nil {
			return errors.New("tracer provider must not be nil")
		}
		c.tracerProvider = tp
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// DoOption is a functional option for [Client.Do].
type DoOption func(options *doOpts) error

type doOpts struct {
	responseBody any
}

// WithDestination decodes the HTTP response body into bodyTemplate.
// bodyTemplate must be a pointer.
func WithDestination[T any](bodyTemplate *T) DoOption {
	return func(opts *doOpts) error {
		if bodyTemplate == nil {
			return errors.New("destination must not be nil")
		}
		opts.responseBody = bodyTemplate

		return nil
	}
}

// RequestOption is a functional option for [Request].
type RequestOption func(options *requestOpts) error

type requestOpts struct {
	body        any
	multipart   *multipartBody
	raw         *rawBody
	contentType *string
	headers     map[string][]string
	basicAuth   *basicAuth
}

type basicAuth struct {
	username string
	password string
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field string
	name  string
	r     io.Reader
}

type multipartBody struct {
	fields []formField
	file   *formFile
}

type rawBody struct {
	r    io.Reader
	size int64
}

// WithPayload sets the JSON-encoded request body.
func WithPayload(body any) RequestOption {
	return func(opts *requestOpts) error {
		opts.body = body

		return nil
	}
}

// WithFormField adds a field to a multipart/form-data body.
// Fields are written in the order the options are given.
func WithFormField(name, value string) RequestOption {
	return func(opts *requestOpts) error {
		if name == "" {
			return errors.New("form field name must not be empty")
		}
		if opts.multipart == nil {
			opts.multipart = &multipartBody{}
		}
		opts.multipart.fields = append(opts.multipart.fields, formField{name: name, value: value})

		return nil
	}
}

// WithFormFile attaches r as a file part of a multipart/form-data body.
func WithFormFile(field, fileName string, r io.Reader) RequestOption {
	return func(opts *requestOpts) error {
		if field == "" || fileName == "" {
			return errors.New("form file field and name must not be empty")
		}
		if r == nil {
			return errors.New("form file reader must not be nil")
		}
		if opts.multipart == nil {
			opts.multipart = &multipartBody{}
		}
		opts.multipart.file = &formFile{field: field, name: fileName, r: r}

		return nil
	}
}

// WithRawBody streams r as an application/octet-stream body of the given size.
func WithRawBody(r io.Reader, size int64) RequestOption {
	return func(opts *requestOpts) error {
		if r == nil {
			return errors.New("raw body reader must not be nil")
		}
		if size < 0 {
			return errors.New("raw body size must not be negative")
		}
		opts.raw = &rawBody{r: r, size: size}

		return nil
	}
}

// WithContentType overrides the default Content-Type header.
func WithContentType(contentType string) RequestOption {
	return func(opts *requestOpts) error {
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}

		opts.contentType = &contentType

		return nil
	}
}

// WithHeaders adds custom headers to the outgoing request. Repeated
// uses accumulate.
func WithHeaders(headers map[string][]string) RequestOption {
	return func(opts *requestOpts) error {
		if opts.headers == nil {
			opts.headers = make(map[string][]string, len(headers))
		}
		for k, v := range headers {
			opts.headers[k] = append(opts.headers[k], v...)
		}

		return nil
	}
}

// WithBasicAuth sets the Authorization header using HTTP Basic authentication.
func WithBasicAuth(username, password string) RequestOption {
	return func(opts *requestOpts) error {
		if username == "" || password == "" {
			return errors.New("basic auth username and password must not be empty")
		}

		opts.basicAuth = &basicAuth{username: username, password: password}

		return nil
	}
}

// URLOption is a functional option for [URL].
type URLOption func(options *urlOpts)

type urlOpts struct {
	query url.Values
}

// WithQuery sets the URL's query parameters.
func WithQuery(query url.Values) URLOption {
	return func(opts *urlOpts) {
		opts.query = query
	}
}
