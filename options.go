package kaggle

import (
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/kaggle/client"
	"github.com/adamwoolhether/kaggle/credentials"
)

// Option is a functional option for [New].
type Option func(*options) error

type options struct {
	source         credentials.Source
	baseURL        string
	userAgent      string
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	httpOpts       []client.Option
}

// WithCredentials sets where the username and key are read from,
// e.g. credentials.Static(user, key) or credentials.File(path).
func WithCredentials(src credentials.Source) Option {
	return func(o *options) error {
		o.source = src
		return nil
	}
}

// WithBaseURL points the Client at another API root, e.g. a test server.
func WithBaseURL(raw string) Option {
	return func(o *options) error {
		if raw == "" {
			return errors.New("base url must not be empty")
		}
		o.baseURL = raw
		return nil
	}
}

// WithUserAgent overrides [DefaultUserAgent].
func WithUserAgent(ua string) Option {
	return func(o *options) error {
		if ua == "" {
			return errors.New("user agent must not be empty")
		}
		o.userAgent = ua
		return nil
	}
}

// WithLogger sets the logger used by the Client and its transport.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracerProvider records one span per API operation. Without it
// a no-op tracer is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) error {
		if tp == nil {
			return errors.New("tracer provider must not be nil")
		}
		o.tracerProvider = tp
		return nil
	}
}

// WithHTTPOptions passes options through to the underlying [client.Build],
// e.g. client.WithThrottle or client.WithCircuitBreaker. They are applied
// after the Client's own logger and user agent, so they may override them.
func WithHTTPOptions(opts ...client.Option) Option {
	return func(o *options) error {
		o.httpOpts = append(o.httpOpts, opts...)
		return nil
	}
}
