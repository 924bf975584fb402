package kaggle

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/kaggle/client"
	"github.com/adamwoolhether/kaggle/validate"
)

// RequestIDHeader carries a per-request identifier: the operation's
// trace id when tracing is on, otherwise a random UUID.
const RequestIDHeader = "X-Request-Id"

// Slug is an "owner/name" reference to a dataset or kernel.
type Slug struct {
	Owner string
	Name  string
}

// ParseSlug splits s into its owner and name. It fails with
// [ErrValidation] unless s has exactly two non-empty segments, neither
// of which is "." or "..".
func ParseSlug(s string) (Slug, error) {
	if err := validate.Var(s, "required,slug"); err != nil {
		return Slug{}, fmt.Errorf("slug %q: %w", s, err)
	}

	owner, name, _ := strings.Cut(s, "/")

	return Slug{Owner: owner, Name: name}, nil
}

func (s Slug) String() string {
	return s.Owner + "/" + s.Name
}

// check guards Slug literals built without ParseSlug.
func (s Slug) check() error {
	_, err := ParseSlug(s.String())
	return err
}

// kernelQuery identifies a kernel in the query string.
func (s Slug) kernelQuery() url.Values {
	return url.Values{"userName": {s.Owner}, "kernelSlug": {s.Name}}
}

// checkID rejects empty or path-like competition ids.
func checkID(id string) error {
	if err := validate.Var(id, "required,excludesall=/\\"); err != nil {
		return fmt.Errorf("competition id %q: %w", id, err)
	}

	return checkSegment("competition id", id)
}

// checkFileName rejects file names that would not survive as a single
// path segment. Slashes are escaped, but "." and ".." are collapsed.
func checkFileName(name string) error {
	if err := validate.Var(name, "required"); err != nil {
		return fmt.Errorf("file name: %w", err)
	}

	return checkSegment("file name", name)
}

func checkSegment(what, s string) error {
	if s == "." || s == ".." {
		return fmt.Errorf("%s %q: %w", what, s, ErrValidation)
	}

	return nil
}

// endpoint joins segments onto the base URL, escaping each one.
func (c *Client) endpoint(segments []string, query url.Values) *url.URL {
	return client.URL(c.baseURL, segments, client.WithQuery(query))
}

// request builds an authenticated request carrying the request id of
// the span in ctx.
func (c *Client) request(ctx context.Context, method string, u *url.URL, opts ...client.RequestOption) (*http.Request, error) {
	id := requestID(trace.SpanFromContext(ctx))

	opts = append([]client.RequestOption{
		client.WithBasicAuth(c.creds.Username, c.creds.Key),
		client.WithHeaders(http.Header{RequestIDHeader: {id}}),
	}, opts...)

	req, err := client.Request(ctx, u, method, opts...)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	c.logger.Debug("kaggle request", "method", method, "url", u.Redacted(), "request_id", id)

	return req, nil
}

func requestID(span trace.Span) string {
	if tid := span.SpanContext().TraceID(); tid.IsValid() {
		return tid.String()
	}

	return uuid.New().String()
}

// startSpan opens the span for one API operation.
func (c *Client) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, "kaggle."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("kaggle.operation", op))
	span.SetAttributes(attrs...)

	return ctx, span
}

// endSpan records err, if any, and ends span.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// roundTrip performs one JSON request expecting 200 OK and decodes the
// body into dest unless dest is nil. Decoded values are checked against
// their validate tags.
func roundTrip[T any](ctx context.Context, c *Client, op, method string, u *url.URL, dest *T, opts ...client.RequestOption) (err error) {
	ctx, span := c.startSpan(ctx, op, attribute.String("http.request.method", method))
	defer func() { endSpan(span, err) }()

	req, err := c.request(ctx, method, u, opts...)
	if err != nil {
		return err
	}

	var doOpts []client.DoOption
	if dest != nil {
		doOpts = append(doOpts, client.WithDestination(dest))
	}

	if err := c.http.Do(req, http.StatusOK, doOpts...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if dest != nil {
		if err := checkDecoded(dest); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// fetch is roundTrip into a freshly allocated T.
func fetch[T any](ctx context.Context, c *Client, op, method string, u *url.URL, opts ...client.RequestOption) (T, error) {
	var dest T
	if err := roundTrip(ctx, c, op, method, u, &dest, opts...); err != nil {
		var zero T
		return zero, err
	}

	return dest, nil
}

// send is roundTrip for operations whose response body is ignored.
func (c *Client) send(ctx context.Context, op, method string, u *url.URL, opts ...client.RequestOption) error {
	return roundTrip[struct{}](ctx, c, op, method, u, nil, opts...)
}

// checkDecoded validates a decoded struct, or each struct in a decoded
// slice. Failures are reported as [ErrDecode].
func checkDecoded(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		if err := validate.Check(rv.Interface()); err != nil {
			return fmt.Errorf("%w: %v", ErrDecode, err)
		}
	case reflect.Slice:
		for i := range rv.Len() {
			if err := checkDecoded(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}

	return nil
}
