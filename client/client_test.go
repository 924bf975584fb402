package client_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/adamwoolhether/kaggle/client"
	"github.com/adamwoolhether/kaggle/client/breaker"
	"github.com/adamwoolhether/kaggle/client/throttle"
)

type test struct {
	*client.Client

	server    *httptest.Server
	serverURL *url.URL
	teardown  func()
}

type payload struct {
	Body string `json:"body"`
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestClient_WithUserAgent(t *testing.T) {
	expectedUA := "kaggle-go/test"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != expectedUA {
			t.Errorf("exp User-Agent %q; got: %q", expectedUA, ua)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	testURL, _ := url.Parse(ts.URL)

	c, err := client.Build(
		client.WithThrottle(100, 10),
		client.WithUserAgent(expectedUA),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	req, err := c.Request(t.Context(), testURL, http.MethodGet)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	if err := c.Do(req, http.StatusOK); err != nil {
		t.Errorf("exp nil err; got: %v", err)
	}
}

func TestClient_BuildOptionValidation(t *testing.T) {
	testCases := []struct {
		name   string
		opt    client.Option
		expErr error
	}{
		{name: "nil client", opt: client.WithClient(nil)},
		{name: "nil transport", opt: client.WithTransport(nil)},
		{name: "negative timeout", opt: client.WithTimeout(-time.Second)},
		{name: "zero throttle", opt: client.WithThrottle(0, 1), expErr: throttle.ErrMustNotBeZero},
		{name: "unnamed breaker", opt: client.WithCircuitBreaker(breaker.Settings{})},
		{name: "nil registerer", opt: client.WithMetrics(nil, "kaggle")},
		{name: "nil logger", opt: client.WithLogger(nil)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.Build(tc.opt)
			if err == nil {
				t.Fatal("exp err; got nil")
			}
			if tc.expErr != nil && !errors.Is(err, tc.expErr) {
				t.Errorf("exp err %v; got: %v", tc.expErr, err)
			}
		})
	}
}

func TestClient_FullChainComposition(t *testing.T) {
	var hits int
	base := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		hits++
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"body":"ok"}`)),
			Header:     http.Header{},
			Request:    r,
		}, nil
	})

	c, err := client.Build(
		client.WithTransport(base),
		client.WithUserAgent("chain/1.0"),
		client.WithMetrics(prometheus.NewRegistry(), "kaggle"),
		client.WithCircuitBreaker(breaker.Settings{Name: "chain"}),
		client.WithThrottle(100, 10),
		client.WithTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	u, _ := url.Parse("http://kaggle.invalid/api/v1")
	req, err := c.Request(t.Context(), u, http.MethodGet)
	if err != nil {
		t.Fatal(err)
	}

	var got payload
	if err := c.Do(req, http.StatusOK, client.WithDestination(&got)); err != nil {
		t.Fatalf("exp nil err; got: %v", err)
	}
	if got.Body != "ok" {
		t.Errorf("exp body %q; got: %q", "ok", got.Body)
	}
	if hits != 1 {
		t.Errorf("exp 1 call to base transport; got: %d", hits)
	}
}

func TestClient_WithTracing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	c, err := client.Build(client.WithTracing(tp))
	if err != nil {
		t.Fatal(err)
	}

	testURL, _ := url.Parse(ts.URL)
	req, _ := c.Request(t.Context(), testURL, http.MethodGet)
	if err := c.Do(req, http.StatusOK); err != nil {
		t.Fatalf("exp nil err; got: %v", err)
	}

	if spans := exporter.GetSpans(); len(spans) != 1 {
		t.Errorf("exp 1 span; got: %d", len(spans))
	}
}

func TestClient_WithNoFollowRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer ts.Close()

	testURL, _ := url.Parse(ts.URL)

	c, err := client.Build(client.WithNoFollowRedirects())
	if err != nil {
		t.Fatal(err)
	}

	req, _ := c.Request(t.Context(), testURL, http.MethodGet)
	if err := c.Do(req, http.StatusFound); err != nil {
		t.Errorf("exp redirect response; got: %v", err)
	}
}

func TestClient_Do(t *testing.T) {
	test := mockServer(t)
	defer test.teardown()

	testCases := []struct {
		name        string
		path        string
		method      string
		expStatus   int
		payload     *payload
		captureResp *payload
		expErr      error
		expNotErr   error
	}{
		{
			name:      "basic get",
			method:    http.MethodGet,
			expStatus: http.StatusOK,
		},
		{
			name:        "post echo",
			path:        "/echo",
			method:      http.MethodPost,
			expStatus:   http.StatusOK,
			payload:     &payload{Body: "hey there"},
			captureResp: new(payload),
		},
		{
			name:      "unexpected 200",
			method:    http.MethodGet,
			expStatus: http.StatusAccepted,
			expErr:    client.ErrUnexpectedStatusCode,
		},
		{
			name:      "unauthorized",
			path:      "/status/401",
			method:    http.MethodGet,
			expStatus: http.StatusOK,
			expErr:    client.ErrAuthFailure,
			expNotErr: client.ErrUnexpectedStatusCode,
		},
		{
			name:      "forbidden",
			path:      "/status/403",
			method:    http.MethodGet,
			expStatus: http.StatusOK,
			expErr:    client.ErrAuthFailure,
		},
		{
			name:      "not found",
			path:      "/status/404",
			method:    http.MethodGet,
			expStatus: http.StatusOK,
			expErr:    client.ErrNotFound,
			expNotErr: client.ErrUnexpectedStatusCode,
		},
		{
			name:      "rate limited",
			path:      "/status/429",
			method:    http.MethodGet,
			expStatus: http.StatusOK,
			expErr:    client.ErrRateLimited,
			expNotErr: client.ErrNotFound,
		},
		{
			name:      "server error",
			path:      "/status/500",
			method:    http.MethodGet,
			expStatus: http.StatusOK,
			expErr:    client.ErrUnexpectedStatusCode,
		},
		{
			name:        "malformed body",
			path:        "/garbage",
			method:      http.MethodGet,
			expStatus:   http.StatusOK,
			captureResp: new(payload),
			expErr:      client.ErrDecode,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var reqOpts []client.RequestOption
			if tc.payload != nil {
				reqOpts = append(reqOpts, client.WithPayload(*tc.payload))
			}

			var opts []client.DoOption
			if tc.captureResp != nil {
				opts = append(opts, client.WithDestination(tc.captureResp))
			}

			u := *test.serverURL
			u.Path = tc.path

			req, err := test.Request(t.Context(), &u, tc.method, reqOpts...)
			if err != nil {
				t.Fatalf("generating req: %v", err)
			}

			err = test.Do(req, tc.expStatus, opts...)
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("exp err: %v; got: %v", tc.expErr, err)
				}
				if tc.expNotErr != nil && errors.Is(err, tc.expNotErr) {
					t.Errorf("exp err not to match %v; got: %v", tc.expNotErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("exp nil err; got: %v", err)
			}

			if tc.captureResp != nil && tc.payload != nil {
				if diff := cmp.Diff(tc.payload, tc.captureResp); diff != "" {
					t.Errorf("exp identical body from echo server; diff %v", diff)
				}
			}
		})
	}
}

func TestClient_Do_RetryAfter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	testURL, _ := url.Parse(ts.URL)
	c, _ := client.Build()
	req, _ := c.Request(t.Context(), testURL, http.MethodGet)

	err := c.Do(req, http.StatusOK)

	var statusErr *client.UnexpectedStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("exp *UnexpectedStatusError; got: %T: %v", err, err)
	}
	if statusErr.RetryAfter != 7*time.Second {
		t.Errorf("exp RetryAfter 7s; got: %v", statusErr.RetryAfter)
	}
	if statusErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("exp status %d; got: %d", http.StatusTooManyRequests, statusErr.StatusCode)
	}
}

func TestClient_Do_ErrorBodyCapped(t *testing.T) {
	largeBody := bytes.Repeat([]byte("Y"), 8192)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(largeBody)
	}))
	defer ts.Close()

	testURL, _ := url.Parse(ts.URL)
	c, _ := client.Build()
	req, _ := c.Request(t.Context(), testURL, http.MethodGet)

	err := c.Do(req, http.StatusOK)

	var statusErr *client.UnexpectedStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("exp *UnexpectedStatusError; got: %T: %v", err, err)
	}

	const maxErrBodySize = 4 << 10
	if len(statusErr.Body) != maxErrBodySize {
		t.Errorf("exp body capped at %d bytes; got: %d", maxErrBodySize, len(statusErr.Body))
	}
}

func TestClient_Do_TransportError(t *testing.T) {
	c, err := client.Build(client.WithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})))
	if err != nil {
		t.Fatal(err)
	}

	u, _ := url.Parse("http://kaggle.invalid")
	req, _ := c.Request(t.Context(), u, http.MethodGet)

	if err := c.Do(req, http.StatusOK); !errors.Is(err, client.ErrTransport) {
		t.Errorf("exp err %v; got: %v", client.ErrTransport, err)
	}
}

func TestClient_Request(t *testing.T) {
	u, _ := url.Parse("https://localhost:8888/api/v1")

	t.Run("json payload", func(t *testing.T) {
		req, err := client.Request(t.Context(), u, http.MethodPost, client.WithPayload(payload{Body: "hey"}))
		if err != nil {
			t.Fatal(err)
		}

		var got payload
		if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
			t.Fatalf("reading req body: %v", err)
		}
		if got.Body != "hey" {
			t.Errorf("exp body %q; got: %q", "hey", got.Body)
		}
		if ct := req.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("exp content type application/json; got: %q", ct)
		}
	})

	t.Run("basic auth", func(t *testing.T) {
		req, err := client.Request(t.Context(), u, http.MethodGet, client.WithBasicAuth("alice", "k3y"))
		if err != nil {
			t.Fatal(err)
		}

		user, pass, ok := req.BasicAuth()
		if !ok || user != "alice" || pass != "k3y" {
			t.Errorf("exp basic auth alice:k3y; got: %q:%q (%v)", user, pass, ok)
		}
	})

	t.Run("empty basic auth", func(t *testing.T) {
		if _, err := client.Request(t.Context(), u, http.MethodGet, client.WithBasicAuth("", "k3y")); err == nil {
			t.Error("exp err for empty username")
		}
	})

	t.Run("multipart", func(t *testing.T) {
		req, err := client.Request(t.Context(), u, http.MethodPost,
			client.WithFormField("fileName", "sub.csv"),
			client.WithFormFile("file", "sub.csv", strings.NewReader("id,target\n1,0\n")),
		)
		if err != nil {
			t.Fatal(err)
		}

		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart: %v", err)
		}
		if got := req.FormValue("fileName"); got != "sub.csv" {
			t.Errorf("exp fileName field %q; got: %q", "sub.csv", got)
		}

		f, hdr, err := req.FormFile("file")
		if err != nil {
			t.Fatalf("reading form file: %v", err)
		}
		defer f.Close()

		data, _ := io.ReadAll(f)
		if hdr.Filename != "sub.csv" || string(data) != "id,target\n1,0\n" {
			t.Errorf("unexpected form file %q: %q", hdr.Filename, data)
		}
	})

	t.Run("raw body", func(t *testing.T) {
		body := []byte("raw bytes")
		req, err := client.Request(t.Context(), u, http.MethodPut, client.WithRawBody(bytes.NewReader(body), int64(len(body))))
		if err != nil {
			t.Fatal(err)
		}

		if req.ContentLength != int64(len(body)) {
			t.Errorf("exp content length %d; got: %d", len(body), req.ContentLength)
		}
		if ct := req.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("exp octet-stream; got: %q", ct)
		}
	})

	t.Run("headers", func(t *testing.T) {
		req, err := client.Request(t.Context(), u, http.MethodGet,
			client.WithContentType("text/csv"),
			client.WithHeaders(map[string][]string{"Multi-Val": {"a", "b"}}),
		)
		if err != nil {
			t.Fatal(err)
		}

		if ct := req.Header.Get("Content-Type"); ct != "text/csv" {
			t.Errorf("exp content type text/csv; got: %q", ct)
		}
		if diff := cmp.Diff([]string{"a", "b"}, req.Header["Multi-Val"]); diff != "" {
			t.Errorf("header mismatch: %s", diff)
		}
	})
}

func TestClient_URL(t *testing.T) {
	base, _ := url.Parse("https://www.kaggle.com/api/v1")

	testCases := []struct {
		name     string
		segments []string
		query    url.Values
		exp      string
	}{
		{
			name:     "basic",
			segments: []string{"datasets", "list"},
			exp:      "https://www.kaggle.com/api/v1/datasets/list",
		},
		{
			name:     "with query",
			segments: []string{"competitions", "list"},
			query:    url.Values{"page": {"2"}, "search": {"titanic"}},
			exp:      "https://www.kaggle.com/api/v1/competitions/list?page=2&search=titanic",
		},
		{
			name:     "escaped segments",
			segments: []string{"datasets", "view", "a/b", "c d"},
			exp:      "https://www.kaggle.com/api/v1/datasets/view/a%2Fb/c%20d",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var opts []client.URLOption
			if tc.query != nil {
				opts = append(opts, client.WithQuery(tc.query))
			}

			got := client.URL(base, tc.segments, opts...)
			if got.String() != tc.exp {
				t.Errorf("exp url %q; got: %q", tc.exp, got.String())
			}
			if base.String() != "https://www.kaggle.com/api/v1" {
				t.Errorf("base url mutated: %q", base.String())
			}
		})
	}
}

func TestFileName(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		fallback string
		exp      string
	}{
		{name: "from header", header: `attachment; filename="train.zip"`, fallback: "x.zip", exp: "train.zip"},
		{name: "no header", fallback: "titanic.zip", exp: "titanic.zip"},
		{name: "traversal in header", header: `attachment; filename="../../etc/passwd"`, fallback: "x", exp: "passwd"},
		{name: "dotdot header", header: `attachment; filename=".."`, fallback: "data.zip", exp: "data.zip"},
		{name: "malformed header", header: `attachment; filename`, fallback: "data.zip", exp: "data.zip"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tc.header != "" {
				resp.Header.Set("Content-Disposition", tc.header)
			}

			if got := client.FileName(resp, tc.fallback); got != tc.exp {
				t.Errorf("exp %q; got: %q", tc.exp, got)
			}
		})
	}
}

const successRespBody = "success"

func mockServer(t *testing.T) *test {
	t.Helper()

	testClient, err := client.Build()
	if err != nil {
		t.Fatalf("failed to create testClient: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		data, _ := json.Marshal(payload{Body: successRespBody})
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		var decoded payload
		if err := json.NewDecoder(r.Body).Decode(&decoded); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data, _ := json.Marshal(decoded)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})
	mux.HandleFunc("/status/{code}", func(w http.ResponseWriter, r *http.Request) {
		code, err := strconv.Atoi(r.PathValue("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, http.StatusText(code), code)
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not json"))
	})
	server := httptest.NewServer(mux)

	testURL, err := url.ParseRequestURI(server.URL)
	if err != nil {
		t.Fatal("parsing test server URL")
	}

	return &test{
		Client:    testClient,
		server:    server,
		serverURL: testURL,
		teardown:  server.Close,
	}
}

// /////////////////////////////////////////////////////////////////
// Download Tests

func newFileServer(t *testing.T, body []byte, disposition string) *url.URL {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if disposition != "" {
			w.Header().Set("Content-Disposition", disposition)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}))
	t.Cleanup(ts.Close)

	u, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}

	return u
}

func TestClient_Download(t *testing.T) {
	expBody := []byte("hello download world")
	sum := sha256.Sum256(expBody)
	goodSum := hex.EncodeToString(sum[:])

	testCases := []struct {
		name   string
		opts   func() []client.DownloadOption
		expErr error
	}{
		{name: "basic", opts: func() []client.DownloadOption { return nil }},
		{name: "checksum pass", opts: func() []client.DownloadOption {
			return []client.DownloadOption{client.WithChecksum(sha256.New(), strings.ToUpper(goodSum))}
		}},
		{name: "checksum fail", opts: func() []client.DownloadOption {
			return []client.DownloadOption{client.WithChecksum(sha256.New(), "badhash")}
		}, expErr: client.ErrChecksumMismatch},
		{name: "progress", opts: func() []client.DownloadOption {
			return []client.DownloadOption{client.WithProgress()}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := newFileServer(t, expBody, "")

			c, err := client.Build()
			if err != nil {
				t.Fatal(err)
			}

			destPath := filepath.Join(t.TempDir(), "file.bin")
			req, _ := c.Request(t.Context(), u, http.MethodGet)

			err = c.Download(req, http.StatusOK, destPath, tc.opts()...)
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("exp err %v; got: %v", tc.expErr, err)
				}
				if _, statErr := os.Stat(destPath); !os.IsNotExist(statErr) {
					t.Errorf("exp no file at %s after failure", destPath)
				}
				return
			}
			if err != nil {
				t.Fatalf("exp nil err; got: %v", err)
			}

			got, err := os.ReadFile(destPath)
			if err != nil {
				t.Fatalf("reading downloaded file: %v", err)
			}
			if !bytes.Equal(got, expBody) {
				t.Errorf("exp contents %q; got: %q", expBody, got)
			}
		})
	}
}

func TestClient_Download_EmptyDestPath(t *testing.T) {
	c, _ := client.Build()
	u, _ := url.Parse("http://kaggle.invalid")
	req, _ := c.Request(t.Context(), u, http.MethodGet)

	if err := c.Download(req, http.StatusOK, ""); err == nil {
		t.Error("exp err for empty destination")
	}
}

func TestClient_Download_SkipExisting(t *testing.T) {
	u := newFileServer(t, []byte("new data"), "")

	c, _ := client.Build()
	destPath := filepath.Join(t.TempDir(), "existing.bin")

	originalContent := []byte("original")
	if err := os.WriteFile(destPath, originalContent, 0o644); err != nil {
		t.Fatal(err)
	}

	req, _ := c.Request(t.Context(), u, http.MethodGet)
	if err := c.Download(req, http.StatusOK, destPath, client.WithSkipExisting()); err != nil {
		t.Fatalf("exp nil err; got: %v", err)
	}

	got, _ := os.ReadFile(destPath)
	if !bytes.Equal(got, originalContent) {
		t.Errorf("file was overwritten; got %q, want %q", got, originalContent)
	}
}

func TestClient_Download_CancelMidDownload(t *testing.T) {
	const chunkSize = 1024
	const totalChunks = 20
	chunk := bytes.Repeat([]byte("a"), chunkSize)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(chunkSize*totalChunks))
		w.WriteHeader(http.StatusOK)

		for range totalChunks {
			if _, err := w.Write(chunk); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			time.Sleep(100 * time.Millisecond)
		}
	}))
	defer ts.Close()

	testURL, _ := url.Parse(ts.URL)
	c, _ := client.Build()

	tmpDir := t.TempDir()
	destPath := filepath.Join(tmpDir, "cancelled.bin")

	ctx, cancel := context.WithCancel(t.Context())
	req, _ := c.Request(ctx, testURL, http.MethodGet)

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Download(req, http.StatusOK, destPath)
	}()

	time.Sleep(250 * time.Millisecond)
	cancel()

	if err := <-errCh; !errors.Is(err, client.ErrDownloadCancelled) {
		t.Errorf("exp ErrDownloadCancelled; got: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(tmpDir, ".kaggle-dl-*"))
	if len(matches) > 0 {
		t.Errorf("exp no temp files; found: %v", matches)
	}
	if _, statErr := os.Stat(destPath); !os.IsNotExist(statErr) {
		t.Errorf("exp no dest file at %s after cancellation", destPath)
	}
}

func TestClient_DownloadDir(t *testing.T) {
	body := []byte("PassengerId,Survived\n1,0\n")

	testCases := []struct {
		name        string
		disposition string
		fallback    string
		expName     string
	}{
		{name: "content disposition", disposition: `attachment; filename="titanic.zip"`, fallback: "x.zip", expName: "titanic.zip"},
		{name: "fallback", fallback: "train.csv", expName: "train.csv"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u := newFileServer(t, body, tc.disposition)
			c, _ := client.Build()

			dir := filepath.Join(t.TempDir(), "nested", "out")
			req, _ := c.Request(t.Context(), u, http.MethodGet)

			path, err := c.DownloadDir(req, http.StatusOK, dir, tc.fallback)
			if err != nil {
				t.Fatalf("exp nil err; got: %v", err)
			}

			if exp := filepath.Join(dir, tc.expName); path != exp {
				t.Errorf("exp path %q; got: %q", exp, path)
			}

			got, _ := os.ReadFile(path)
			if !bytes.Equal(got, body) {
				t.Errorf("exp contents %q; got: %q", body, got)
			}
		})
	}
}
