//go:build integration

package e2e_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/adamwoolhether/kaggle"
	"github.com/adamwoolhether/kaggle/client"
	"github.com/adamwoolhether/kaggle/credentials"
)

// -------------------------------------------------------------------------
// Fake API
// -------------------------------------------------------------------------

const (
	user = "alice"
	key  = "s3cr3t"
)

// fakeKaggle serves the subset of the API the tests drive. Every route
// under /api/v1 requires basic auth. /storage stands in for the upload
// and output buckets and rejects credentials.
type fakeKaggle struct {
	srv       *httptest.Server
	uploaded  []byte
	submitted string
}

func newFakeKaggle(t *testing.T) *fakeKaggle {
	t.Helper()

	f := &fakeKaggle{}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/datasets/list", f.listDatasets)
	api.HandleFunc("GET /api/v1/datasets/download/{owner}/{name}", f.downloadDataset)
	api.HandleFunc("POST /api/v1/competitions/{id}/submissions/url/{size}/{mtime}", f.submitURL)
	api.HandleFunc("POST /api/v1/competitions/submissions/upload/{guid}/{size}/{mtime}", f.upload)
	api.HandleFunc("POST /api/v1/competitions/submissions/submit/{id}", f.submit)
	api.HandleFunc("GET /api/v1/kernels/pull", f.pullKernel)
	api.HandleFunc("GET /api/v1/kernels/output", f.kernelOutput)

	root := http.NewServeMux()
	root.Handle("/api/v1/", requireAuth(api))
	root.HandleFunc("GET /storage/{name}", f.storage)

	f.srv = httptest.NewServer(root)
	t.Cleanup(f.srv.Close)

	return f
}

func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, k, ok := r.BasicAuth(); !ok || u != user || k != key {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, f *fakeKaggle, opts ...kaggle.Option) *kaggle.Client {
	t.Helper()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	opts = append([]kaggle.Option{
		kaggle.WithCredentials(credentials.Static(user, key)),
		kaggle.WithBaseURL(f.srv.URL + "/api/v1"),
		kaggle.WithLogger(log),
	}, opts...)

	c, err := kaggle.New(opts...)
	if err != nil {
		t.Fatalf("building client: %v", err)
	}

	return c
}

// -------------------------------------------------------------------------
// Handlers
// -------------------------------------------------------------------------

func (f *fakeKaggle) listDatasets(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("page") == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "page required"})
		return
	}

	respondJSON(w, http.StatusOK, []map[string]any{
		{"ref": "alice/titanic", "title": "Titanic", "totalBytes": 61194, "lastUpdated": "2024-03-01T12:00:00"},
		{"ref": "bob/iris", "title": "Iris", "totalBytes": 3858, "lastUpdated": "2023-11-20T08:30:00Z"},
	})
}

func (f *fakeKaggle) downloadDataset(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{"train.csv": "id,survived\n1,0\n", "test.csv": "id\n2\n"} {
		fw, _ := zw.Create(name)
		_, _ = io.WriteString(fw, body)
	}
	_ = zw.Close()

	w.Header().Set("Content-Type", "application/zip")
	_, _ = w.Write(buf.Bytes())
}

func (f *fakeKaggle) submitURL(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"createUrl": f.srv.URL + "/upload/storage/guid-123/" + r.PathValue("size") + "/" + r.PathValue("mtime"),
		"token":     "unused",
	})
}

func (f *fakeKaggle) upload(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("guid") != "guid-123" {
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "unknown upload"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	defer file.Close()

	f.uploaded, _ = io.ReadAll(file)
	respondJSON(w, http.StatusOK, map[string]string{"token": "blob-token"})
}

func (f *fakeKaggle) submit(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("blobFileTokens") != "blob-token" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "bad token"})
		return
	}

	f.submitted = r.FormValue("submissionDescription")
	respondJSON(w, http.StatusOK, map[string]any{"message": "Successfully submitted", "ref": 42})
}

func (f *fakeKaggle) pullKernel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	respondJSON(w, http.StatusOK, map[string]any{
		"metadata": map[string]any{"ref": q.Get("userName") + "/" + q.Get("kernelSlug"), "title": "EDA"},
		"blob": map[string]any{
			"kernelType": "script",
			"language":   "python",
			"slug":       q.Get("kernelSlug"),
			"source":     "print('hello')\n",
		},
	})
}

func (f *fakeKaggle) kernelOutput(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"files": []map[string]any{
			{"fileName": "submission.csv", "url": f.srv.URL + "/storage/submission.csv"},
			{"fileName": "plots/loss.txt", "url": map[string]string{"content": f.srv.URL + "/storage/loss.txt"}},
		},
		"log": "[{\"data\":\"done\"}]",
	})
}

func (f *fakeKaggle) storage(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "credentials must not be sent to storage"})
		return
	}

	_, _ = io.WriteString(w, "content of "+r.PathValue("name"))
}

// -------------------------------------------------------------------------
// Tests
// -------------------------------------------------------------------------

func TestE2E_ListDatasets(t *testing.T) {
	f := newFakeKaggle(t)
	c := newClient(t, f)

	got, err := c.ListDatasets(t.Context(), kaggle.DatasetListOptions{Search: "titanic"})
	if err != nil {
		t.Fatalf("listing datasets: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("exp 2 datasets; got: %d", len(got))
	}
	if got[0].Ref != "alice/titanic" || got[0].LastUpdated.Year() != 2024 {
		t.Errorf("exp alice/titanic updated 2024; got: %s %v", got[0].Ref, got[0].LastUpdated)
	}
}

func TestE2E_DownloadAndExtract(t *testing.T) {
	f := newFakeKaggle(t)
	c := newClient(t, f, kaggle.WithHTTPOptions(client.WithThrottle(50, 5)))

	dir := t.TempDir()
	res, err := c.DownloadDataset(t.Context(), kaggle.Slug{Owner: "alice", Name: "titanic"}, kaggle.DownloadOptions{
		Dir:           dir,
		Extract:       true,
		RemoveArchive: true,
	})
	if err != nil {
		t.Fatalf("downloading: %v", err)
	}

	if len(res.Extracted) != 2 || !res.Removed {
		t.Errorf("exp 2 extracted files and archive removed; got: %+v", res)
	}

	b, err := os.ReadFile(filepath.Join(dir, "train.csv"))
	if err != nil {
		t.Fatalf("reading extracted file: %v", err)
	}
	if string(b) != "id,survived\n1,0\n" {
		t.Errorf("exp train.csv content; got: %q", b)
	}
}

func TestE2E_Submit(t *testing.T) {
	f := newFakeKaggle(t)
	c := newClient(t, f)

	path := filepath.Join(t.TempDir(), "submission.csv")
	if err := os.WriteFile(path, []byte("id,survived\n2,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := c.Submit(t.Context(), "titanic", path, "first try")
	if err != nil {
		t.Fatalf("submitting: %v", err)
	}

	if res.Ref != 42 {
		t.Errorf("exp ref 42; got: %d", res.Ref)
	}
	if string(f.uploaded) != "id,survived\n2,1\n" {
		t.Errorf("exp uploaded file content; got: %q", f.uploaded)
	}
	if f.submitted != "first try" {
		t.Errorf("exp description %q; got: %q", "first try", f.submitted)
	}
}

func TestE2E_Kernels(t *testing.T) {
	f := newFakeKaggle(t)
	c := newClient(t, f)

	slug := kaggle.Slug{Owner: "alice", Name: "eda"}
	dir := t.TempDir()

	path, err := c.SaveKernel(t.Context(), slug, dir)
	if err != nil {
		t.Fatalf("saving kernel: %v", err)
	}
	if filepath.Base(path) != "eda.py" {
		t.Errorf("exp eda.py; got: %s", path)
	}

	paths, err := c.DownloadKernelOutput(t.Context(), slug, kaggle.DownloadOptions{Dir: dir})
	if err != nil {
		t.Fatalf("downloading output: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("exp 2 files and a log; got: %v", paths)
	}

	b, err := os.ReadFile(filepath.Join(dir, "plots", "loss.txt"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(b) != "content of loss.txt" {
		t.Errorf("exp storage content; got: %q", b)
	}
}

func TestE2E_ErrorHandling(t *testing.T) {
	f := newFakeKaggle(t)

	c, err := kaggle.New(
		kaggle.WithCredentials(credentials.Static(user, "wrong")),
		kaggle.WithBaseURL(f.srv.URL+"/api/v1"),
	)
	if err != nil {
		t.Fatalf("building client: %v", err)
	}

	_, err = c.ListDatasets(t.Context(), kaggle.DatasetListOptions{})
	if !errors.Is(err, kaggle.ErrAuth) {
		t.Fatalf("exp ErrAuth; got: %v", err)
	}

	var se *kaggle.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("exp *StatusError; got %T", err)
	}
	if !strings.Contains(se.Body, "Unauthorized") {
		t.Errorf("exp body to carry the server message; got: %q", se.Body)
	}

	_, err = newClient(t, f).ViewDataset(t.Context(), kaggle.Slug{Owner: "alice", Name: "missing"})
	if !errors.Is(err, kaggle.ErrNotFound) {
		t.Errorf("exp ErrNotFound; got: %v", err)
	}
}

// TestE2E_Live talks to the real API. It runs only when KAGGLE_E2E_LIVE
// is set and credentials are available from the usual places.
func TestE2E_Live(t *testing.T) {
	if os.Getenv("KAGGLE_E2E_LIVE") == "" {
		t.Skip("KAGGLE_E2E_LIVE not set")
	}

	c, err := kaggle.New()
	if err != nil {
		t.Fatalf("building client: %v", err)
	}

	got, err := c.ListCompetitions(t.Context(), kaggle.CompetitionListOptions{Search: "titanic"})
	if err != nil {
		t.Fatalf("listing competitions: %v", err)
	}
	if len(got) == 0 {
		t.Error("exp at least one competition for titanic")
	}

	t.Logf("authenticated as %s, %d competitions", c.Username(), len(got))
}
