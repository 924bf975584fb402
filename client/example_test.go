package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adamwoolhether/kaggle/client"
)

func ExampleBuild() {
	c, err := client.Build(
		client.WithTimeout(10*time.Second),
		client.WithUserAgent("example/1.0"),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	_ = c
	fmt.Println("client built")
	// Output: client built
}

func ExampleURL() {
	base, _ := url.Parse("https://www.kaggle.com/api/v1")

	u := client.URL(base, []string{"datasets", "view", "zillow", "zecon"},
		client.WithQuery(url.Values{"page": {"1"}}),
	)

	fmt.Println(u.String())
	// Output: https://www.kaggle.com/api/v1/datasets/view/zillow/zecon?page=1
}

func ExampleRequest() {
	type payload struct {
		Title string `json:"title"`
	}

	u, _ := url.Parse("https://example.com/datasets/create/new")

	req, err := client.Request(context.Background(), u, http.MethodPost,
		client.WithPayload(payload{Title: "houses"}),
		client.WithBasicAuth("alice", "secret"),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	user, _, _ := req.BasicAuth()
	fmt.Println(req.Method, req.URL.Path, user)
	// Output: POST /datasets/create/new alice
}

func ExampleClient_Do() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"ref":"zillow/zecon"}`)
	}))
	defer ts.Close()

	c, _ := client.Build()
	u, _ := url.Parse(ts.URL)
	req, _ := client.Request(context.Background(), u, http.MethodGet)

	var resp struct{ Ref string }
	if err := c.Do(req, http.StatusOK, client.WithDestination(&resp)); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(resp.Ref)
	// Output: zillow/zecon
}

func ExampleClient_Do_notFound() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":404}`, http.StatusNotFound)
	}))
	defer ts.Close()

	c, _ := client.Build()
	u, _ := url.Parse(ts.URL)
	req, _ := client.Request(context.Background(), u, http.MethodGet)

	err := c.Do(req, http.StatusOK)
	fmt.Println(errors.Is(err, client.ErrNotFound), errors.Is(err, client.ErrUnexpectedStatusCode))
	// Output: true false
}

func ExampleClient_DownloadDir() {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="train.csv"`)
		fmt.Fprint(w, "id,label\n1,0\n")
	}))
	defer ts.Close()

	dir, _ := os.MkdirTemp("", "example-*")
	defer os.RemoveAll(dir)

	c, _ := client.Build()
	u, _ := url.Parse(ts.URL)
	req, _ := client.Request(context.Background(), u, http.MethodGet)

	path, err := c.DownloadDir(req, http.StatusOK, dir, "fallback.bin")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(filepath.Base(path))
	// Output: train.csv
}
