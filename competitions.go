package kaggle

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/adamwoolhether/kaggle/client"
)

// ListCompetitions searches competitions.
func (c *Client) ListCompetitions(ctx context.Context, opts CompetitionListOptions) ([]Competition, error) {
	q, err := opts.values()
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}

	return fetch[[]Competition](ctx, c, "competitions.list", http.MethodGet, c.endpoint([]string{"competitions", "list"}, q))
}

// ListCompetitionFiles lists the data files of a competition.
func (c *Client) ListCompetitionFiles(ctx context.Context, id string) ([]File, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"competitions", "data", "list", id}, nil)

	return fetch[[]File](ctx, c, "competitions.files", http.MethodGet, u)
}

// DownloadCompetitionFile downloads one data file of a competition.
func (c *Client) DownloadCompetitionFile(ctx context.Context, id, fileName string, opts DownloadOptions) (*DownloadResult, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := checkFileName(fileName); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"competitions", "data", "download", id, fileName}, nil)

	return c.download(ctx, "competitions.download.file", u, fileName, false, opts)
}

// DownloadCompetitionFiles downloads all data files of a competition as
// <Dir>/<id>.zip.
func (c *Client) DownloadCompetitionFiles(ctx context.Context, id string, opts DownloadOptions) (*DownloadResult, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"competitions", "data", "download-all", id}, nil)

	return c.download(ctx, "competitions.download", u, id+".zip", true, opts)
}

// ListSubmissions lists the caller's submissions to a competition.
// page starts at 1; values below 1 request the first page.
func (c *Client) ListSubmissions(ctx context.Context, id string, page int) ([]Submission, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"competitions", "submissions", "list", id}, pageQuery(page))

	return fetch[[]Submission](ctx, c, "competitions.submissions", http.MethodGet, u)
}

// ViewLeaderboard returns the public leaderboard of a competition.
func (c *Client) ViewLeaderboard(ctx context.Context, id string) ([]LeaderboardEntry, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"competitions", id, "leaderboard", "view"}, nil)

	lb, err := fetch[leaderboard](ctx, c, "competitions.leaderboard", http.MethodGet, u)
	if err != nil {
		return nil, err
	}

	return lb.Submissions, nil
}

// DownloadLeaderboard downloads the full leaderboard as <Dir>/<id>.zip.
func (c *Client) DownloadLeaderboard(ctx context.Context, id string, opts DownloadOptions) (*DownloadResult, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	u := c.endpoint([]string{"competitions", id, "leaderboard", "download"}, nil)

	return c.download(ctx, "competitions.leaderboard.download", u, id+"-leaderboard.zip", true, opts)
}

// Submit uploads the file at path to a competition and submits it with
// message. It makes three requests: one for an upload location, one
// carrying the file, and one creating the submission from the upload's
// token.
func (c *Client) Submit(ctx context.Context, id, path, message string) (_ *SubmitResult, err error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	ctx, span := c.startSpan(ctx, "competitions.submit", attribute.String("kaggle.competition", id))
	defer func() { endSpan(span, err) }()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("competitions.submit: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("competitions.submit: %w: %s is a directory", ErrValidation, path)
	}

	size := strconv.FormatInt(info.Size(), 10)
	mtime := strconv.FormatInt(info.ModTime().Unix(), 10)
	name := filepath.Base(path)

	u := c.endpoint([]string{"competitions", id, "submissions", "url", size, mtime}, nil)

	loc, err := fetch[submitLocation](ctx, c, "competitions.submit.url", http.MethodPost, u, client.WithFormField("fileName", name))
	if err != nil {
		return nil, err
	}

	guid, err := uploadGUID(loc.CreateURL)
	if err != nil {
		return nil, fmt.Errorf("competitions.submit: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("competitions.submit: %w", err)
	}
	defer f.Close()

	u = c.endpoint([]string{"competitions", "submissions", "upload", guid, size, mtime}, nil)

	up, err := fetch[UploadResult](ctx, c, "competitions.submit.upload", http.MethodPost, u, client.WithFormFile("file", name, f))
	if err != nil {
		return nil, err
	}

	u = c.endpoint([]string{"competitions", "submissions", "submit", id}, nil)

	res, err := fetch[SubmitResult](ctx, c, "competitions.submit.create", http.MethodPost, u,
		client.WithFormField("blobFileTokens", up.Token),
		client.WithFormField("submissionDescription", message),
	)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// uploadGUID extracts the upload id from a create URL of the form
// .../{guid}/{contentLength}/{lastModified}.
func uploadGUID(createURL string) (string, error) {
	u, err := url.Parse(createURL)
	if err != nil {
		return "", fmt.Errorf("%w: create url: %w", ErrDecode, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[len(parts)-3] == "" {
		return "", fmt.Errorf("%w: create url %q has no upload id", ErrDecode, createURL)
	}

	return parts[len(parts)-3], nil
}
