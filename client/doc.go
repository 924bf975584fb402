// Package client provides the HTTP plumbing used by the Kaggle API client:
// request and URL construction, status classification and streaming
// downloads, built on [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("kaggle-go/1.0"),
//		client.WithThrottle(5, 10),
//	)
//
// # Making Requests
//
// Construct a [URL] from path segments and a [Request], then execute with
// [Client.Do]. Each segment is escaped on its own:
//
//	u := client.URL(base, []string{"datasets", "view", owner, name})
//	req, err := client.Request(ctx, u, http.MethodGet, client.WithBasicAuth(user, key))
//	err = c.Do(req, http.StatusOK, client.WithDestination(&dataset))
//
// A non-matching status yields an [*UnexpectedStatusError] wrapping exactly
// one of [ErrAuthFailure], [ErrNotFound], [ErrRateLimited] or
// [ErrUnexpectedStatusCode].
//
// # Downloading Files
//
// Stream a response body directly to disk with optional checksum
// verification and progress reporting:
//
//	err = c.Download(req, http.StatusOK, "/tmp/file.zip",
//		client.WithChecksum(sha256.New(), expectedHex),
//		client.WithProgress(),
//	)
//
// [Client.DownloadDir] names the file from the Content-Disposition header.
//
// For lower-level control see the
// [github.com/adamwoolhether/kaggle/client/download] package.
package client
