// Package throttle provides an [http.RoundTripper] that rate-limits
// outbound HTTP requests using a token-bucket algorithm from
// [golang.org/x/time/rate].
//
// The Kaggle API answers bursts with 429 responses; a client that issues
// many calls can opt in to throttling to stay under that limit instead of
// handling [github.com/adamwoolhether/kaggle/client.ErrRateLimited].
//
// # Usage
//
// Wrap an existing transport with [NewRoundTripper]:
//
//	rt, err := throttle.NewRoundTripper(
//		10,  // requests per second
//		5,   // burst capacity
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// When the rate limit is exceeded, outbound requests block until a
// token becomes available or the request context is cancelled. After a
// 429 response, later requests also wait out its Retry-After.
package throttle
