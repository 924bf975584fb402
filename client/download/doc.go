// Package download saves HTTP response bodies to disk.
//
// [Save] streams into a partial file beside the destination and renames
// it into place only after the byte count and optional checksum match:
//
//	src := download.Source{Body: resp.Body, Size: resp.ContentLength}
//	err := download.Save(ctx, src, "titanic.zip", logger,
//		download.WithChecksum(sha256.New(), expectedHex),
//		download.WithSkipExisting(),
//	)
//
// A failed or cancelled download never leaves a file at the destination.
// Most callers go through [github.com/adamwoolhether/kaggle/client], which
// re-exports these options.
package download
