package cli

import (
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"
)

// progressBar returns a body wrapper that draws a byte progress bar on w,
// or nil when quiet.
func progressBar(w io.Writer, quiet bool) func(io.Reader, int64) io.Reader {
	if quiet {
		return nil
	}

	return func(r io.Reader, total int64) io.Reader {
		bar := pb.New64(max(total, 0)).
			SetTemplate(pb.Full).
			SetWriter(w).
			Set(pb.Bytes, true).
			Start()

		return &barReader{r: bar.NewProxyReader(r), bar: bar}
	}
}

// barReader finishes the bar the first time the body returns an error,
// including io.EOF.
type barReader struct {
	r    io.Reader
	bar  *pb.ProgressBar
	once sync.Once
}

func (b *barReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil {
		b.once.Do(func() { b.bar.Finish() })
	}

	return n, err
}
