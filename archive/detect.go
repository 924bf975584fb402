package archive

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

const (
	mimeZip  = "application/zip"
	mimeGzip = "application/gzip"
)

// tarBlock is the size of a tar header; its magic sits at tarMagicOffset.
const (
	tarBlock       = 512
	tarMagicOffset = 257
)

var tarMagic = []byte("ustar")

// Detect reports the format of the archive at path.
func Detect(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, &Error{Path: path, Err: err}
	}
	defer f.Close()

	format, err := DetectReader(f)
	if err != nil {
		return FormatUnknown, &Error{Path: path, Err: err}
	}

	return format, nil
}

// DetectReader reports the format of the archive read from r. Only the
// leading bytes are consumed, plus the first tar header of a gzip
// stream. A gzip stream that does not hold a tar archive, such as a
// compressed csv, is reported as ErrUnsupportedFormat.
func DetectReader(r io.Reader) (Format, error) {
	var head bytes.Buffer
	mt, err := mimetype.DetectReader(io.TeeReader(r, &head))
	if err != nil {
		return FormatUnknown, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	// Containers built on zip (jar, docx, ...) are still zip archives.
	for m := mt; m != nil; m = m.Parent() {
		switch {
		case m.Is(mimeZip):
			return FormatZip, nil
		case m.Is(mimeGzip):
			return detectTar(io.MultiReader(&head, r))
		}
	}

	return FormatUnknown, fmt.Errorf("%w: detected %s", ErrUnsupportedFormat, mt.String())
}

// detectTar reports whether the gzip stream in r starts with a tar header.
func detectTar(r io.Reader) (Format, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return FormatUnknown, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	defer gr.Close()

	block := make([]byte, tarBlock)
	n, err := io.ReadFull(gr, block)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
	case err != nil:
		return FormatUnknown, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	if n < tarBlock || !bytes.HasPrefix(block[tarMagicOffset:], tarMagic) {
		return FormatUnknown, fmt.Errorf("%w: gzip stream is not a tar archive", ErrUnsupportedFormat)
	}

	return FormatTarGz, nil
}
