package archive

import (
	"errors"
	"fmt"
	"strings"
)

// Format identifies an archive container.
type Format string

// Supported formats.
const (
	FormatUnknown Format = ""
	FormatZip     Format = "zip"
	FormatTarGz   Format = "tar.gz"
)

// Ext returns the file extension for f, including the leading dot.
func (f Format) Ext() string {
	if f == FormatUnknown {
		return ""
	}
	return "." + string(f)
}

func (f Format) String() string {
	if f == FormatUnknown {
		return "unknown"
	}
	return string(f)
}

// ParseFormat accepts "zip", "tar", "tar.gz" and "tgz".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "zip":
		return FormatZip, nil
	case "tar", "tar.gz", "tgz":
		return FormatTarGz, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

var (
	// ErrArchive is matched by every [*Error].
	ErrArchive = errors.New("archive error")
	// ErrUnsafePath indicates an entry whose path would resolve outside
	// the destination directory.
	ErrUnsafePath = errors.New("unsafe entry path")
	// ErrUnsupportedFormat indicates the content is neither zip nor gzip-tar.
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	// ErrCorrupt indicates the archive could not be read.
	ErrCorrupt = errors.New("corrupt archive")
)

// Error describes a failure while reading, extracting or packing an archive.
type Error struct {
	// Path is the archive file, when known.
	Path string
	// Entry is the offending entry name, when known.
	Entry string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("archive")
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	if e.Entry != "" {
		b.WriteString(": entry " + e.Entry)
	}
	b.WriteString(": " + e.Err.Error())

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every *Error match [ErrArchive].
func (e *Error) Is(target error) bool {
	return target == ErrArchive
}
