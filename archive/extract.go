package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultFileMode = 0o644
	dirMode         = 0o755
)

// Extract unpacks the archive at src into destDir, creating destDir and
// any parent directories as needed. Existing files are overwritten unless
// [WithKeepExisting] is given. It returns the paths of the regular files
// written.
//
// An entry that would resolve outside destDir aborts extraction with
// [ErrUnsafePath] before anything is written for it. Entries already
// extracted are left on disk. Symbolic and hard links in tar archives
// are skipped.
func Extract(src, destDir string, opts ...Option) ([]string, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, &Error{Path: src, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &Error{Path: src, Err: err}
	}

	files, err := ExtractReader(f, info.Size(), destDir, opts...)
	if err != nil {
		var aErr *Error
		if errors.As(err, &aErr) && aErr.Path == "" {
			aErr.Path = src
		}
		return files, err
	}

	return files, nil
}

// ExtractReader is like [Extract] for an archive held in r, e.g. a
// [bytes.Reader].
func ExtractReader(r io.ReaderAt, size int64, destDir string, opts ...Option) ([]string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	format, err := DetectReader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, &Error{Err: err}
	}

	if err := os.MkdirAll(destDir, dirMode); err != nil {
		return nil, &Error{Err: fmt.Errorf("creating destination: %w", err)}
	}

	switch format {
	case FormatZip:
		return extractZip(r, size, destDir, o)
	case FormatTarGz:
		return extractTarGz(io.NewSectionReader(r, 0, size), destDir, o)
	default:
		return nil, &Error{Err: ErrUnsupportedFormat}
	}
}

func extractZip(r io.ReaderAt, size int64, destDir string, o options) ([]string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, &Error{Err: fmt.Errorf("%w: %w", ErrCorrupt, err)}
	}

	var files []string
	for _, zf := range zr.File {
		target, skip, err := entryPath(destDir, zf.Name)
		if err != nil {
			return files, &Error{Entry: zf.Name, Err: err}
		}
		if skip {
			continue
		}

		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(target, dirMode); err != nil {
				return files, &Error{Entry: zf.Name, Err: err}
			}
			continue
		}

		if !zf.Mode().IsRegular() || o.keep(target) {
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return files, &Error{Entry: zf.Name, Err: fmt.Errorf("%w: %w", ErrCorrupt, err)}
		}

		err = writeFile(target, rc, zf.Mode().Perm())
		rc.Close()
		if err != nil {
			return files, &Error{Entry: zf.Name, Err: err}
		}

		files = append(files, target)
	}

	return files, nil
}

func extractTarGz(r io.Reader, destDir string, o options) ([]string, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("%w: %w", ErrCorrupt, err)}
	}
	defer gr.Close()

	tr := tar.NewReader(gr)

	var files []string
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return files, &Error{Err: fmt.Errorf("%w: %w", ErrCorrupt, err)}
		}

		target, skip, err := entryPath(destDir, hdr.Name)
		if err != nil {
			return files, &Error{Entry: hdr.Name, Err: err}
		}
		if skip {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, dirMode); err != nil {
				return files, &Error{Entry: hdr.Name, Err: err}
			}
		case tar.TypeReg:
			if o.keep(target) {
				continue
			}
			if err := writeFile(target, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return files, &Error{Entry: hdr.Name, Err: err}
			}
			files = append(files, target)
		}
	}

	return files, nil
}

// entryPath resolves name inside destDir. skip is true for entries that
// name destDir itself.
func entryPath(destDir, name string) (target string, skip bool, err error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(name, "/") || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", false, ErrUnsafePath
	}

	target = filepath.Join(destDir, filepath.FromSlash(name))

	rel, err := filepath.Rel(destDir, target)
	if err != nil {
		return "", false, ErrUnsafePath
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false, ErrUnsafePath
	}
	if rel == "." {
		return "", true, nil
	}

	return target, false, nil
}

// writeFile replaces target with the contents of r.
func writeFile(target string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return err
	}

	// Never write through a link left behind at the target.
	if fi, err := os.Lstat(target); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return err
		}
	}

	if perm == 0 {
		perm = defaultFileMode
	}
	perm |= 0o600

	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return f.Close()
}
