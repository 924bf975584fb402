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

	"github.com/google/uuid"
)

// Pack archives the contents of srcDir into dest plus the extension of
// format, e.g. "upload" becomes "upload.zip". Entry names are relative to
// srcDir. The archive is written to a temporary file and renamed into
// place, and is never included in itself. The final path is returned.
func Pack(srcDir, dest string, format Format) (string, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return "", &Error{Path: srcDir, Err: err}
	}
	if !info.IsDir() {
		return "", &Error{Path: srcDir, Err: errors.New("not a directory")}
	}

	var pack func(w io.Writer, srcDir string, skip func(string) bool) error
	switch format {
	case FormatZip:
		pack = packZip
	case FormatTarGz:
		pack = packTarGz
	default:
		return "", &Error{Path: srcDir, Err: fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)}
	}

	finalPath := dest + format.Ext()
	tmpPath := filepath.Join(filepath.Dir(finalPath), ".kaggle-pack-"+uuid.NewString())

	absFinal, _ := filepath.Abs(finalPath)
	absTmp, _ := filepath.Abs(tmpPath)
	skip := func(path string) bool {
		abs, err := filepath.Abs(path)
		return err == nil && (abs == absFinal || abs == absTmp)
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), dirMode); err != nil {
		return "", &Error{Path: finalPath, Err: err}
	}

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", &Error{Path: finalPath, Err: err}
	}

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := pack(f, srcDir, skip); err != nil {
		return "", &Error{Path: finalPath, Err: err}
	}

	if err := f.Close(); err != nil {
		return "", &Error{Path: finalPath, Err: err}
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", &Error{Path: finalPath, Err: err}
	}
	success = true

	return finalPath, nil
}

func packZip(w io.Writer, srcDir string, skip func(string) bool) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if skip(path) {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = name

		if d.IsDir() {
			hdr.Name += "/"
			_, err := zw.CreateHeader(hdr)
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		hdr.Method = zip.Deflate
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}

		return copyFile(fw, path)
	})
	if err != nil {
		return fmt.Errorf("writing zip: %w", err)
	}

	return zw.Close()
}

func packTarGz(w io.Writer, srcDir string, skip func(string) bool) error {
	gw := gzip.NewWriter(w)
	tw := tar.NewWriter(gw)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if skip(path) {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !d.IsDir() && !info.Mode().IsRegular() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		return copyFile(tw, path)
	})
	if err != nil {
		return fmt.Errorf("writing tar: %w", err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar: %w", err)
	}

	return gw.Close()
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
