// Package archive extracts downloaded zip and gzip-compressed tar archives,
// and packs directories for upload.
//
// The container format is detected from the content, never from the file
// name. Every entry path is checked before anything is written for it, so
// an archive cannot place files outside the destination directory:
//
//	files, err := archive.Extract("titanic.zip", "data/titanic")
//	if errors.Is(err, archive.ErrUnsafePath) {
//		// the archive tried to escape data/titanic
//	}
package archive
