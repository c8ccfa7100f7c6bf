package file

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// MissingArchiveError reports an expected input archive that does not exist.
type MissingArchiveError struct {
	Path string
	Err  error
}

func (e *MissingArchiveError) Error() string {
	return fmt.Sprintf("missing archive %s", e.Path)
}

func (e *MissingArchiveError) Unwrap() error { return e.Err }

// EmptyArchiveError reports an archive that holds no file entries.
type EmptyArchiveError struct {
	Path string
}

func (e *EmptyArchiveError) Error() string {
	return fmt.Sprintf("archive %s contains no entries", e.Path)
}

// Archive is a data source backed by a zip file that holds one tabular file.
// Open returns the contents of that file.
type Archive struct {
	local *Local
}

// NewArchive binds an Archive to the zip file at path.
func NewArchive(path string) *Archive { return &Archive{local: NewLocal(path)} }

// Path returns the archive's filesystem path.
func (a *Archive) Path() string { return a.local.Path() }

// Open opens the archive and returns a reader over its first file entry, in
// central-directory order. Directory entries are skipped. When the archive
// holds more than one file the extra entries are ignored and logged.
//
// Closing the returned reader closes the archive as well.
func (a *Archive) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := a.local.openFile(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingArchiveError{Path: a.Path(), Err: err}
		}
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", a.Path(), err)
	}

	zr, err := zip.NewReader(f, st.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read zip %s: %w", a.Path(), err)
	}

	var files []*zip.File
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || strings.HasSuffix(zf.Name, "/") {
			continue
		}
		files = append(files, zf)
	}
	if len(files) == 0 {
		f.Close()
		return nil, &EmptyArchiveError{Path: a.Path()}
	}
	if len(files) > 1 {
		log.Printf("ingest: archive=%s entries=%d using=%s", filepath.Base(a.Path()), len(files), files[0].Name)
	}

	rc, err := files[0].Open()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open entry %s in %s: %w", files[0].Name, a.Path(), err)
	}
	return &entryReader{ReadCloser: rc, file: f, name: files[0].Name}, nil
}

// entryReader closes the zip entry and then the underlying archive file.
type entryReader struct {
	io.ReadCloser
	file *os.File
	name string
}

func (e *entryReader) Close() error {
	err := e.ReadCloser.Close()
	if cerr := e.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// EntryName returns the name of the archive entry being read, or "" when rc
// was not produced by Archive.Open.
func EntryName(rc io.Reader) string {
	if e, ok := rc.(*entryReader); ok {
		return e.name
	}
	return ""
}

// ArchivePaths expands pattern for indexes 0..count-1 inside dir. pattern
// must contain one %d verb, e.g. "bank-marketing-campaing-%d.csv.zip".
func ArchivePaths(dir, pattern string, count int) []string {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, filepath.Join(dir, fmt.Sprintf(pattern, i)))
	}
	return out
}
