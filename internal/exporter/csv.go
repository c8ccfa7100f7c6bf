// Package exporter writes projected frames to CSV files. A batch of tables
// is staged next to its destination and renamed into place only after every
// table was written. Replaced files are kept aside until the whole batch is
// published, so a failed run leaves previous outputs untouched.
package exporter

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"bankmarketing/pkg/records"
)

// Test seams.
var (
	createTemp = os.CreateTemp
	rename     = os.Rename
)

// Output is one table to emit.
type Output struct {
	Name  string
	File  string
	Frame *records.Frame
}

// Written describes an emitted file.
type Written struct {
	Name   string
	Path   string
	Rows   int
	Bytes  int64
	Digest uint64 // xxh3 of the file contents
}

// CSVWriter emits comma-separated files with a header row and no index.
type CSVWriter struct {
	Dir   string
	Comma rune
}

// NewCSVWriter creates a writer rooted at dir.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{Dir: dir, Comma: ','}
}

type staged struct {
	tmp  string
	prev string // replaced destination moved aside during publish
	Written
}

// WriteAll writes every output or none of them. Existing files with the
// same names are replaced. When publishing fails part way, files already
// renamed into place are rolled back to their previous contents.
func (w *CSVWriter) WriteAll(ctx context.Context, outs []Output) ([]Written, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var done []staged
	cleanup := func() {
		for _, s := range done {
			_ = os.Remove(s.tmp)
		}
	}

	for _, o := range outs {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, err
		}
		s, err := w.stage(o)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("write %s: %w", o.File, err)
		}
		done = append(done, s)
	}

	for i := range done {
		if err := publish(&done[i]); err != nil {
			rollback(done, i)
			return nil, fmt.Errorf("publish %s: %w", done[i].Path, err)
		}
	}

	res := make([]Written, 0, len(done))
	for _, s := range done {
		if s.prev != "" {
			_ = os.Remove(s.prev)
		}
		log.Printf("emit: table=%s file=%s rows=%d bytes=%d xxh3=%016x", s.Name, s.Path, s.Rows, s.Bytes, s.Digest)
		res = append(res, s.Written)
	}
	return res, nil
}

// publish moves an existing destination aside, then renames the staged file
// into place.
func publish(s *staged) error {
	if _, err := os.Lstat(s.Path); err == nil {
		prev := s.tmp + ".prev"
		if err := rename(s.Path, prev); err != nil {
			return err
		}
		s.prev = prev
	} else if !os.IsNotExist(err) {
		return err
	}
	return rename(s.tmp, s.Path)
}

// rollback undoes done[:failed] in reverse, restores the destination moved
// aside for done[failed] and drops every staged file not yet published.
func rollback(done []staged, failed int) {
	for j := failed; j >= 0; j-- {
		s := done[j]
		if j < failed {
			if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
				log.Printf("emit: rollback remove file=%s err=%v", s.Path, err)
			}
		}
		if s.prev != "" {
			if err := os.Rename(s.prev, s.Path); err != nil {
				log.Printf("emit: rollback restore file=%s err=%v", s.Path, err)
			}
		}
	}
	for _, s := range done[failed:] {
		_ = os.Remove(s.tmp)
	}
}

// stage writes o to a temporary file in w.Dir.
func (w *CSVWriter) stage(o Output) (staged, error) {
	final := filepath.Join(w.Dir, o.File)
	f, err := createTemp(w.Dir, "."+o.File+".*.tmp")
	if err != nil {
		return staged{}, err
	}
	tmp := f.Name()
	fail := func(err error) (staged, error) {
		f.Close()
		os.Remove(tmp)
		return staged{}, err
	}

	h := xxh3.New()
	cw := &countingWriter{}
	bw := bufio.NewWriterSize(io.MultiWriter(f, h, cw), 1<<16)
	if err := writeFrame(bw, w.Comma, o.Frame); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := f.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return staged{}, err
	}

	return staged{tmp: tmp, Written: Written{
		Name:   o.Name,
		Path:   final,
		Rows:   o.Frame.Len(),
		Bytes:  cw.n,
		Digest: h.Sum64(),
	}}, nil
}

// writeFrame writes the header and every row of f.
func writeFrame(dst io.Writer, comma rune, f *records.Frame) error {
	cw := csv.NewWriter(dst)
	if comma != 0 {
		cw.Comma = comma
	}
	if err := cw.Write(f.Columns); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	for r := range f.Rows {
		if err := cw.Write(f.StringRow(r)); err != nil {
			return fmt.Errorf("row %d: %w", r, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
