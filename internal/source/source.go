// Package source opens IGRA archives and exposes them as line sequences.
//
// NCEI distributes station files as "<station>-data.txt.zip"; derived
// archives are often gzipped. Open picks the reader from the file extension.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/pgzip"
)

// Stdin is the path that makes Open read standard input.
const Stdin = "-"

const maxLineSize = 1 << 20

// ErrEmptyArchive is returned when a zip archive has no file entries.
var ErrEmptyArchive = errors.New("zip archive has no entries")

// Reader is an open archive. Close releases the file and any decompressor.
type Reader struct {
	io.Reader
	name    string
	closers []io.Closer
}

// Name is the path the archive was opened from, or the zip entry name.
func (r *Reader) Name() string { return r.name }

// Close closes the decompressor and then the underlying file.
func (r *Reader) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open opens path for reading: ".gz" files through a parallel gzip reader,
// ".zip" files by their first entry, "-" as standard input, anything else as
// plain text. Opening the same path again starts a fresh pass.
func Open(path string) (*Reader, error) {
	if path == Stdin {
		return &Reader{Reader: os.Stdin, name: "stdin"}, nil
	}

	switch {
	case strings.HasSuffix(path, ".zip"):
		return openZip(path)
	case strings.HasSuffix(path, ".gz"):
		return openGzip(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		return &Reader{Reader: f, name: path, closers: []io.Closer{f}}, nil
	}
}

func openGzip(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	zr, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip archive %s: %w", path, err)
	}
	return &Reader{Reader: zr, name: path, closers: []io.Closer{f, zr}}, nil
}

func openZip(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip archive %s: %w", path, err)
	}
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			zr.Close()
			return nil, fmt.Errorf("open zip entry %s: %w", entry.Name, err)
		}
		return &Reader{Reader: rc, name: entry.Name, closers: []io.Closer{zr, rc}}, nil
	}
	zr.Close()
	return nil, fmt.Errorf("%s: %w", path, ErrEmptyArchive)
}

// LineReader splits an io.Reader into lines without their terminators.
type LineReader struct {
	r   io.Reader
	err error
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r}
}

// Lines yields each line of the input in order. Carriage returns before the
// newline are dropped. A line longer than 1MB is cut to its first 1MB and the
// rest of it is discarded, so reading continues with the next line. Check Err
// once the sequence is exhausted.
func (l *LineReader) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		br := bufio.NewReaderSize(l.r, 64*1024)
		var buf []byte
		for {
			chunk, more, err := br.ReadLine()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					l.err = fmt.Errorf("read archive: %w", err)
				}
				return
			}
			if room := maxLineSize - len(buf); room > 0 {
				buf = append(buf, chunk[:min(len(chunk), room)]...)
			}
			if more {
				continue
			}
			line := strings.TrimSuffix(string(buf), "\r")
			buf = buf[:0]
			if !yield(line) {
				return
			}
		}
	}
}

// Err returns the first read error hit by Lines, if any.
func (l *LineReader) Err() error { return l.err }
