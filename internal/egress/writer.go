// Package egress is the concrete "output byte-stream writing and
// flushing" collaborator named out-of-scope in spec §1: it wraps an
// io.Writer (stdout or a file) and flushes after every record so
// downstream pipe readers see output in real time (spec §4.5, §6.2).
package egress

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Writer flushes after every Write, trading a little throughput for the
// real-time delivery spec §4.5 requires.
type Writer struct {
	bw *bufio.Writer
	c  io.Closer
}

// Open returns a Writer over path, or over stdout if path is "-" or empty.
func Open(path string) (*Writer, error) {
	if path == "" || path == "-" {
		return &Writer{bw: bufio.NewWriter(os.Stdout)}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open egress output")
	}
	return &Writer{bw: bufio.NewWriter(f), c: f}, nil
}

// WriteLine writes line and flushes immediately. A write or flush failure
// is fatal per spec §7 ("the process cannot usefully continue,
// terminate"); the caller is expected to stop the pipeline on error.
func (w *Writer) WriteLine(line string) error {
	if _, err := w.bw.WriteString(line); err != nil {
		return errors.Wrap(err, "write egress line")
	}
	if err := w.bw.Flush(); err != nil {
		return errors.Wrap(err, "flush egress output")
	}
	return nil
}

// Close flushes and releases the underlying file, if any.
func (w *Writer) Close() error {
	err := w.bw.Flush()
	if w.c != nil {
		if cerr := w.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
