package storage

import (
	"io"
	"sync/atomic"
)

// countingWriter wraps an io.Writer, atomically accumulating the number of
// bytes passed through. The count is only accurate once the wrapped writer
// has been flushed, since a buffered writer (bufio.Writer, csv.Writer) may
// hold bytes internally before they reach this wrapper's Write.
type countingWriter struct {
	w io.Writer
	n atomic.Uint64
}

func newCountingWriter(w io.Writer) *countingWriter {
	return &countingWriter{w: w}
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n.Add(uint64(n))
	return n, err
}

// Count returns the cumulative number of bytes written so far.
func (c *countingWriter) Count() uint64 { return c.n.Load() }
