// Package iox provides I/O helpers for body draining and resource cleanup.
package iox

import (
	"errors"
	"io"
)

// DiscardClose closes c and discards the error.
// Used in defers where close errors are unactionable:
//
//	defer iox.DiscardClose(resp.Body)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a cleanup function that closes c, for t.Cleanup.
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// Drain reads r to EOF and returns the number of bytes discarded.
func Drain(r io.Reader) (int64, error) {
	return io.Copy(io.Discard, r)
}

// DrainClose drains rc and closes it. The first error wins.
// HTTP bodies must be drained before close for connection reuse.
func DrainClose(rc io.ReadCloser) error {
	_, derr := Drain(rc)
	cerr := rc.Close()
	return errors.Join(derr, cerr)
}

// CountingReader wraps a reader and counts the bytes read through it.
type CountingReader struct {
	R io.Reader
	N int64
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.R.Read(p)
	c.N += int64(n)
	return n, err
}
