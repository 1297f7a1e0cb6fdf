// Package lines provides pull-based line iteration over a transport body.
//
// An Iterator yields successive lines, each including its trailing
// delimiter when one was present. Lines longer than the iterator's buffer
// are yielded as consecutive fragments; only the final fragment carries the
// delimiter. Consumers that care about line starts (boundary detection) can
// tell a fragment apart by its missing delimiter.
package lines

import (
	"bufio"
	"errors"
	"io"
)

// DefaultBufferSize is the largest fragment a ReaderIterator yields.
const DefaultBufferSize = 64 * 1024

// Iterator yields lines one at a time. Next returns io.EOF once exhausted.
// Iterators are single-pass and not safe for concurrent use.
type Iterator interface {
	Next() ([]byte, error)
}

// ReaderIterator splits an io.Reader on a delimiter byte.
type ReaderIterator struct {
	br    *bufio.Reader
	delim byte
	err   error
}

var _ Iterator = (*ReaderIterator)(nil)

// NewReaderIterator returns an iterator over r split on delim.
func NewReaderIterator(r io.Reader, delim byte) *ReaderIterator {
	return NewReaderIteratorSize(r, delim, DefaultBufferSize)
}

// NewReaderIteratorSize is NewReaderIterator with an explicit buffer size.
func NewReaderIteratorSize(r io.Reader, delim byte, size int) *ReaderIterator {
	return &ReaderIterator{br: bufio.NewReaderSize(r, size), delim: delim}
}

// Next returns the next line. The returned slice is owned by the caller.
func (it *ReaderIterator) Next() ([]byte, error) {
	if it.err != nil {
		return nil, it.err
	}
	line, err := it.br.ReadSlice(it.delim)
	switch {
	case err == nil, errors.Is(err, bufio.ErrBufferFull):
		return clone(line), nil
	case len(line) > 0:
		// Deliver the trailing data now, the error on the next call.
		it.err = err
		return clone(line), nil
	default:
		it.err = err
		return nil, err
	}
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
