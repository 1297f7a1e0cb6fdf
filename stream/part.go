package stream

import (
	"errors"
	"io"
	"strings"
)

// Part is one body part of a multipart stream. Content reads directly from
// the session and is valid only until the session advances.
type Part struct {
	Header  Header
	Content io.Reader

	index   int
	session *Session
	body    *contentReader
	closed  bool
}

// Index is the zero-based position of the part in the stream.
func (p *Part) Index() int {
	return p.index
}

// ContentType returns the part's content-type header.
func (p *Part) ContentType() string {
	return p.Header.Get("content-type")
}

// ContentID returns the part's content-id with angle brackets and any
// "cid:" prefix removed.
func (p *Part) ContentID() string {
	return NormalizeContentID(p.Header.Get("content-id"))
}

// Size reports the content bytes read so far.
func (p *Part) Size() int64 {
	return p.body.n
}

// Close discards any unread content and releases the part. It is safe to
// call more than once. Close returns a transport error hit while draining.
func (p *Part) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var err error
	if p.session.current == p {
		_, err = io.Copy(io.Discard, p.body)
		p.session.current = nil
	}
	p.body.release()
	p.session.collector.IncPartsReleased()
	p.session.logger.Debug("part released", map[string]any{
		"index":      p.index,
		"size_bytes": p.body.n,
	})
	return err
}

// NormalizeContentID strips whitespace, a "cid:" prefix, and angle
// brackets so that Content-ID headers and cid: references compare equal.
func NormalizeContentID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "cid:")
	id = strings.TrimPrefix(id, "<")
	return strings.TrimSuffix(id, ">")
}

// contentReader yields a part's bytes. In multipart mode it holds back one
// line so that the line break preceding a delimiter can be dropped.
type contentReader struct {
	s       *Session
	part    *Part
	raw     bool
	pending []byte
	held    []byte
	err     error
	n       int64
}

func (c *contentReader) Read(b []byte) (int, error) {
	for len(c.pending) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		c.fill()
	}
	n := copy(b, c.pending)
	c.pending = c.pending[n:]
	c.n += int64(n)
	c.s.collector.AddBytesRead(int64(n))
	return n, nil
}

// fill pulls one line from the session into pending, or sets err.
func (c *contentReader) fill() {
	if c.s.current != c.part || c.s.state != stateInPart {
		c.err = io.EOF
		return
	}

	line, err := c.s.ReadNextLine()
	if err != nil {
		c.pending, c.held = c.held, nil
		c.s.state = stateDone
		switch {
		case c.raw && errors.Is(err, io.EOF):
			c.err = io.EOF
		case errors.Is(err, io.EOF):
			c.err = io.ErrUnexpectedEOF
		default:
			c.err = err
		}
		return
	}

	if c.raw {
		c.pending = line
		return
	}
	if c.s.state != stateInPart {
		c.pending, c.held = trimEOL(c.held), nil
		c.err = io.EOF
		return
	}
	c.pending, c.held = c.held, line
}

func (c *contentReader) release() {
	c.pending, c.held = nil, nil
	if c.err == nil {
		c.err = io.EOF
	}
}
