// Package stream implements a forward-only, line-at-a-time multipart
// scanner.
//
// A Session pulls lines from a lines.Iterator and recognizes delimiter
// lines for its boundary. Parts are handed out one at a time; a part's
// content streams straight from the underlying lines and becomes
// unreachable once the session moves past it.
//
//	s := stream.NewSession(resp.Body, boundary, lines.NewReaderIterator(resp.Body, '\n'))
//	for part, err := range s.Parts() {
//		...
//	}
package stream

import (
	"bytes"
	"errors"
	"io"
	"iter"

	"github.com/pithecene-io/mimestream/lines"
	"github.com/pithecene-io/mimestream/log"
	"github.com/pithecene-io/mimestream/metrics"
)

type state int

const (
	stateSeeking state = iota
	stateAtBoundary
	stateInPart
	stateDone
)

type lineKind int

const (
	kindContent lineKind = iota
	kindDelimiter
	kindClose
)

// Session is a multipart scanning cursor over a line sequence.
// A Session is not safe for concurrent use.
type Session struct {
	source   io.Closer
	boundary string
	dash     []byte
	it       lines.Iterator

	logger         *log.Logger
	collector      *metrics.Collector
	contentType    string
	maxHeaderBytes int

	state     state
	lineStart bool
	lastKind  lineKind
	current   *Part
	parts     int
	served    bool
}

// NewSession creates a session over it. An empty boundary treats the whole
// body as a single part. source is closed by Session.Close and may be nil.
func NewSession(source io.Closer, boundary string, it lines.Iterator, opts ...Option) *Session {
	s := &Session{
		source:         source,
		boundary:       boundary,
		it:             it,
		logger:         log.Nop(),
		maxHeaderBytes: DefaultMaxHeaderBytes,
		lineStart:      true,
	}
	if boundary != "" {
		s.dash = []byte("--" + boundary)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Boundary returns the boundary token, or "" for a non-multipart body.
func (s *Session) Boundary() string {
	return s.boundary
}

// Logger returns the session logger.
func (s *Session) Logger() *log.Logger {
	return s.logger
}

// Collector returns the session's metrics collector, possibly nil.
func (s *Session) Collector() *metrics.Collector {
	return s.collector
}

// ReadNextLine returns the next raw line, including its line break.
// It returns io.EOF once the line sequence is exhausted. Reading a
// delimiter line moves the session to the following part's header block.
func (s *Session) ReadNextLine() ([]byte, error) {
	line, err := s.it.Next()
	if err != nil {
		return nil, err
	}
	fresh := s.lineStart
	s.lineStart = len(line) > 0 && line[len(line)-1] == '\n'
	s.lastKind = kindContent
	s.collector.IncLinesRead()

	if !fresh || s.dash == nil {
		return line, nil
	}
	s.lastKind = s.classify(line)
	switch s.lastKind {
	case kindDelimiter:
		s.collector.IncBoundariesSeen()
		if s.state != stateDone {
			s.state = stateAtBoundary
		}
	case kindClose:
		s.collector.IncBoundariesSeen()
		s.state = stateDone
	}
	return line, nil
}

// IsBoundary reports whether line is a delimiter or close-delimiter line
// for this session's boundary. Trailing whitespace is ignored.
func (s *Session) IsBoundary(line []byte) bool {
	return s.dash != nil && s.classify(line) != kindContent
}

func (s *Session) classify(line []byte) lineKind {
	line = bytes.TrimRight(line, " \t\r\n")
	if !bytes.HasPrefix(line, s.dash) {
		return kindContent
	}
	switch rest := line[len(s.dash):]; {
	case len(rest) == 0:
		return kindDelimiter
	case bytes.Equal(rest, []byte("--")):
		return kindClose
	default:
		return kindContent
	}
}

// NextPart advances to the next part and returns it with its header block
// parsed. Unread content of the current part is discarded. NextPart
// returns io.EOF after the close delimiter or the end of the body.
func (s *Session) NextPart() (*Part, error) {
	if s.current != nil {
		if err := s.current.Close(); err != nil {
			return nil, err
		}
	}
	if s.dash == nil {
		return s.wholeBody()
	}
	if s.state == stateSeeking {
		if err := s.skipPreamble(); err != nil {
			return nil, err
		}
	}
	if s.state != stateAtBoundary {
		return nil, io.EOF
	}

	header, err := s.readHeader()
	if err != nil {
		return nil, err
	}
	return s.open(header, false), nil
}

func (s *Session) open(header Header, raw bool) *Part {
	p := &Part{Header: header, index: s.parts, session: s}
	p.body = &contentReader{s: s, part: p, raw: raw}
	p.Content = p.body
	s.parts++
	s.state = stateInPart
	s.current = p
	s.collector.IncPartsOpened()
	s.logger.Debug("part opened", map[string]any{
		"index":        p.index,
		"content_type": p.ContentType(),
	})
	return p
}

func (s *Session) wholeBody() (*Part, error) {
	if s.served {
		return nil, io.EOF
	}
	s.served = true
	header := Header{}
	if s.contentType != "" {
		header["content-type"] = s.contentType
	}
	return s.open(header, true), nil
}

func (s *Session) skipPreamble() error {
	var skipped int64
	defer func() {
		s.collector.AddPreambleLines(skipped)
		if skipped > 0 {
			s.logger.Debug("preamble skipped", map[string]any{"lines": skipped})
		}
	}()
	for s.state == stateSeeking {
		if _, err := s.ReadNextLine(); err != nil {
			s.state = stateDone
			return err
		}
		if s.state == stateSeeking {
			skipped++
		}
	}
	return nil
}

// readHeader consumes lines up to and including the blank line that ends
// a header block.
func (s *Session) readHeader() (Header, error) {
	var (
		raw   []string
		total int
		cur   []byte
	)
	for {
		line, err := s.ReadNextLine()
		if err != nil {
			s.state = stateDone
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		total += len(line)
		if total > s.maxHeaderBytes {
			s.state = stateDone
			return nil, &HeaderError{Part: s.parts, Err: ErrHeaderTooLarge}
		}
		if s.lastKind != kindContent {
			// A delimiter ended the header block early.
			return nil, &HeaderError{Part: s.parts, Line: string(trimEOL(line)), Err: ErrMalformedHeader}
		}
		cur = append(cur, line...)
		if !s.lineStart {
			continue
		}
		text := string(trimEOL(cur))
		cur = cur[:0]
		if text == "" {
			return parseHeaderLines(s.parts, raw)
		}
		raw = append(raw, text)
	}
}

// WithNextPart acquires the next part, passes it to fn, and releases it
// when fn returns, whether or not fn succeeded.
func (s *Session) WithNextPart(fn func(*Part) error) (err error) {
	p, err := s.NextPart()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := p.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(p)
}

// Parts returns an iterator over the remaining parts. Iteration ends at
// io.EOF; any other error is yielded once and ends iteration. Each part
// is released when the iterator advances.
func (s *Session) Parts() iter.Seq2[*Part, error] {
	return func(yield func(*Part, error) bool) {
		for {
			p, err := s.NextPart()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

// Close releases the current part without draining it and closes the
// source.
func (s *Session) Close() error {
	if s.current != nil {
		p := s.current
		s.current = nil
		_ = p.Close()
	}
	s.state = stateDone
	if s.source == nil {
		return nil
	}
	return s.source.Close()
}
