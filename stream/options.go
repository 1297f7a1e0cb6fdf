package stream

import (
	"github.com/pithecene-io/mimestream/log"
	"github.com/pithecene-io/mimestream/metrics"
)

// DefaultMaxHeaderBytes bounds a single part's header block.
const DefaultMaxHeaderBytes = 64 * 1024

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. Nil selects log.Nop.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCollector records scanning and part metrics into c.
func WithCollector(c *metrics.Collector) Option {
	return func(s *Session) { s.collector = c }
}

// WithContentType sets the content type reported for the single part of a
// non-multipart body.
func WithContentType(ct string) Option {
	return func(s *Session) { s.contentType = ct }
}

// WithMaxHeaderBytes bounds the header block of each part.
// Values <= 0 select DefaultMaxHeaderBytes.
func WithMaxHeaderBytes(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxHeaderBytes = n
		}
	}
}
