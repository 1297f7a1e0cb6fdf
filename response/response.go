// Package response binds HTTP responses to multipart stream sessions.
//
// New adapts any response: multipart bodies are scanned part by part,
// anything else is exposed as a single part. NewXOP additionally requires
// an XOP package (multipart/related with an application/xop+xml root) and
// loads the root part, the manifest, before returning.
package response

import (
	"net/http"

	"github.com/pithecene-io/mimestream/contenttype"
	"github.com/pithecene-io/mimestream/lines"
	"github.com/pithecene-io/mimestream/stream"
)

// LineDelimiter splits response bodies into lines.
const LineDelimiter = '\n'

// Streamer is a multipart session over an HTTP response body.
type Streamer struct {
	*stream.Session

	// ContentType is the raw Content-Type header value.
	ContentType string
	// Params holds the parsed Content-Type for multipart responses and is
	// nil otherwise.
	Params contenttype.Params
}

// New creates a Streamer over resp. No body bytes are read.
//
// A response without a Content-Type header fails with ErrNoContentType.
// A multipart Content-Type that cannot be parsed fails with the
// tokenizer's *contenttype.ParseError; one without a boundary fails with
// an error wrapping contenttype.ErrMissingParam.
func New(resp *http.Response, opts ...stream.Option) (*Streamer, error) {
	values := resp.Header.Values("Content-Type")
	if len(values) == 0 {
		return nil, ErrNoContentType
	}
	ct := values[0]

	var (
		params   contenttype.Params
		boundary string
	)
	if contenttype.IsMultipart(ct) {
		var err error
		if params, err = contenttype.Parse(ct); err != nil {
			return nil, err
		}
		if boundary, err = params.Require(contenttype.KeyBoundary); err != nil {
			return nil, err
		}
	}

	opts = append([]stream.Option{stream.WithContentType(ct)}, opts...)
	it := lines.NewReaderIterator(resp.Body, LineDelimiter)
	return &Streamer{
		Session:     stream.NewSession(resp.Body, boundary, it, opts...),
		ContentType: ct,
		Params:      params,
	}, nil
}

// IsMultipart reports whether the response body is scanned for parts.
func (s *Streamer) IsMultipart() bool {
	return s.Boundary() != ""
}
