package response

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/pithecene-io/mimestream/contenttype"
	"github.com/pithecene-io/mimestream/stream"
)

// Media types an XOP package must declare.
const (
	MultipartRelated = "multipart/related"
	XOPMediaType     = "application/xop+xml"
)

// XOPIncludeNamespace is the namespace of xop:Include elements.
const XOPIncludeNamespace = "http://www.w3.org/2004/08/xop/include"

// ManifestPart is the fully read root part of an XOP package.
type ManifestPart struct {
	Header  stream.Header
	Content []byte
}

// ContentType returns the manifest's content-type header.
func (m *ManifestPart) ContentType() string {
	return m.Header.Get("content-type")
}

// Includes returns the normalized content IDs referenced by xop:Include
// elements in the manifest, in document order.
func (m *ManifestPart) Includes() ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(m.Content))
	var ids []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
		el, ok := tok.(xml.StartElement)
		if !ok || el.Name.Local != "Include" || el.Name.Space != XOPIncludeNamespace {
			continue
		}
		for _, attr := range el.Attr {
			if attr.Name.Local == "href" {
				ids = append(ids, includeID(attr.Value))
			}
		}
	}
}

// XOPStreamer is a multipart session whose root part has been loaded as
// the XOP manifest. Remaining parts are pulled through the embedded
// session.
type XOPStreamer struct {
	*stream.Session

	// ContentType is the raw Content-Type header value.
	ContentType string
	// Params is the parsed Content-Type.
	Params contenttype.Params
	// Manifest is the root part, read into memory.
	Manifest ManifestPart
}

// NewXOP validates that resp carries an XOP package, skips any preamble,
// and loads the first part as the manifest. Validation of the response
// Content-Type happens before any body bytes are read.
//
// Content-type violations fail with *InvalidContentTypeError. Errors from
// the adapter and the session, including io.EOF when the body ends before
// the first boundary, are returned unchanged. No XOPStreamer is returned
// on failure.
func NewXOP(resp *http.Response, opts ...stream.Option) (*XOPStreamer, error) {
	base, err := New(resp, opts...)
	if err != nil {
		return nil, err
	}
	x := &XOPStreamer{
		Session:     base.Session,
		ContentType: base.ContentType,
		Params:      base.Params,
	}
	if err := x.validate(); err != nil {
		x.Collector().IncInvalidContentTypes()
		return nil, err
	}
	if err := x.loadManifest(); err != nil {
		var ict *InvalidContentTypeError
		if errors.As(err, &ict) {
			x.Collector().IncInvalidContentTypes()
		}
		return nil, err
	}
	return x, nil
}

func (x *XOPStreamer) validate() error {
	if mt := x.Params.MimeType(); !strings.EqualFold(mt, MultipartRelated) {
		return &InvalidContentTypeError{Msg: MsgNotMultipartRelated, Got: x.ContentType}
	}
	if t := x.Params[contenttype.KeyType]; !strings.EqualFold(t, XOPMediaType) {
		return &InvalidContentTypeError{Msg: MsgNotXOP, Got: t}
	}
	return nil
}

func (x *XOPStreamer) loadManifest() error {
	var line []byte
	for !x.IsBoundary(line) {
		var err error
		if line, err = x.ReadNextLine(); err != nil {
			return err
		}
	}

	var manifest ManifestPart
	err := x.WithNextPart(func(p *stream.Part) error {
		content, err := io.ReadAll(p.Content)
		if err != nil {
			return err
		}
		manifest = ManifestPart{Header: p.Header, Content: content}
		return nil
	})
	if err != nil {
		return err
	}

	// The part's own type may carry parameters, so only its prefix counts.
	if ct := manifest.ContentType(); !contenttype.HasPrefixFold(ct, XOPMediaType) {
		return &InvalidContentTypeError{Msg: MsgNotXOP, Got: ct}
	}
	x.Manifest = manifest
	x.Collector().IncManifestsLoaded()
	id := stream.NormalizeContentID(manifest.Header.Get("content-id"))
	x.Logger().Debug("manifest loaded", map[string]any{
		"size_bytes": len(manifest.Content),
		"content_id": id,
	})
	// The first part is always taken as the root; start is advisory.
	if start := x.Params[contenttype.KeyStart]; start != "" && stream.NormalizeContentID(start) != id {
		x.Logger().Warn("manifest content-id does not match start parameter", map[string]any{
			"start":      stream.NormalizeContentID(start),
			"content_id": id,
		})
	}
	return nil
}

// includeID turns a cid: URL into the form returned by Part.ContentID.
// cid: URLs are percent-encoded; an undecodable href is used as is.
func includeID(href string) string {
	id := strings.TrimSpace(href)
	if contenttype.HasPrefixFold(id, "cid:") {
		id = id[len("cid:"):]
	}
	if decoded, err := url.PathUnescape(id); err == nil {
		id = decoded
	}
	return stream.NormalizeContentID(id)
}

// Attachments iterates over the parts following the manifest.
func (x *XOPStreamer) Attachments() iter.Seq2[*stream.Part, error] {
	return x.Parts()
}
