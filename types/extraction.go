// Package types defines core domain types shared across mimestream packages.
//
//nolint:revive // types is a common Go package naming convention
package types

import "time"

// ExtractionMeta identifies a single pass over one multipart response.
// Every log entry, stored record, and notification carries these fields.
type ExtractionMeta struct {
	// ExtractionID is the canonical extraction identifier (UUID).
	ExtractionID string
	// URL is the source URL, or the file path for offline input.
	URL string
	// Source is a caller-chosen label used as a storage partition key.
	Source string
	// StartedAt is the extraction start time.
	StartedAt time.Time
}

// Day returns the partition day derived from StartedAt (YYYY-MM-DD, UTC).
func (m *ExtractionMeta) Day() string {
	return m.StartedAt.UTC().Format("2006-01-02")
}

// PartRecord describes one extracted multipart part.
// Used by the storage index, the frame stream, and CLI rendering.
type PartRecord struct {
	// Index is the zero-based position of the part within the body.
	Index int `json:"index" yaml:"index" msgpack:"index"`
	// ContentType is the part's own Content-Type header value.
	ContentType string `json:"content_type" yaml:"content_type" msgpack:"content_type"`
	// ContentID is the normalized Content-ID (no angle brackets, no cid: prefix).
	ContentID string `json:"content_id,omitempty" yaml:"content_id,omitempty" msgpack:"content_id,omitempty"`
	// SizeBytes is the number of content bytes read from the part.
	SizeBytes int64 `json:"size_bytes" yaml:"size_bytes" msgpack:"size_bytes"`
	// Manifest is true for the XOP manifest part.
	Manifest bool `json:"manifest,omitempty" yaml:"manifest,omitempty" msgpack:"manifest,omitempty"`
	// Path is the storage path of the part body, if it was persisted.
	Path string `json:"path,omitempty" yaml:"path,omitempty" msgpack:"path,omitempty"`
	// Header holds all part headers with lower-cased names.
	Header map[string]string `json:"header" yaml:"header" msgpack:"header"`
}
