// Package adapter defines the notification boundary for finished
// extractions.
//
// Adapters publish an ExtractionCompletedEvent to a downstream system once
// the xop or split commands have persisted their parts.
package adapter

import (
	"context"
	"time"

	"github.com/pithecene-io/mimestream/types"
)

// EventTypeExtractionCompleted is the event_type of every published event.
const EventTypeExtractionCompleted = "extraction_completed"

// Outcomes.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidContentType = "invalid_content_type"
	OutcomeStorageError       = "storage_error"
	OutcomeStreamError        = "stream_error"
)

// ExtractionCompletedEvent is the payload published when an extraction ends.
type ExtractionCompletedEvent struct {
	ContractVersion string `json:"contract_version"`
	EventType       string `json:"event_type"` // always "extraction_completed"
	ExtractionID    string `json:"extraction_id"`
	Source          string `json:"source"`
	URL             string `json:"url"`
	Day             string `json:"day"`
	Mode            string `json:"mode"`    // xop or split
	Outcome         string `json:"outcome"` // success, invalid_content_type, ...
	ContentType     string `json:"content_type"`
	StoragePath     string `json:"storage_path,omitempty"`
	Timestamp       string `json:"timestamp"` // RFC 3339
	PartCount       int    `json:"part_count"`
	ManifestBytes   int    `json:"manifest_bytes,omitempty"`
	BytesRead       int64  `json:"bytes_read"`
	DurationMs      int64  `json:"duration_ms"`
}

// NewEvent builds an event for meta, stamped at now.
func NewEvent(meta *types.ExtractionMeta, mode, outcome string, now time.Time) *ExtractionCompletedEvent {
	return &ExtractionCompletedEvent{
		ContractVersion: types.Version,
		EventType:       EventTypeExtractionCompleted,
		ExtractionID:    meta.ExtractionID,
		Source:          meta.Source,
		URL:             meta.URL,
		Day:             meta.Day(),
		Mode:            mode,
		Outcome:         outcome,
		Timestamp:       now.UTC().Format(time.RFC3339),
		DurationMs:      now.Sub(meta.StartedAt).Milliseconds(),
	}
}

// Adapter publishes extraction events to a downstream system.
type Adapter interface {
	// Publish sends an event. Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *ExtractionCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
