// Package lode persists extracted parts with Lode.
//
// Part bodies are written as plain objects through lode.Store under a
// Hive-partitioned prefix; the part index is written as JSONL records
// through a lode.Dataset with the same partition keys
// (source/day/extraction_id).
package lode

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/pithecene-io/mimestream/types"
)

// DefaultDataset is the dataset ID used when none is configured.
const DefaultDataset = "mimestream"

// PartitionKeys are the Hive layout keys, outermost first.
var PartitionKeys = []string{"source", "day", "extraction_id"}

// DeriveDay computes the partition day (YYYY-MM-DD, UTC).
func DeriveDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Config holds the partition values for one extraction.
type Config struct {
	// Dataset is the Lode dataset ID.
	Dataset string
	// Source is the caller-chosen origin label.
	Source string
	// Day is the partition day derived from the extraction start.
	Day string
	// ExtractionID identifies the extraction.
	ExtractionID string
}

// ConfigFor derives a Config from extraction metadata.
func ConfigFor(dataset string, meta *types.ExtractionMeta) Config {
	if dataset == "" {
		dataset = DefaultDataset
	}
	source := meta.Source
	if source == "" {
		source = "default"
	}
	return Config{
		Dataset:      dataset,
		Source:       source,
		Day:          meta.Day(),
		ExtractionID: meta.ExtractionID,
	}
}

// Sink persists parts of one extraction.
type Sink interface {
	// PutPart stores a part body under filename and returns its path.
	PutPart(ctx context.Context, filename string, body io.Reader) (string, error)

	// WriteIndex appends part records to the index dataset.
	WriteIndex(ctx context.Context, records []*types.PartRecord) error

	// Close releases sink resources.
	Close() error
}

// StubSink records writes in memory for tests and dry runs.
type StubSink struct {
	mu      sync.Mutex
	Bodies  map[string][]byte
	Records []*types.PartRecord
	Closed  bool
}

// NewStubSink creates an empty StubSink.
func NewStubSink() *StubSink {
	return &StubSink{Bodies: make(map[string][]byte)}
}

// PutPart implements Sink.
func (s *StubSink) PutPart(_ context.Context, filename string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Bodies[filename] = data
	return "stub://" + filename, nil
}

// WriteIndex implements Sink.
func (s *StubSink) WriteIndex(_ context.Context, records []*types.PartRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Records = append(s.Records, records...)
	return nil
}

// Close implements Sink.
func (s *StubSink) Close() error {
	s.Closed = true
	return nil
}

var _ Sink = (*StubSink)(nil)
