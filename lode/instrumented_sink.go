package lode

import (
	"context"
	"io"

	"github.com/pithecene-io/mimestream/metrics"
	"github.com/pithecene-io/mimestream/types"
)

// InstrumentedSink wraps a Sink and counts each PutPart and WriteIndex
// call as one storage write success or failure.
type InstrumentedSink struct {
	inner     Sink
	collector *metrics.Collector
}

// NewInstrumentedSink wraps inner with metrics.
func NewInstrumentedSink(inner Sink, collector *metrics.Collector) *InstrumentedSink {
	return &InstrumentedSink{inner: inner, collector: collector}
}

func (s *InstrumentedSink) record(err error) {
	if err != nil {
		s.collector.IncStorageWriteFailure()
		return
	}
	s.collector.IncStorageWriteSuccess()
}

// PutPart implements Sink.
func (s *InstrumentedSink) PutPart(ctx context.Context, filename string, body io.Reader) (string, error) {
	p, err := s.inner.PutPart(ctx, filename, body)
	s.record(err)
	return p, err
}

// WriteIndex implements Sink.
func (s *InstrumentedSink) WriteIndex(ctx context.Context, records []*types.PartRecord) error {
	err := s.inner.WriteIndex(ctx, records)
	s.record(err)
	return err
}

// Close implements Sink.
func (s *InstrumentedSink) Close() error {
	return s.inner.Close()
}

var _ Sink = (*InstrumentedSink)(nil)
