package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/mimestream/iox"
	mlode "github.com/pithecene-io/mimestream/lode"
	"github.com/pithecene-io/mimestream/metrics"
	"github.com/pithecene-io/mimestream/types"
)

// storeFactory builds the Lode store factory for the chosen backend.
func storeFactory(ctx context.Context, s storageChoice) (lode.StoreFactory, error) {
	switch s.backend {
	case "fs", "":
		return lode.NewFSFactory(s.path), nil
	case "s3":
		bucket, prefix := mlode.ParseS3Path(s.path)
		return mlode.NewS3StoreFactory(ctx, mlode.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       s.region,
			Endpoint:     s.endpoint,
			UsePathStyle: s.pathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (must be fs or s3)", s.backend)
	}
}

// partStore persists the parts of one extraction and remembers what it
// wrote for the index.
type partStore struct {
	sink    mlode.Sink
	prefix  string
	records []*types.PartRecord
}

// openPartStore creates the Lode client for meta, instrumented with
// collector.
func openPartStore(ctx context.Context, s storageChoice, meta *types.ExtractionMeta, collector *metrics.Collector) (*partStore, error) {
	factory, err := storeFactory(ctx, s)
	if err != nil {
		return nil, err
	}
	client, err := mlode.NewClientWithFactory(mlode.ConfigFor(s.dataset, meta), factory)
	if err != nil {
		return nil, err
	}
	return &partStore{
		sink:   mlode.NewInstrumentedSink(client, collector),
		prefix: client.PartPrefix(),
	}, nil
}

// put stores the body of rec and records it. rec.SizeBytes and
// rec.Path are filled in from the write.
func (ps *partStore) put(ctx context.Context, rec *types.PartRecord, body io.Reader) error {
	counter := &iox.CountingReader{R: body}
	p, err := ps.sink.PutPart(ctx, mlode.PartFilename(rec), counter)
	if err != nil {
		return err
	}
	rec.Path = p
	rec.SizeBytes = counter.N
	ps.records = append(ps.records, rec)
	return nil
}

// commit writes the index and closes the sink.
func (ps *partStore) commit(ctx context.Context) error {
	err := ps.sink.WriteIndex(ctx, ps.records)
	if cerr := ps.sink.Close(); err == nil {
		err = cerr
	}
	return err
}
