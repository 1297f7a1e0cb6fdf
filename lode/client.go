package lode

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/mimestream/types"
)

// RecordKindPart marks part index records.
const RecordKindPart = "part"

// Client is a Lode-backed Sink.
type Client struct {
	dataset lode.Dataset
	config  Config

	storeFactory lode.StoreFactory
	storeOnce    sync.Once
	store        lode.Store
	storeErr     error
}

// NewClient creates a Client with filesystem storage rooted at root.
func NewClient(cfg Config, root string) (*Client, error) {
	return NewClientWithFactory(cfg, lode.NewFSFactory(root))
}

// NewClientWithFactory creates a Client over a custom store factory.
// Use lode.NewMemoryFactory() in tests.
func NewClientWithFactory(cfg Config, factory lode.StoreFactory) (*Client, error) {
	ds, err := newIndexDataset(cfg.Dataset, factory)
	if err != nil {
		return nil, WrapInitError(err, cfg.Dataset)
	}
	return newClient(ds, cfg, factory), nil
}

func newClient(ds lode.Dataset, cfg Config, factory lode.StoreFactory) *Client {
	return &Client{dataset: ds, config: cfg, storeFactory: factory}
}

func newIndexDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	return lode.NewDataset(
		lode.DatasetID(dataset),
		factory,
		lode.WithHiveLayout(PartitionKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
}

// PartPrefix is the store prefix holding this extraction's part bodies.
// Format: datasets/<dataset>/partitions/source=<s>/day=<d>/extraction_id=<id>/parts
func (c *Client) PartPrefix() string {
	return fmt.Sprintf("datasets/%s/partitions/source=%s/day=%s/extraction_id=%s/parts",
		c.config.Dataset, c.config.Source, c.config.Day, c.config.ExtractionID)
}

// PutPart implements Sink. filename must be a bare name.
func (c *Client) PutPart(ctx context.Context, filename string, body io.Reader) (string, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid part filename %q", filename)
	}
	store, err := c.getOrCreateStore()
	if err != nil {
		return "", WrapInitError(err, c.config.Dataset)
	}
	p := path.Join(c.PartPrefix(), filename)
	if err := store.Put(ctx, p, body); err != nil {
		return "", WrapWriteError(err, p)
	}
	return p, nil
}

// WriteIndex implements Sink. Records are written as one snapshot.
func (c *Client) WriteIndex(ctx context.Context, records []*types.PartRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, toPartRecordMap(rec, c.config))
	}
	if _, err := c.dataset.Write(ctx, rows, lode.Metadata{}); err != nil {
		return WrapWriteError(err, c.config.Dataset)
	}
	return nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return nil
}

func (c *Client) getOrCreateStore() (lode.Store, error) {
	c.storeOnce.Do(func() {
		c.store, c.storeErr = c.storeFactory()
	})
	return c.store, c.storeErr
}

// toPartRecordMap flattens a record with its partition keys.
func toPartRecordMap(rec *types.PartRecord, cfg Config) map[string]any {
	header := make(map[string]any, len(rec.Header))
	for k, v := range rec.Header {
		header[k] = v
	}
	return map[string]any{
		"record_kind":   RecordKindPart,
		"source":        cfg.Source,
		"day":           cfg.Day,
		"extraction_id": cfg.ExtractionID,
		"index":         rec.Index,
		"content_type":  rec.ContentType,
		"content_id":    rec.ContentID,
		"size_bytes":    rec.SizeBytes,
		"manifest":      rec.Manifest,
		"path":          rec.Path,
		"header":        header,
	}
}

var _ Sink = (*Client)(nil)
