package lode

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/mimestream/types"
)

// ErrNoIndex is returned when no part records match the query.
var ErrNoIndex = errors.New("no part index records found")

// NewReadDataset opens the index dataset for reading with the write-side
// layout and codec.
func NewReadDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	if dataset == "" {
		dataset = DefaultDataset
	}
	return newIndexDataset(dataset, factory)
}

// NewReadDatasetFS opens the index dataset on the filesystem.
func NewReadDatasetFS(dataset, root string) (lode.Dataset, error) {
	return NewReadDataset(dataset, lode.NewFSFactory(root))
}

// ReadIndex returns the part records of one extraction ordered by index.
// An empty extractionID selects the most recent extraction written.
func ReadIndex(ctx context.Context, ds lode.Dataset, extractionID string) ([]*types.PartRecord, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, WrapReadError(err, string(ds.ID())+"/snapshots")
	}

	var out []*types.PartRecord
	// Latest first.
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		if extractionID != "" && !snapshotMatches(snap, "extraction_id", extractionID) {
			continue
		}
		data, err := ds.Read(ctx, snap.ID)
		if err != nil {
			return nil, WrapReadError(err, fmt.Sprintf("%s/snapshot/%s", ds.ID(), snap.ID))
		}
		for _, item := range data {
			row, ok := item.(map[string]any)
			if !ok || row["record_kind"] != RecordKindPart {
				continue
			}
			id := toString(row["extraction_id"])
			if extractionID == "" {
				extractionID = id
			}
			if id != extractionID {
				continue
			}
			out = append(out, fromPartRecordMap(row))
		}
	}
	if len(out) == 0 {
		return nil, ErrNoIndex
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// snapshotMatches reports whether any file of snap lies under key=value.
func snapshotMatches(snap *lode.DatasetSnapshot, key, value string) bool {
	for _, f := range snap.Manifest.Files {
		if hasPartitionSegment(f.Path, key, value) {
			return true
		}
	}
	return false
}

// hasPartitionSegment matches a whole key=value path segment, so that
// extraction_id=a does not match extraction_id=ab.
func hasPartitionSegment(p, key, value string) bool {
	segment := key + "=" + value
	for _, part := range strings.Split(p, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

func fromPartRecordMap(row map[string]any) *types.PartRecord {
	rec := &types.PartRecord{
		Index:       int(toInt64(row["index"])),
		ContentType: toString(row["content_type"]),
		ContentID:   toString(row["content_id"]),
		SizeBytes:   toInt64(row["size_bytes"]),
		Path:        toString(row["path"]),
	}
	if b, ok := row["manifest"].(bool); ok {
		rec.Manifest = b
	}
	if h, ok := row["header"].(map[string]any); ok {
		rec.Header = make(map[string]string, len(h))
		for k, v := range h {
			rec.Header[k] = toString(v)
		}
	}
	return rec
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}

// toInt64 accepts the numeric types a JSON codec may produce.
func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
