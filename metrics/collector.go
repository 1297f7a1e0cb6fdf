// Package metrics provides per-extraction metrics collection.
//
// The Collector accumulates counters during a single extraction. It is a leaf
// package with no internal dependencies so that the stream, response, and
// storage layers can all record into the same instance.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Extraction lifecycle
	ExtractionsStarted   int64 `json:"extractions_started"`
	ExtractionsCompleted int64 `json:"extractions_completed"`
	ExtractionsFailed    int64 `json:"extractions_failed"`

	// Scanning
	LinesRead      int64 `json:"lines_read"`
	BoundariesSeen int64 `json:"boundaries_seen"`
	PreambleLines  int64 `json:"preamble_lines"`

	// Parts
	PartsOpened   int64 `json:"parts_opened"`
	PartsReleased int64 `json:"parts_released"`
	BytesRead     int64 `json:"bytes_read"`

	// XOP
	ManifestsLoaded     int64 `json:"manifests_loaded"`
	InvalidContentTypes int64 `json:"invalid_content_types"`

	// Storage / output
	StorageWriteSuccess int64 `json:"storage_write_success"`
	StorageWriteFailure int64 `json:"storage_write_failure"`
	FramesWritten       int64 `json:"frames_written"`

	// Dimensions (informational, set at construction)
	Mode           string `json:"mode"`
	StorageBackend string `json:"storage_backend"`
	ExtractionID   string `json:"extraction_id"`
}

// Collector accumulates metrics during a single extraction.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe,
// so packages can record unconditionally whether or not a caller wired one.
type Collector struct {
	mu sync.Mutex

	extractionsStarted   int64
	extractionsCompleted int64
	extractionsFailed    int64

	linesRead      int64
	boundariesSeen int64
	preambleLines  int64

	partsOpened   int64
	partsReleased int64
	bytesRead     int64

	manifestsLoaded     int64
	invalidContentTypes int64

	storageWriteSuccess int64
	storageWriteFailure int64
	framesWritten       int64

	mode           string
	storageBackend string
	extractionID   string
}

// NewCollector creates a Collector with dimension labels.
// mode is the CLI mode (parts, xop, split); storageBackend and extractionID
// may be empty.
func NewCollector(mode, storageBackend, extractionID string) *Collector {
	return &Collector{
		mode:           mode,
		storageBackend: storageBackend,
		extractionID:   extractionID,
	}
}

// add increments a counter under the lock. Callers check for nil first.
func (c *Collector) add(counter *int64, n int64) {
	c.mu.Lock()
	*counter += n
	c.mu.Unlock()
}

// --- Extraction lifecycle ---

// IncExtractionStarted records an extraction start.
func (c *Collector) IncExtractionStarted() {
	if c == nil {
		return
	}
	c.add(&c.extractionsStarted, 1)
}

// IncExtractionCompleted records a successful extraction.
func (c *Collector) IncExtractionCompleted() {
	if c == nil {
		return
	}
	c.add(&c.extractionsCompleted, 1)
}

// IncExtractionFailed records a failed extraction.
func (c *Collector) IncExtractionFailed() {
	if c == nil {
		return
	}
	c.add(&c.extractionsFailed, 1)
}

// --- Scanning ---

// IncLinesRead records one body line pulled from the transport.
func (c *Collector) IncLinesRead() {
	if c == nil {
		return
	}
	c.add(&c.linesRead, 1)
}

// IncBoundariesSeen records a boundary or closing delimiter line.
func (c *Collector) IncBoundariesSeen() {
	if c == nil {
		return
	}
	c.add(&c.boundariesSeen, 1)
}

// AddPreambleLines records lines discarded before the first boundary.
func (c *Collector) AddPreambleLines(n int64) {
	if c == nil || n == 0 {
		return
	}
	c.add(&c.preambleLines, n)
}

// --- Parts ---

// IncPartsOpened records a part whose header block was parsed.
func (c *Collector) IncPartsOpened() {
	if c == nil {
		return
	}
	c.add(&c.partsOpened, 1)
}

// IncPartsReleased records a part released by Close.
func (c *Collector) IncPartsReleased() {
	if c == nil {
		return
	}
	c.add(&c.partsReleased, 1)
}

// AddBytesRead records content bytes handed to callers.
func (c *Collector) AddBytesRead(n int64) {
	if c == nil || n == 0 {
		return
	}
	c.add(&c.bytesRead, n)
}

// --- XOP ---

// IncManifestsLoaded records a materialized XOP manifest.
func (c *Collector) IncManifestsLoaded() {
	if c == nil {
		return
	}
	c.add(&c.manifestsLoaded, 1)
}

// IncInvalidContentTypes records a rejected content type.
func (c *Collector) IncInvalidContentTypes() {
	if c == nil {
		return
	}
	c.add(&c.invalidContentTypes, 1)
}

// --- Storage / output ---
// Storage counters are per-call: one PutPart is one success or failure,
// regardless of how many bytes the part carried.

// IncStorageWriteSuccess records a successful storage write.
func (c *Collector) IncStorageWriteSuccess() {
	if c == nil {
		return
	}
	c.add(&c.storageWriteSuccess, 1)
}

// IncStorageWriteFailure records a failed storage write.
func (c *Collector) IncStorageWriteFailure() {
	if c == nil {
		return
	}
	c.add(&c.storageWriteFailure, 1)
}

// IncFramesWritten records one frame written to an output stream.
func (c *Collector) IncFramesWritten() {
	if c == nil {
		return
	}
	c.add(&c.framesWritten, 1)
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The Collector can continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		ExtractionsStarted:   c.extractionsStarted,
		ExtractionsCompleted: c.extractionsCompleted,
		ExtractionsFailed:    c.extractionsFailed,

		LinesRead:      c.linesRead,
		BoundariesSeen: c.boundariesSeen,
		PreambleLines:  c.preambleLines,

		PartsOpened:   c.partsOpened,
		PartsReleased: c.partsReleased,
		BytesRead:     c.bytesRead,

		ManifestsLoaded:     c.manifestsLoaded,
		InvalidContentTypes: c.invalidContentTypes,

		StorageWriteSuccess: c.storageWriteSuccess,
		StorageWriteFailure: c.storageWriteFailure,
		FramesWritten:       c.framesWritten,

		Mode:           c.mode,
		StorageBackend: c.storageBackend,
		ExtractionID:   c.extractionID,
	}
}
