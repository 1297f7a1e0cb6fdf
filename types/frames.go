package types

// Frame type discriminants.
const (
	// PartHeaderType marks the frame that opens a part.
	PartHeaderType = "part_header"
	// PartChunkType marks a frame carrying part content bytes.
	PartChunkType = "part_chunk"
)

// PartHeaderFrame opens a part in a frame stream.
// Discriminated from chunk frames by Type == "part_header".
type PartHeaderFrame struct {
	// Type is always "part_header".
	Type string `msgpack:"type"`
	// Index is the zero-based part index.
	Index int `msgpack:"index"`
	// Header holds the part headers with lower-cased names.
	Header map[string]string `msgpack:"header"`
}

// PartChunkFrame carries a slice of part content.
// Chunks for one part are contiguous and follow its header frame.
type PartChunkFrame struct {
	// Type is always "part_chunk".
	Type string `msgpack:"type"`
	// Index is the part this chunk belongs to.
	Index int `msgpack:"index"`
	// Seq is the chunk sequence number, starts at 1.
	Seq int64 `msgpack:"seq"`
	// IsLast is true for the final chunk of the part.
	IsLast bool `msgpack:"is_last"`
	// Data is the raw content.
	Data []byte `msgpack:"data"`
}
