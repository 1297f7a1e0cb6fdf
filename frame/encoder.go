package frame

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/mimestream/metrics"
	"github.com/pithecene-io/mimestream/types"
)

// Encoder writes parts as frames.
type Encoder struct {
	w         io.Writer
	chunkSize int
	collector *metrics.Collector
}

// NewEncoder creates an encoder writing to w. collector may be nil.
func NewEncoder(w io.Writer, collector *metrics.Collector) *Encoder {
	return &Encoder{w: w, chunkSize: MaxChunkSize, collector: collector}
}

// SetChunkSize overrides the chunk size. Values outside (0, MaxChunkSize]
// are ignored.
func (e *Encoder) SetChunkSize(n int) {
	if n > 0 && n <= MaxChunkSize {
		e.chunkSize = n
	}
}

// WriteFrame marshals v and writes it with its length prefix.
func (e *Encoder) WriteFrame(v any) error {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return &FrameError{Kind: ErrorDecode, Msg: "failed to encode frame", Err: err}
	}
	if len(payload) > MaxPayloadSize {
		return &FrameError{Kind: ErrorTooLarge, Msg: "encoded frame exceeds maximum"}
	}
	buf := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(payload)))
	copy(buf[LengthPrefixSize:], payload)
	if _, err := e.w.Write(buf); err != nil {
		return err
	}
	e.collector.IncFramesWritten()
	return nil
}

// WritePart writes a header frame followed by the content of r in chunks.
// An empty part still gets one final, empty chunk. It returns the number
// of content bytes written.
func (e *Encoder) WritePart(index int, header map[string]string, r io.Reader) (int64, error) {
	if err := e.WriteFrame(&types.PartHeaderFrame{
		Type:   types.PartHeaderType,
		Index:  index,
		Header: header,
	}); err != nil {
		return 0, err
	}

	var (
		total int64
		seq   int64
		buf   = make([]byte, e.chunkSize)
		next  = make([]byte, e.chunkSize)
	)
	// Read one chunk ahead so the final chunk can be marked.
	n, eof, err := fill(r, buf)
	if err != nil {
		return 0, err
	}
	for {
		last := eof
		var (
			m       int
			nextEOF bool
		)
		if !last {
			if m, nextEOF, err = fill(r, next); err != nil {
				return total, err
			}
			last = m == 0 && nextEOF
		}
		seq++
		if err := e.WriteFrame(&types.PartChunkFrame{
			Type:   types.PartChunkType,
			Index:  index,
			Seq:    seq,
			IsLast: last,
			Data:   buf[:n],
		}); err != nil {
			return total, err
		}
		total += int64(n)
		if last {
			return total, nil
		}
		buf, next = next, buf
		n, eof = m, nextEOF
	}
}

// fill reads into buf until it is full or r reports io.EOF.
func fill(r io.Reader, buf []byte) (n int, eof bool, err error) {
	for n < len(buf) {
		m, rerr := r.Read(buf[n:])
		n += m
		if errors.Is(rerr, io.EOF) {
			return n, true, nil
		}
		if rerr != nil {
			return n, false, rerr
		}
	}
	return n, false, nil
}
