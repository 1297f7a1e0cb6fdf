// Package frame encodes multipart parts as a stream of length-prefixed
// msgpack frames.
//
// Each frame is a 4-byte big-endian payload length followed by a msgpack
// map. A part is written as one part_header frame and one or more
// part_chunk frames; the last chunk has is_last set.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/mimestream/types"
)

// Frame size limits.
const (
	// MaxFrameSize is the maximum frame size (16 MiB), including length prefix.
	MaxFrameSize = 16 * 1024 * 1024
	// MaxPayloadSize is the maximum payload size (MaxFrameSize - 4 bytes).
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
	// MaxChunkSize is the maximum part chunk size (8 MiB raw bytes).
	MaxChunkSize = 8 * 1024 * 1024
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
)

// ErrorKind classifies frame errors.
type ErrorKind int

const (
	// ErrorPartial indicates a truncated or incomplete frame.
	ErrorPartial ErrorKind = iota
	// ErrorTooLarge indicates a frame exceeding MaxFrameSize.
	ErrorTooLarge
	// ErrorDecode indicates a msgpack decoding error.
	ErrorDecode
	// ErrorSequence indicates frames arriving out of order.
	ErrorSequence
)

// FrameError represents a frame encoding or decoding error.
type FrameError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the stream cannot be resumed after this error.
// Partial and oversized frames leave the reader misaligned.
func (e *FrameError) IsFatal() bool {
	return e.Kind == ErrorPartial || e.Kind == ErrorTooLarge
}

// IsFatalFrameError returns true if err is a fatal *FrameError.
func IsFatalFrameError(err error) bool {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr.IsFatal()
	}
	return false
}

// Decoder reads length-prefixed frames from a stream.
type Decoder struct {
	reader io.Reader
}

// NewDecoder creates a frame decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: r}
}

// ReadFrame reads one frame and returns its raw msgpack payload.
//
// Errors:
//   - io.EOF: stream ended cleanly (no more frames)
//   - *FrameError with Kind=ErrorPartial: incomplete frame (fatal)
//   - *FrameError with Kind=ErrorTooLarge: frame exceeds limit (fatal)
func (d *Decoder) ReadFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(d.reader, lengthBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &FrameError{Kind: ErrorPartial, Msg: "failed to read length prefix", Err: err}
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])
	if payloadSize > MaxPayloadSize {
		return nil, &FrameError{
			Kind: ErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, MaxPayloadSize),
		}
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(d.reader, payload); err != nil {
		return nil, &FrameError{Kind: ErrorPartial, Msg: "failed to read payload", Err: err}
	}
	return payload, nil
}

// Next reads and decodes the next frame, returning either a
// *types.PartHeaderFrame or a *types.PartChunkFrame.
func (d *Decoder) Next() (any, error) {
	payload, err := d.ReadFrame()
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}

// typeProbe peeks at the type field without a full decode.
type typeProbe struct {
	Type string `msgpack:"type"`
}

// Decode decodes a payload, discriminating on its type field.
func Decode(payload []byte) (any, error) {
	var probe typeProbe
	if err := msgpack.Unmarshal(payload, &probe); err != nil {
		return nil, &FrameError{Kind: ErrorDecode, Msg: "failed to decode frame type", Err: err}
	}

	switch probe.Type {
	case types.PartHeaderType:
		var h types.PartHeaderFrame
		if err := msgpack.Unmarshal(payload, &h); err != nil {
			return nil, &FrameError{Kind: ErrorDecode, Msg: "failed to decode part header", Err: err}
		}
		return &h, nil
	case types.PartChunkType:
		var c types.PartChunkFrame
		if err := msgpack.Unmarshal(payload, &c); err != nil {
			return nil, &FrameError{Kind: ErrorDecode, Msg: "failed to decode part chunk", Err: err}
		}
		return &c, nil
	default:
		return nil, &FrameError{Kind: ErrorDecode, Msg: fmt.Sprintf("unknown frame type %q", probe.Type)}
	}
}
