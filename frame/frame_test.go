package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/mimestream/metrics"
	"github.com/pithecene-io/mimestream/types"
)

// encodeRaw wraps a payload with its length prefix.
func encodeRaw(payload []byte) []byte {
	buf := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(payload)))
	copy(buf[LengthPrefixSize:], payload)
	return buf
}

func TestEncoder_WritePart_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := metrics.NewCollector("split", "", "")
	enc := NewEncoder(&buf, c)
	enc.SetChunkSize(4)

	header := map[string]string{"content-type": "text/plain", "content-id": "<a@b>"}
	n, err := enc.WritePart(0, header, strings.NewReader("hello world"))
	if err != nil {
		t.Fatalf("WritePart failed: %v", err)
	}
	if n != 11 {
		t.Errorf("WritePart wrote %d bytes, want 11", n)
	}
	if _, err := enc.WritePart(1, nil, strings.NewReader("")); err != nil {
		t.Fatalf("WritePart (empty) failed: %v", err)
	}

	// 1 header + 3 chunks, then 1 header + 1 empty chunk.
	if got := c.Snapshot().FramesWritten; got != 6 {
		t.Errorf("FramesWritten = %d, want 6", got)
	}

	parts, err := Collect(&buf)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("Collect returned %d parts, want 2", len(parts))
	}
	if string(parts[0].Data) != "hello world" {
		t.Errorf("part 0 data = %q", parts[0].Data)
	}
	if parts[0].Header["content-id"] != "<a@b>" {
		t.Errorf("part 0 content-id = %q", parts[0].Header["content-id"])
	}
	if parts[1].Index != 1 || len(parts[1].Data) != 0 {
		t.Errorf("part 1 = %+v, want empty part with index 1", parts[1])
	}
}

func TestEncoder_WritePart_ChunkBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantChunks int
	}{
		{"empty", "", 1},
		{"short", "ab", 1},
		{"exact", "abcd", 1},
		{"one over", "abcde", 2},
		{"two exact", "abcdefgh", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc := NewEncoder(&buf, nil)
			enc.SetChunkSize(4)
			if _, err := enc.WritePart(3, nil, iotest.HalfReader(strings.NewReader(tt.content))); err != nil {
				t.Fatalf("WritePart failed: %v", err)
			}

			dec := NewDecoder(&buf)
			if _, err := dec.Next(); err != nil {
				t.Fatalf("header frame: %v", err)
			}
			var chunks []*types.PartChunkFrame
			for {
				f, err := dec.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("Next failed: %v", err)
				}
				chunks = append(chunks, f.(*types.PartChunkFrame))
			}
			if len(chunks) != tt.wantChunks {
				t.Fatalf("got %d chunks, want %d", len(chunks), tt.wantChunks)
			}
			for i, ch := range chunks {
				if ch.Seq != int64(i+1) {
					t.Errorf("chunk %d Seq = %d", i, ch.Seq)
				}
				if ch.IsLast != (i == len(chunks)-1) {
					t.Errorf("chunk %d IsLast = %v", i, ch.IsLast)
				}
				if ch.Index != 3 {
					t.Errorf("chunk %d Index = %d, want 3", i, ch.Index)
				}
			}
		})
	}
}

func TestEncoder_WritePart_ReaderError(t *testing.T) {
	boom := errors.New("boom")
	enc := NewEncoder(io.Discard, nil)
	r := io.MultiReader(strings.NewReader("abc"), iotest.ErrReader(boom))
	if _, err := enc.WritePart(0, nil, r); !errors.Is(err, boom) {
		t.Errorf("WritePart err = %v, want %v", err, boom)
	}
}

func TestDecoder_CleanEOF(t *testing.T) {
	dec := NewDecoder(bytes.NewReader(nil))
	if _, err := dec.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("ReadFrame err = %v, want io.EOF", err)
	}
}

func TestDecoder_PartialFrames(t *testing.T) {
	payload, err := msgpack.Marshal(&types.PartHeaderFrame{Type: types.PartHeaderType})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	full := encodeRaw(payload)

	tests := []struct {
		name string
		data []byte
	}{
		{"partial prefix", full[:2]},
		{"partial payload", full[:len(full)-1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(bytes.NewReader(tt.data)).ReadFrame()
			var fe *FrameError
			if !errors.As(err, &fe) || fe.Kind != ErrorPartial {
				t.Fatalf("err = %v, want partial FrameError", err)
			}
			if !IsFatalFrameError(err) {
				t.Error("partial frame should be fatal")
			}
		})
	}
}

func TestDecoder_TooLarge(t *testing.T) {
	var prefix [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], MaxPayloadSize+1)
	_, err := NewDecoder(bytes.NewReader(prefix[:])).ReadFrame()
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Kind != ErrorTooLarge {
		t.Fatalf("err = %v, want too-large FrameError", err)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	payload, err := msgpack.Marshal(map[string]any{"type": "run_result"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	_, err = Decode(payload)
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Kind != ErrorDecode {
		t.Fatalf("err = %v, want decode FrameError", err)
	}
	if IsFatalFrameError(err) {
		t.Error("decode errors are not fatal")
	}
}

func TestCollect_SequenceErrors(t *testing.T) {
	frames := func(vs ...any) io.Reader {
		var buf bytes.Buffer
		enc := NewEncoder(&buf, nil)
		for _, v := range vs {
			if err := enc.WriteFrame(v); err != nil {
				t.Fatalf("WriteFrame failed: %v", err)
			}
		}
		return &buf
	}
	hdr := func(i int) *types.PartHeaderFrame {
		return &types.PartHeaderFrame{Type: types.PartHeaderType, Index: i}
	}
	chunk := func(i int, seq int64, last bool) *types.PartChunkFrame {
		return &types.PartChunkFrame{Type: types.PartChunkType, Index: i, Seq: seq, IsLast: last, Data: []byte("x")}
	}

	tests := []struct {
		name     string
		r        io.Reader
		wantKind ErrorKind
	}{
		{"chunk without header", frames(chunk(0, 1, true)), ErrorSequence},
		{"seq gap", frames(hdr(0), chunk(0, 2, true)), ErrorSequence},
		{"overlapping parts", frames(hdr(0), chunk(0, 1, false), hdr(1)), ErrorSequence},
		{"unfinished part", frames(hdr(0), chunk(0, 1, false)), ErrorPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Collect(tt.r)
			var fe *FrameError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v, want *FrameError", err)
			}
			if fe.Kind != tt.wantKind {
				t.Errorf("Kind = %d, want %d", fe.Kind, tt.wantKind)
			}
		})
	}
}
