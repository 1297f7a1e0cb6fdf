package frame

import (
	"errors"
	"fmt"
	"io"

	"github.com/pithecene-io/mimestream/types"
)

// Part is a part reassembled from frames.
type Part struct {
	Index  int
	Header map[string]string
	Data   []byte
}

// Collect reads frames from r until io.EOF and reassembles the parts.
// Chunks must follow their header frame in sequence; a stream that ends
// inside a part fails with an ErrorPartial *FrameError.
func Collect(r io.Reader) ([]Part, error) {
	dec := NewDecoder(r)
	var (
		parts   []Part
		current *Part
		seq     int64
	)
	for {
		f, err := dec.Next()
		if errors.Is(err, io.EOF) {
			if current != nil {
				return parts, &FrameError{
					Kind: ErrorPartial,
					Msg:  fmt.Sprintf("stream ended inside part %d", current.Index),
				}
			}
			return parts, nil
		}
		if err != nil {
			return parts, err
		}

		switch f := f.(type) {
		case *types.PartHeaderFrame:
			if current != nil {
				return parts, &FrameError{
					Kind: ErrorSequence,
					Msg:  fmt.Sprintf("part %d opened before part %d finished", f.Index, current.Index),
				}
			}
			current = &Part{Index: f.Index, Header: f.Header}
			seq = 0
		case *types.PartChunkFrame:
			if current == nil || f.Index != current.Index {
				return parts, &FrameError{
					Kind: ErrorSequence,
					Msg:  fmt.Sprintf("chunk for part %d without a header", f.Index),
				}
			}
			if f.Seq != seq+1 {
				return parts, &FrameError{
					Kind: ErrorSequence,
					Msg:  fmt.Sprintf("part %d: chunk seq %d, want %d", f.Index, f.Seq, seq+1),
				}
			}
			seq = f.Seq
			current.Data = append(current.Data, f.Data...)
			if f.IsLast {
				parts = append(parts, *current)
				current = nil
			}
		}
	}
}
