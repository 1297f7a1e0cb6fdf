package lines

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func collect(t *testing.T, it Iterator) []string {
	t.Helper()
	var out []string
	for {
		line, err := it.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, string(line))
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReaderIterator(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single no newline", "abc", []string{"abc"}},
		{"lf lines", "a\nb\n", []string{"a\n", "b\n"}},
		{"crlf lines", "a\r\nb\r\n", []string{"a\r\n", "b\r\n"}},
		{"trailing fragment", "a\nb", []string{"a\n", "b"}},
		{"blank lines", "\n\n", []string{"\n", "\n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(t, NewReaderIterator(strings.NewReader(tt.in), '\n'))
			if !equal(got, tt.want) {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReaderIterator_OneByteReader(t *testing.T) {
	r := iotest.OneByteReader(strings.NewReader("first\nsecond\n"))
	got := collect(t, NewReaderIterator(r, '\n'))
	want := []string{"first\n", "second\n"}
	if !equal(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestReaderIterator_LongLineFragments(t *testing.T) {
	long := strings.Repeat("x", 40)
	got := collect(t, NewReaderIteratorSize(strings.NewReader(long+"\nend\n"), '\n', 16))

	if strings.Join(got, "") != long+"\nend\n" {
		t.Fatalf("joined fragments = %q", strings.Join(got, ""))
	}
	for _, frag := range got[:len(got)-2] {
		if strings.HasSuffix(frag, "\n") {
			t.Errorf("non-final fragment %q ends with delimiter", frag)
		}
	}
	if got[len(got)-1] != "end\n" {
		t.Errorf("last line = %q, want %q", got[len(got)-1], "end\n")
	}
}

func TestReaderIterator_LinesAreOwned(t *testing.T) {
	it := NewReaderIterator(strings.NewReader("aaa\nbbb\n"), '\n')
	first, err := it.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if _, err := it.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if string(first) != "aaa\n" {
		t.Errorf("first line mutated to %q", first)
	}
}

func TestReaderIterator_ErrorAfterData(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(boom))
	it := NewReaderIterator(r, '\n')

	line, err := it.Next()
	if err != nil {
		t.Fatalf("first Next err = %v, want nil", err)
	}
	if string(line) != "partial" {
		t.Errorf("line = %q, want %q", line, "partial")
	}
	if _, err := it.Next(); !errors.Is(err, boom) {
		t.Errorf("second Next err = %v, want %v", err, boom)
	}
	if _, err := it.Next(); !errors.Is(err, boom) {
		t.Errorf("sticky err = %v, want %v", err, boom)
	}
}
