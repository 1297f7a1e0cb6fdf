package stream

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedHeader is returned for a header line without a colon.
	ErrMalformedHeader = errors.New("malformed part header")
	// ErrHeaderTooLarge is returned when a header block exceeds the
	// session's limit.
	ErrHeaderTooLarge = errors.New("part header block too large")
)

// Header maps lower-cased header names to values. Repeated names keep the
// last value.
type Header map[string]string

// Get returns the value for name, matched case-insensitively.
func (h Header) Get(name string) string {
	return h[strings.ToLower(name)]
}

// HeaderError reports a header line that could not be parsed.
type HeaderError struct {
	Part int
	Line string
	Err  error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("part %d: %v: %q", e.Part, e.Err, e.Line)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}

// trimEOL removes one trailing "\r\n" or "\n".
func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte{'\n'})
	return bytes.TrimSuffix(line, []byte{'\r'})
}

// parseHeaderLines turns raw header lines into a Header, unfolding
// continuation lines that begin with a space or tab.
func parseHeaderLines(index int, raw []string) (Header, error) {
	h := make(Header, len(raw))
	var lastKey string
	for _, line := range raw {
		if line[0] == ' ' || line[0] == '\t' {
			if lastKey == "" {
				return nil, &HeaderError{Part: index, Line: line, Err: ErrMalformedHeader}
			}
			h[lastKey] += " " + strings.TrimSpace(line)
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, &HeaderError{Part: index, Line: line, Err: ErrMalformedHeader}
		}
		lastKey = strings.ToLower(name)
		h[lastKey] = strings.TrimSpace(value)
	}
	return h, nil
}
