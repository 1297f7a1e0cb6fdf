// Package contenttype tokenizes Content-Type header values.
//
// Values are parsed per RFC 2045 first. Parameter values that should
// have been quoted but were not, such as type=application/xop+xml or
// start=<root@x>, are accepted by a lenient second pass. Unterminated
// quotes and a malformed media type still fail.
package contenttype

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

// Well-known parameter keys.
const (
	KeyMimeType = "mime-type"
	KeyBoundary = "boundary"
	KeyType     = "type"
	KeyStart    = "start"
)

// ErrMissingParam is returned by Params.Require for an absent parameter.
var ErrMissingParam = errors.New("missing content-type parameter")

// ParseError reports a malformed Content-Type value.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid content type %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Params maps lower-cased parameter names to values. It always contains
// KeyMimeType holding the lower-cased media type.
type Params map[string]string

// Parse splits a Content-Type value into its media type and parameters.
// Quoted parameter values are unquoted.
func Parse(value string) (Params, error) {
	mediaType, params, err := mime.ParseMediaType(value)
	if errors.Is(err, mime.ErrInvalidMediaParameter) {
		params, err = parseLenient(value)
	}
	if err != nil {
		return nil, &ParseError{Value: value, Err: err}
	}
	out := make(Params, len(params)+1)
	for k, v := range params {
		out[strings.ToLower(k)] = v
	}
	out[KeyMimeType] = mediaType
	return out, nil
}

// parseLenient splits the parameters of value on ';' outside quotes.
// Unquoted values run to the next ';' and may hold any character.
func parseLenient(value string) (map[string]string, error) {
	_, rest, _ := strings.Cut(value, ";")
	params := make(map[string]string)
	for rest != "" {
		var seg string
		var err error
		seg, rest, err = nextParam(rest)
		if err != nil {
			return nil, err
		}
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		k, v, ok := strings.Cut(seg, "=")
		k = strings.ToLower(strings.TrimSpace(k))
		if !ok || k == "" {
			return nil, mime.ErrInvalidMediaParameter
		}
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, `"`) {
			v = unquote(v)
		}
		params[k] = v
	}
	return params, nil
}

// nextParam returns the text up to the first ';' that is not inside a
// quoted string, and the remainder after it.
func nextParam(s string) (string, string, error) {
	quoted := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && quoted:
			i++
		case c == '"':
			quoted = !quoted
		case c == ';' && !quoted:
			return s[:i], s[i+1:], nil
		}
	}
	if quoted {
		return "", "", errors.New("mime: unterminated quoted string")
	}
	return s, "", nil
}

// unquote strips the surrounding quotes of v and resolves backslash
// escapes.
func unquote(v string) string {
	v = strings.TrimSuffix(strings.TrimPrefix(v, `"`), `"`)
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		if v[i] == '\\' && i+1 < len(v) {
			i++
		}
		b.WriteByte(v[i])
	}
	return b.String()
}

// MimeType returns the lower-cased media type.
func (p Params) MimeType() string {
	return p[KeyMimeType]
}

// Require returns the value of key or an error wrapping ErrMissingParam
// when the parameter is absent or empty.
func (p Params) Require(key string) (string, error) {
	v := p[key]
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return v, nil
}

// IsMultipart reports whether value names a multipart media type.
// Matching is a case-insensitive prefix test and does not parse value.
func IsMultipart(value string) bool {
	return HasPrefixFold(strings.TrimSpace(value), "multipart/")
}

// HasPrefixFold is a case-insensitive strings.HasPrefix.
func HasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
