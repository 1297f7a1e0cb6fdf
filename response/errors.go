package response

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContentType is returned when a response carries no
	// Content-Type header at all.
	ErrNoContentType = errors.New("response has no content-type header")

	// ErrInvalidContentType matches every *InvalidContentTypeError.
	ErrInvalidContentType = errors.New("invalid content type")
)

// Messages carried by InvalidContentTypeError.
const (
	MsgNotMultipartRelated = "content must be of multipart/related type"
	MsgNotXOP              = "initial content type must be application/xop+xml"
)

// InvalidContentTypeError reports a response or part whose content type
// cannot carry an XOP package. Got holds the offending value.
type InvalidContentTypeError struct {
	Msg string
	Got string
}

func (e *InvalidContentTypeError) Error() string {
	if e.Got == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s (got %q)", e.Msg, e.Got)
}

// Unwrap lets errors.Is match ErrInvalidContentType.
func (e *InvalidContentTypeError) Unwrap() error {
	return ErrInvalidContentType
}
