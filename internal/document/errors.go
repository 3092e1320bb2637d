package document

import (
	"errors"
	"regexp"
	"strconv"
)

// ErrEmptyDocument is reported when the input holds no YAML document.
var ErrEmptyDocument = errors.New("document is empty")

var lineRegex = regexp.MustCompile(`line (\d+)`)

// ParseError is returned when configuration text cannot be parsed. The
// message is the parser's own, including its line reference when it has one.
type ParseError struct {
	// Line is the 1-based source line, or 0 when unknown.
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(err error) *ParseError {
	pe := &ParseError{Err: err}
	if m := lineRegex.FindStringSubmatch(err.Error()); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
	}
	return pe
}

// IsParseError reports whether err is or wraps a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
