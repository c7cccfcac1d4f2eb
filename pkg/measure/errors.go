package measure

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMismatchedDelimiter = errors.New("mismatched delimiters")
	ErrMissingOffAxis      = errors.New("scan is missing SCAN_OFFAXIS_INPLANE")
	ErrMissingCrossCal     = errors.New("scan is missing CROSS_CALIBRATION")
	ErrMalformedAttribute  = errors.New("malformed attribute")
	ErrUnclassifiable      = errors.New("unclassifiable statement")
	ErrMalformedData       = errors.New("malformed data")
	ErrEmpty               = errors.New("no measurements")
)

// ParseError ties a parse failure to its input line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Cause() error  { return e.Err }
func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(line int, err error) error {
	return &ParseError{Line: line, Err: err}
}
