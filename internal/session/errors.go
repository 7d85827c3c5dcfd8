package session

import (
	"errors"
	"fmt"
)

// ErrNoOpenSession is returned when no event in the lookback window carries an
// open session marker. Callers of ReportActivity and End must handle it; it is
// distinct from transport failures, which are wrapped and propagated as-is.
var ErrNoOpenSession = errors.New("no open session found")

// MalformedTimestampError indicates a server-assigned event timestamp could not
// be parsed. It is never silently coerced to a lapsed/not-lapsed answer.
type MalformedTimestampError struct {
	Field string
	Value string
	Err   error
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed %s timestamp %q: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedTimestampError) Unwrap() error { return e.Err }
