package access

import "errors"

var (
	ErrForbidden     = errors.New("access denied")
	ErrGrantNotFound = errors.New("grant not found")
)

// ValidationError carries the offending field so handlers can report
// field-level detail. Only safe for caller mistakes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
