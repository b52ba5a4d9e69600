package ledger

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventAlreadyDeleted = errors.New("event already deleted")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
