package ledger

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	GetCategoryByName(ctx context.Context, name string) (*Category, error)
	CreateCategory(ctx context.Context, category *Category) error

	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string, includeDeleted bool) (*Event, error)
	// GetEventForOwner scopes the lookup by owner: a mismatch reads as
	// ErrEventNotFound so existence never leaks across owners.
	GetEventForOwner(ctx context.Context, ownerID, eventID string) (*Event, error)
	// ListEventsByOwners returns non-deleted events, newest-created first.
	ListEventsByOwners(ctx context.Context, ownerIDs []string) ([]Event, error)
	UpdateEvent(ctx context.Context, event *Event) error
	// MarkEventDeleted stamps the soft-delete flag only when it is not
	// already set; false means another writer got there first.
	MarkEventDeleted(ctx context.Context, eventID string, at time.Time) (bool, error)

	CreateTransaction(ctx context.Context, transaction *Transaction) error
	GetTransaction(ctx context.Context, eventID, transactionID string) (*Transaction, error)
	GetTransactionAny(ctx context.Context, eventID, transactionID string) (*Transaction, error)
	// ListTransactionsByEvent returns non-deleted transactions, oldest first.
	ListTransactionsByEvent(ctx context.Context, eventID string) ([]Transaction, error)
	ListTransactionsByEvents(ctx context.Context, eventIDs []string) (map[string][]Transaction, error)
	// MarkTransactionDeleted stamps deleted_at and the audit reference in a
	// single conditional update against a still-live row. It is the
	// serialization point of the soft-delete-and-replace protocol: false
	// means a concurrent writer already claimed the record.
	MarkTransactionDeleted(ctx context.Context, eventID, transactionID string, at time.Time, reference *string) (bool, error)
	SumActiveTransactions(ctx context.Context, eventID string) (float64, error)
}
