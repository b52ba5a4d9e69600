package notifications

import "context"

type Repository interface {
	CreateBatch(ctx context.Context, items []Notification) error
	// ListByUser returns the user's notifications newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) (bool, error)
}
