package access

import "context"

type Repository interface {
	GetGrant(ctx context.Context, ownerID, memberID string) (*Grant, error)
	// ListByMember returns grants where memberID is the member side,
	// most recently granted first.
	ListByMember(ctx context.Context, memberID string) ([]Grant, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Grant, error)
	UpsertGrant(ctx context.Context, grant *Grant) error
	DeleteGrant(ctx context.Context, ownerID, memberID string) (bool, error)
}
