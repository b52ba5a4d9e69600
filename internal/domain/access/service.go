package access

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Grant creates or updates the grant (owner=actor, member). Only the owner
// side of a grant may create or edit it, which the signature enforces.
func (s *Service) Grant(ctx context.Context, actorID, memberID, level string) (*Grant, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, &ValidationError{Field: "member_id", Reason: "is required"}
	}
	if memberID == actorID {
		return nil, &ValidationError{Field: "member_id", Reason: "cannot grant access to yourself"}
	}
	if !ValidLevel(level) {
		return nil, &ValidationError{Field: "level", Reason: "must be one of read, write, owner"}
	}

	grant := Grant{
		ID:       uuid.NewString(),
		OwnerID:  actorID,
		MemberID: memberID,
		Level:    level,
	}
	if err := s.repo.UpsertGrant(ctx, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (s *Service) Revoke(ctx context.Context, actorID, memberID string) error {
	deleted, err := s.repo.DeleteGrant(ctx, actorID, memberID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrGrantNotFound
	}
	return nil
}

// ListMembers returns the grants the actor has handed out.
func (s *Service) ListMembers(ctx context.Context, actorID string) ([]Grant, error) {
	return s.repo.ListByOwner(ctx, actorID)
}

// Memberships returns the grants naming the actor as member, most recent
// first.
func (s *Service) Memberships(ctx context.Context, actorID string) ([]Grant, error) {
	return s.repo.ListByMember(ctx, actorID)
}

// CanAccess reports whether actor may perform required ("read" or "write")
// against resources owned by resourceOwner. Direct ownership always passes;
// otherwise the (owner, member) grant decides: owner and write grants cover
// both read and write, a read grant covers read only.
func (s *Service) CanAccess(ctx context.Context, actorID, resourceOwnerID, required string) (bool, error) {
	if actorID == resourceOwnerID {
		return true, nil
	}

	grant, err := s.repo.GetGrant(ctx, resourceOwnerID, actorID)
	if err != nil {
		if errors.Is(err, ErrGrantNotFound) {
			return false, nil
		}
		return false, err
	}

	switch grant.Level {
	case LevelOwner, LevelWrite:
		return true, nil
	case LevelRead:
		return required == LevelRead, nil
	}
	return false, nil
}

// RequireAccess is CanAccess surfacing denial as ErrForbidden, so callers
// can fail fast before mutating anything.
func (s *Service) RequireAccess(ctx context.Context, actorID, resourceOwnerID, required string) error {
	ok, err := s.CanAccess(ctx, actorID, resourceOwnerID, required)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// EffectiveOwner resolves the owner namespace the actor writes under. An
// actor with no memberships is their own owner; a member writes into the
// granting owner's namespace regardless of grant level. When an actor is a
// member under several owners the most recently granted membership wins.
func (s *Service) EffectiveOwner(ctx context.Context, actorID string) (string, error) {
	grants, err := s.repo.ListByMember(ctx, actorID)
	if err != nil {
		return "", err
	}
	if len(grants) == 0 {
		return actorID, nil
	}
	return grants[0].OwnerID, nil
}

// WriteMembers returns the member ids holding owner or write grants under
// ownerID. This is the co-audience for notification fan-out.
func (s *Service) WriteMembers(ctx context.Context, ownerID string) ([]string, error) {
	grants, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	members := make([]string, 0, len(grants))
	for _, grant := range grants {
		if grant.Level == LevelOwner || grant.Level == LevelWrite {
			members = append(members, grant.MemberID)
		}
	}
	return members, nil
}

// OwnerReach reports whether the actor has owner-level visibility into
// ownerID's resources: either direct ownership or a co-owner grant.
func (s *Service) OwnerReach(ctx context.Context, actorID, ownerID string) (bool, error) {
	if actorID == ownerID {
		return true, nil
	}
	grant, err := s.repo.GetGrant(ctx, ownerID, actorID)
	if err != nil {
		if errors.Is(err, ErrGrantNotFound) {
			return false, nil
		}
		return false, err
	}
	return grant.Level == LevelOwner, nil
}
