package access

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

type fakeAccessRepo struct {
	grants map[string]*Grant // keyed owner|member
}

func newFakeAccessRepo() *fakeAccessRepo {
	return &fakeAccessRepo{grants: make(map[string]*Grant)}
}

func grantKey(ownerID, memberID string) string {
	return ownerID + "|" + memberID
}

func (r *fakeAccessRepo) GetGrant(ctx context.Context, ownerID, memberID string) (*Grant, error) {
	grant, ok := r.grants[grantKey(ownerID, memberID)]
	if !ok {
		return nil, ErrGrantNotFound
	}
	return grant, nil
}

func (r *fakeAccessRepo) ListByMember(ctx context.Context, memberID string) ([]Grant, error) {
	result := make([]Grant, 0)
	for _, grant := range r.grants {
		if grant.MemberID == memberID {
			result = append(result, *grant)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeAccessRepo) ListByOwner(ctx context.Context, ownerID string) ([]Grant, error) {
	result := make([]Grant, 0)
	for _, grant := range r.grants {
		if grant.OwnerID == ownerID {
			result = append(result, *grant)
		}
	}
	return result, nil
}

func (r *fakeAccessRepo) UpsertGrant(ctx context.Context, grant *Grant) error {
	key := grantKey(grant.OwnerID, grant.MemberID)
	if existing, ok := r.grants[key]; ok {
		existing.Level = grant.Level
		existing.UpdatedAt = time.Now().UTC()
		*grant = *existing
		return nil
	}
	if grant.CreatedAt.IsZero() {
		grant.CreatedAt = time.Now().UTC()
	}
	stored := *grant
	r.grants[key] = &stored
	return nil
}

func (r *fakeAccessRepo) DeleteGrant(ctx context.Context, ownerID, memberID string) (bool, error) {
	key := grantKey(ownerID, memberID)
	if _, ok := r.grants[key]; !ok {
		return false, nil
	}
	delete(r.grants, key)
	return true, nil
}

func seedGrant(repo *fakeAccessRepo, ownerID, memberID, level string, createdAt time.Time) {
	repo.grants[grantKey(ownerID, memberID)] = &Grant{
		ID:        ownerID + "-" + memberID,
		OwnerID:   ownerID,
		MemberID:  memberID,
		Level:     level,
		CreatedAt: createdAt,
	}
}

func TestCanAccessSelfAlwaysTrue(t *testing.T) {
	svc := NewService(newFakeAccessRepo())

	for _, required := range []string{LevelRead, LevelWrite} {
		ok, err := svc.CanAccess(context.Background(), "owner-1", "owner-1", required)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !ok {
			t.Fatalf("expected self access for %s", required)
		}
	}
}

func TestCanAccessNoGrant(t *testing.T) {
	svc := NewService(newFakeAccessRepo())

	ok, err := svc.CanAccess(context.Background(), "member-1", "owner-1", LevelRead)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatalf("expected access denied without grant")
	}
}

func TestCanAccessLevels(t *testing.T) {
	cases := []struct {
		level     string
		wantRead  bool
		wantWrite bool
	}{
		{LevelRead, true, false},
		{LevelWrite, true, true},
		{LevelOwner, true, true},
	}

	for _, tc := range cases {
		repo := newFakeAccessRepo()
		seedGrant(repo, "owner-1", "member-1", tc.level, time.Now())
		svc := NewService(repo)

		gotRead, err := svc.CanAccess(context.Background(), "member-1", "owner-1", LevelRead)
		if err != nil {
			t.Fatalf("level %s: %v", tc.level, err)
		}
		gotWrite, err := svc.CanAccess(context.Background(), "member-1", "owner-1", LevelWrite)
		if err != nil {
			t.Fatalf("level %s: %v", tc.level, err)
		}
		if gotRead != tc.wantRead || gotWrite != tc.wantWrite {
			t.Fatalf("level %s: got read=%v write=%v, want read=%v write=%v",
				tc.level, gotRead, gotWrite, tc.wantRead, tc.wantWrite)
		}
	}
}

func TestWriteImpliesRead(t *testing.T) {
	repo := newFakeAccessRepo()
	seedGrant(repo, "owner-1", "member-1", LevelWrite, time.Now())
	svc := NewService(repo)

	canWrite, _ := svc.CanAccess(context.Background(), "member-1", "owner-1", LevelWrite)
	canRead, _ := svc.CanAccess(context.Background(), "member-1", "owner-1", LevelRead)
	if canWrite && !canRead {
		t.Fatalf("write access must imply read access")
	}
}

func TestRequireAccessForbidden(t *testing.T) {
	repo := newFakeAccessRepo()
	seedGrant(repo, "owner-1", "member-1", LevelRead, time.Now())
	svc := NewService(repo)

	err := svc.RequireAccess(context.Background(), "member-1", "owner-1", LevelWrite)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGrantUpsert(t *testing.T) {
	repo := newFakeAccessRepo()
	svc := NewService(repo)

	first, err := svc.Grant(context.Background(), "owner-1", "member-1", LevelRead)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.Grant(context.Background(), "owner-1", "member-1", LevelWrite)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected re-grant to update in place, got new id %s", second.ID)
	}
	if second.Level != LevelWrite {
		t.Fatalf("expected level write, got %s", second.Level)
	}
	if len(repo.grants) != 1 {
		t.Fatalf("expected single grant per (owner, member), got %d", len(repo.grants))
	}
}

func TestGrantSelfRejected(t *testing.T) {
	svc := NewService(newFakeAccessRepo())

	_, err := svc.Grant(context.Background(), "owner-1", "owner-1", LevelWrite)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGrantInvalidLevel(t *testing.T) {
	svc := NewService(newFakeAccessRepo())

	_, err := svc.Grant(context.Background(), "owner-1", "member-1", "admin")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Field != "level" {
		t.Fatalf("expected level field, got %s", validation.Field)
	}
}

func TestRevoke(t *testing.T) {
	repo := newFakeAccessRepo()
	seedGrant(repo, "owner-1", "member-1", LevelWrite, time.Now())
	svc := NewService(repo)

	if err := svc.Revoke(context.Background(), "owner-1", "member-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.Revoke(context.Background(), "owner-1", "member-1"); !errors.Is(err, ErrGrantNotFound) {
		t.Fatalf("expected ErrGrantNotFound on second revoke, got %v", err)
	}

	ok, _ := svc.CanAccess(context.Background(), "member-1", "owner-1", LevelRead)
	if ok {
		t.Fatalf("expected access denied after revoke")
	}
}

func TestEffectiveOwnerSelf(t *testing.T) {
	svc := NewService(newFakeAccessRepo())

	owner, err := svc.EffectiveOwner(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if owner != "user-1" {
		t.Fatalf("expected self as owner, got %s", owner)
	}
}

func TestEffectiveOwnerSingleMembership(t *testing.T) {
	repo := newFakeAccessRepo()
	seedGrant(repo, "owner-1", "member-1", LevelRead, time.Now())
	svc := NewService(repo)

	owner, err := svc.EffectiveOwner(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if owner != "owner-1" {
		t.Fatalf("expected owner-1, got %s", owner)
	}
}

func TestEffectiveOwnerMostRecentWins(t *testing.T) {
	repo := newFakeAccessRepo()
	seedGrant(repo, "owner-1", "member-1", LevelWrite, time.Now().Add(-time.Hour))
	seedGrant(repo, "owner-2", "member-1", LevelRead, time.Now())
	svc := NewService(repo)

	owner, err := svc.EffectiveOwner(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if owner != "owner-2" {
		t.Fatalf("expected most recent membership owner-2, got %s", owner)
	}
}

func TestWriteMembers(t *testing.T) {
	repo := newFakeAccessRepo()
	seedGrant(repo, "owner-1", "reader", LevelRead, time.Now())
	seedGrant(repo, "owner-1", "writer", LevelWrite, time.Now())
	seedGrant(repo, "owner-1", "co-owner", LevelOwner, time.Now())
	svc := NewService(repo)

	members, err := svc.WriteMembers(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	sort.Strings(members)
	if len(members) != 2 || members[0] != "co-owner" || members[1] != "writer" {
		t.Fatalf("expected co-owner and writer, got %v", members)
	}
}

func TestOwnerReach(t *testing.T) {
	repo := newFakeAccessRepo()
	seedGrant(repo, "owner-1", "co-owner", LevelOwner, time.Now())
	seedGrant(repo, "owner-1", "writer", LevelWrite, time.Now())
	svc := NewService(repo)

	reach, _ := svc.OwnerReach(context.Background(), "owner-1", "owner-1")
	if !reach {
		t.Fatalf("expected owner reach for self")
	}
	reach, _ = svc.OwnerReach(context.Background(), "co-owner", "owner-1")
	if !reach {
		t.Fatalf("expected owner reach for co-owner grant")
	}
	reach, _ = svc.OwnerReach(context.Background(), "writer", "owner-1")
	if reach {
		t.Fatalf("expected no owner reach for write grant")
	}
}
