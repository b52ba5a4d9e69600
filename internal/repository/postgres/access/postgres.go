package access

import (
	"context"
	"errors"

	accessdomain "booking-ledger-go/internal/domain/access"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetGrant(ctx context.Context, ownerID, memberID string) (*accessdomain.Grant, error) {
	var grant accessdomain.Grant
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND member_id = ?", ownerID, memberID).
		First(&grant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, accessdomain.ErrGrantNotFound
		}
		return nil, err
	}
	return &grant, nil
}

func (r *PostgresRepository) ListByMember(ctx context.Context, memberID string) ([]accessdomain.Grant, error) {
	var grants []accessdomain.Grant
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at desc").
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]accessdomain.Grant, error) {
	var grants []accessdomain.Grant
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at asc").
		Find(&grants).Error; err != nil {
		return nil, err
	}
	return grants, nil
}

// UpsertGrant inserts the grant or, on an (owner_id, member_id) conflict,
// updates the stored row's level in place. The grant is re-read afterwards
// so the caller sees the stored row identity, not the candidate's.
func (r *PostgresRepository) UpsertGrant(ctx context.Context, grant *accessdomain.Grant) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "member_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"level", "updated_at"}),
		}).
		Create(grant).Error
	if err != nil {
		return err
	}

	stored, err := r.GetGrant(ctx, grant.OwnerID, grant.MemberID)
	if err != nil {
		return err
	}
	*grant = *stored
	return nil
}

func (r *PostgresRepository) DeleteGrant(ctx context.Context, ownerID, memberID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Delete(&accessdomain.Grant{}, "owner_id = ? AND member_id = ?", ownerID, memberID)
	return result.RowsAffected > 0, result.Error
}
