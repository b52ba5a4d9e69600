package ledger

import (
	"context"
	"errors"
	"time"

	ledgerdomain "booking-ledger-go/internal/domain/ledger"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(ledgerdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) GetCategoryByName(ctx context.Context, name string) (*ledgerdomain.Category, error) {
	var category ledgerdomain.Category
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledgerdomain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, category *ledgerdomain.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *PostgresRepository) CreateEvent(ctx context.Context, event *ledgerdomain.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *PostgresRepository) GetEvent(ctx context.Context, eventID string, includeDeleted bool) (*ledgerdomain.Event, error) {
	query := r.db.WithContext(ctx).Where("id = ?", eventID)
	if !includeDeleted {
		query = query.Where("is_deleted = false")
	}

	var event ledgerdomain.Event
	if err := query.First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledgerdomain.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *PostgresRepository) GetEventForOwner(ctx context.Context, ownerID, eventID string) (*ledgerdomain.Event, error) {
	var event ledgerdomain.Event
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND is_deleted = false", eventID, ownerID).
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledgerdomain.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *PostgresRepository) ListEventsByOwners(ctx context.Context, ownerIDs []string) ([]ledgerdomain.Event, error) {
	if len(ownerIDs) == 0 {
		return []ledgerdomain.Event{}, nil
	}

	var events []ledgerdomain.Event
	if err := r.db.WithContext(ctx).
		Where("owner_id IN ? AND is_deleted = false", ownerIDs).
		Order("created_at desc").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *PostgresRepository) UpdateEvent(ctx context.Context, event *ledgerdomain.Event) error {
	return r.db.WithContext(ctx).
		Model(&ledgerdomain.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"category_id":         event.CategoryID,
			"name":                event.Name,
			"venue":               event.Venue,
			"event_date":          event.EventDate,
			"status":              event.Status,
			"priority":            event.Priority,
			"booking_total_value": event.BookingTotalValue,
			"advance_payment":     event.AdvancePayment,
			"updated_by":          event.UpdatedBy,
			"updated_at":          event.UpdatedAt,
		}).Error
}

func (r *PostgresRepository) MarkEventDeleted(ctx context.Context, eventID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&ledgerdomain.Event{}).
		Where("id = ? AND is_deleted = false", eventID).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": at,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) CreateTransaction(ctx context.Context, transaction *ledgerdomain.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *PostgresRepository) GetTransaction(ctx context.Context, eventID, transactionID string) (*ledgerdomain.Transaction, error) {
	var transaction ledgerdomain.Transaction
	if err := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ? AND deleted_at IS NULL", transactionID, eventID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledgerdomain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *PostgresRepository) GetTransactionAny(ctx context.Context, eventID, transactionID string) (*ledgerdomain.Transaction, error) {
	var transaction ledgerdomain.Transaction
	if err := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", transactionID, eventID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledgerdomain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *PostgresRepository) ListTransactionsByEvent(ctx context.Context, eventID string) ([]ledgerdomain.Transaction, error) {
	var transactions []ledgerdomain.Transaction
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND deleted_at IS NULL", eventID).
		Order("created_at asc").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *PostgresRepository) ListTransactionsByEvents(ctx context.Context, eventIDs []string) (map[string][]ledgerdomain.Transaction, error) {
	result := make(map[string][]ledgerdomain.Transaction, len(eventIDs))
	if len(eventIDs) == 0 {
		return result, nil
	}

	var transactions []ledgerdomain.Transaction
	if err := r.db.WithContext(ctx).
		Where("event_id IN ? AND deleted_at IS NULL", eventIDs).
		Order("created_at asc").
		Find(&transactions).Error; err != nil {
		return nil, err
	}

	for _, transaction := range transactions {
		result[transaction.EventID] = append(result[transaction.EventID], transaction)
	}
	return result, nil
}

// MarkTransactionDeleted is a conditional update against a still-live row:
// RowsAffected tells the caller whether this writer claimed it.
func (r *PostgresRepository) MarkTransactionDeleted(ctx context.Context, eventID, transactionID string, at time.Time, reference *string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&ledgerdomain.Transaction{}).
		Where("id = ? AND event_id = ? AND deleted_at IS NULL", transactionID, eventID).
		Updates(map[string]interface{}{
			"deleted_at": at,
			"reference":  reference,
		})
	return result.RowsAffected > 0, result.Error
}

func (r *PostgresRepository) SumActiveTransactions(ctx context.Context, eventID string) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).
		Model(&ledgerdomain.Transaction{}).
		Where("event_id = ? AND deleted_at IS NULL", eventID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
