package ledger

import "time"

// Event status state machine. Stored as the raw numeric code.
const (
	StatusDraft     = 0
	StatusActive    = 1
	StatusCompleted = 2
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Event struct {
	ID                string `gorm:"type:uuid;primaryKey"`
	OwnerID           string `gorm:"not null;index"`
	CreatedBy         string `gorm:"not null"`
	UpdatedBy         *string
	CategoryID        string `gorm:"type:uuid;not null;index"`
	Name              string `gorm:"not null"`
	Venue             *string
	EventDate         *time.Time
	Status            int     `gorm:"not null;default:0"`
	Priority          string  `gorm:"type:varchar(16);not null"`
	BookingTotalValue float64 `gorm:"type:numeric(12,2);not null;default:0"`
	AdvancePayment    float64 `gorm:"type:numeric(12,2);not null;default:0"`
	IsDeleted         bool    `gorm:"not null;default:false;index"`
	DeletedAt         *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

type Category struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Transaction is an append-only ledger entry. Once written its financial
// fields never change: "updating" soft-deletes the record and chains a
// successor via OldTransactionID, so the full payment history stays
// auditable. The current state of an event is the set of records with a
// null DeletedAt.
type Transaction struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	EventID          string `gorm:"type:uuid;not null;index"`
	AddedBy          string `gorm:"not null"`
	Amount           float64 `gorm:"type:numeric(12,2);not null"`
	PaymentMethod    string  `gorm:"type:varchar(50);not null"`
	Reference        *string
	Note             *string
	OldTransactionID *string `gorm:"type:uuid"`
	DeletedAt        *time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

type EventWithTransactions struct {
	Event
	Transactions []Transaction
	Balance      float64
}

type CreateEventInput struct {
	Name              string
	CategoryName      string
	Venue             *string
	EventDate         *time.Time
	Status            int
	Priority          string
	BookingTotalValue float64
	AdvancePayment    float64
	PaymentMethod     string
}

type UpdateStatusPriorityInput struct {
	Status   *int
	Priority *string
}

// UpdateEventInput overwrites the stored fields verbatim; nil pointers are
// left untouched. No per-field validation happens at this layer.
type UpdateEventInput struct {
	Name              *string
	CategoryName      *string
	Venue             *string
	EventDate         *time.Time
	Status            *int
	Priority          *string
	BookingTotalValue *float64
	AdvancePayment    *float64
}

type AddPaymentInput struct {
	Amount        float64
	PaymentMethod string
	Reference     *string
	Note          *string
}

// ReplacePaymentInput carries the replacement values; unset fields are
// carried forward from the superseded transaction.
type ReplacePaymentInput struct {
	Amount        *float64
	PaymentMethod *string
	Reference     *string
	Note          *string
}

func ValidStatus(status int) bool {
	return status == StatusDraft || status == StatusActive || status == StatusCompleted
}

func ValidPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
