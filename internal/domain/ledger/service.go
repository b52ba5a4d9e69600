package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-ledger-go/internal/domain/access"
	"booking-ledger-go/internal/domain/notifications"
	"github.com/google/uuid"
)

const (
	maxNameLength     = 120
	maxCategoryLength = 80
	maxMethodLength   = 50

	advancePaymentNote   = "Advance payment (initial)"
	defaultPaymentMethod = "cash"
)

// Clauses for the status-change notification message, keyed by the new
// status code.
var statusClauses = map[int]string{
	StatusDraft:     "set to inactive",
	StatusActive:    "marked as pending",
	StatusCompleted: "completed the event",
}

// Notifier dispatches a fan-out after a committed ledger mutation. It never
// returns an error: delivery problems come back as an advisory warning.
type Notifier interface {
	FanOut(ctx context.Context, ownerID, actorID, title, message string, data map[string]any) notifications.Result
}

// Directory resolves a user id to a display name for notification messages.
type Directory interface {
	DisplayName(ctx context.Context, userID string) (string, error)
}

type Service struct {
	repo      Repository
	access    *access.Service
	notify    Notifier
	directory Directory
}

func NewService(repo Repository, accessSvc *access.Service, notify Notifier, directory Directory) *Service {
	return &Service{
		repo:      repo,
		access:    accessSvc,
		notify:    notify,
		directory: directory,
	}
}

// ListAccessible returns every non-deleted event the actor can see: their
// own plus those of any owner who granted them access, newest-created
// first. Transactions ride along oldest-first, but for read/write members
// without owner reach the visible subset shrinks to the transactions the
// actor added themselves; the event itself stays fully visible.
func (s *Service) ListAccessible(ctx context.Context, actorID string) ([]EventWithTransactions, error) {
	memberships, err := s.access.Memberships(ctx, actorID)
	if err != nil {
		return nil, err
	}

	ownerIDs := []string{actorID}
	fullVisibility := map[string]bool{actorID: true}
	for _, grant := range memberships {
		ownerIDs = append(ownerIDs, grant.OwnerID)
		if grant.Level == access.LevelOwner {
			fullVisibility[grant.OwnerID] = true
		}
	}

	events, err := s.repo.ListEventsByOwners(ctx, dedupe(ownerIDs))
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []EventWithTransactions{}, nil
	}

	eventIDs := make([]string, 0, len(events))
	for _, event := range events {
		eventIDs = append(eventIDs, event.ID)
	}

	transactionsByEvent, err := s.repo.ListTransactionsByEvents(ctx, eventIDs)
	if err != nil {
		return nil, err
	}

	items := make([]EventWithTransactions, 0, len(events))
	for _, event := range events {
		visible := transactionsByEvent[event.ID]
		if !fullVisibility[event.OwnerID] {
			visible = filterByAdder(visible, actorID)
		}
		items = append(items, EventWithTransactions{
			Event:        event,
			Transactions: visible,
			Balance:      sumAmounts(visible),
		})
	}

	return items, nil
}

// Create books a new event under the actor's effective owner. When an
// advance payment is recorded the event starts with one transaction
// carrying the fixed initial note.
func (s *Service) Create(ctx context.Context, actorID string, input CreateEventInput) (*EventWithTransactions, error) {
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	ownerID, err := s.access.EffectiveOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireAccess(ctx, actorID, ownerID, access.LevelWrite); err != nil {
		return nil, err
	}

	event := Event{
		ID:                uuid.NewString(),
		OwnerID:           ownerID,
		CreatedBy:         actorID,
		Name:              strings.TrimSpace(input.Name),
		Venue:             input.Venue,
		EventDate:         input.EventDate,
		Status:            input.Status,
		Priority:          input.Priority,
		BookingTotalValue: input.BookingTotalValue,
		AdvancePayment:    input.AdvancePayment,
	}

	var initial *Transaction
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		category, err := findOrCreateCategory(ctx, tx, input.CategoryName)
		if err != nil {
			return err
		}
		event.CategoryID = category.ID

		if err := tx.CreateEvent(ctx, &event); err != nil {
			return err
		}

		if input.AdvancePayment > 0 {
			note := advancePaymentNote
			method := input.PaymentMethod
			if method == "" {
				method = defaultPaymentMethod
			}
			initial = &Transaction{
				ID:            uuid.NewString(),
				EventID:       event.ID,
				AddedBy:       actorID,
				Amount:        input.AdvancePayment,
				PaymentMethod: method,
				Note:          &note,
			}
			return tx.CreateTransaction(ctx, initial)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := EventWithTransactions{Event: event}
	if initial != nil {
		result.Transactions = []Transaction{*initial}
		result.Balance = initial.Amount
	}
	return &result, nil
}

// UpdateStatusPriority applies the provided status and/or priority to an
// event in the actor's effective-owner namespace, then fans out a
// notification describing what changed. The lookup is owner-scoped: an
// event belonging to someone else reads as not-found rather than forbidden.
func (s *Service) UpdateStatusPriority(ctx context.Context, actorID, eventID string, input UpdateStatusPriorityInput) (*Event, notifications.Result, error) {
	if input.Status == nil && input.Priority == nil {
		return nil, notifications.Result{}, &ValidationError{Field: "status", Reason: "status or priority is required"}
	}
	if input.Status != nil && !ValidStatus(*input.Status) {
		return nil, notifications.Result{}, &ValidationError{Field: "status", Reason: "must be 0, 1 or 2"}
	}
	if input.Priority != nil && !ValidPriority(*input.Priority) {
		return nil, notifications.Result{}, &ValidationError{Field: "priority", Reason: "must be one of low, medium, high"}
	}

	ownerID, err := s.access.EffectiveOwner(ctx, actorID)
	if err != nil {
		return nil, notifications.Result{}, err
	}
	if err := s.access.RequireAccess(ctx, actorID, ownerID, access.LevelWrite); err != nil {
		return nil, notifications.Result{}, err
	}

	event, err := s.repo.GetEventForOwner(ctx, ownerID, eventID)
	if err != nil {
		return nil, notifications.Result{}, err
	}

	var clauses []string
	if input.Status != nil {
		event.Status = *input.Status
		clauses = append(clauses, statusClauses[*input.Status])
	}
	if input.Priority != nil {
		event.Priority = *input.Priority
		clauses = append(clauses, "priority set to "+*input.Priority)
	}
	event.UpdatedBy = &actorID
	event.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, notifications.Result{}, err
	}

	message := fmt.Sprintf("%s %s for %s", s.actorName(ctx, actorID), strings.Join(clauses, ", "), event.Name)
	result := s.notify.FanOut(ctx, event.OwnerID, actorID, "Event update", message, map[string]any{"event_id": event.ID})

	return event, result, nil
}

// UpdateFields overwrites event fields from the patch verbatim, gated by
// write access against the event's stored owner.
func (s *Service) UpdateFields(ctx context.Context, actorID, eventID string, patch UpdateEventInput) (*Event, error) {
	event, err := s.repo.GetEvent(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireAccess(ctx, actorID, event.OwnerID, access.LevelWrite); err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if patch.CategoryName != nil {
			category, err := findOrCreateCategory(ctx, tx, *patch.CategoryName)
			if err != nil {
				return err
			}
			event.CategoryID = category.ID
		}
		if patch.Name != nil {
			event.Name = *patch.Name
		}
		if patch.Venue != nil {
			event.Venue = patch.Venue
		}
		if patch.EventDate != nil {
			event.EventDate = patch.EventDate
		}
		if patch.Status != nil {
			event.Status = *patch.Status
		}
		if patch.Priority != nil {
			event.Priority = *patch.Priority
		}
		if patch.BookingTotalValue != nil {
			event.BookingTotalValue = *patch.BookingTotalValue
		}
		if patch.AdvancePayment != nil {
			event.AdvancePayment = *patch.AdvancePayment
		}
		event.UpdatedBy = &actorID
		event.UpdatedAt = time.Now().UTC()

		return tx.UpdateEvent(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

// SoftDelete marks the event deleted. A second delete is a conflict, not a
// no-op, so callers learn the record was already gone.
func (s *Service) SoftDelete(ctx context.Context, actorID, eventID string) error {
	event, err := s.repo.GetEvent(ctx, eventID, true)
	if err != nil {
		return err
	}
	if err := s.access.RequireAccess(ctx, actorID, event.OwnerID, access.LevelWrite); err != nil {
		return err
	}
	if event.IsDeleted {
		return ErrEventAlreadyDeleted
	}

	marked, err := s.repo.MarkEventDeleted(ctx, eventID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !marked {
		return ErrEventAlreadyDeleted
	}
	return nil
}

// GetByID returns the event with its non-deleted transactions, gated by
// read access against the stored owner.
func (s *Service) GetByID(ctx context.Context, actorID, eventID string) (*EventWithTransactions, error) {
	event, err := s.repo.GetEvent(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireAccess(ctx, actorID, event.OwnerID, access.LevelRead); err != nil {
		return nil, err
	}

	transactions, err := s.repo.ListTransactionsByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	balance, err := s.repo.SumActiveTransactions(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return &EventWithTransactions{
		Event:        *event,
		Transactions: transactions,
		Balance:      balance,
	}, nil
}

func (s *Service) actorName(ctx context.Context, actorID string) string {
	name, err := s.directory.DisplayName(ctx, actorID)
	if err != nil || name == "" {
		return actorID
	}
	return name
}

func validateCreate(input *CreateEventInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if len([]rune(input.Name)) > maxNameLength {
		return &ValidationError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", maxNameLength)}
	}

	input.CategoryName = strings.TrimSpace(input.CategoryName)
	if input.CategoryName == "" {
		return &ValidationError{Field: "category", Reason: "is required"}
	}
	if len([]rune(input.CategoryName)) > maxCategoryLength {
		return &ValidationError{Field: "category", Reason: fmt.Sprintf("must be at most %d characters", maxCategoryLength)}
	}

	if input.Priority == "" {
		input.Priority = PriorityMedium
	}
	if !ValidPriority(input.Priority) {
		return &ValidationError{Field: "priority", Reason: "must be one of low, medium, high"}
	}
	if !ValidStatus(input.Status) {
		return &ValidationError{Field: "status", Reason: "must be 0, 1 or 2"}
	}
	if input.BookingTotalValue < 0 {
		return &ValidationError{Field: "booking_total_value", Reason: "must not be negative"}
	}
	if input.AdvancePayment < 0 {
		return &ValidationError{Field: "advance_payment", Reason: "must not be negative"}
	}
	if len(input.PaymentMethod) > maxMethodLength {
		return &ValidationError{Field: "payment_method", Reason: fmt.Sprintf("must be at most %d characters", maxMethodLength)}
	}
	return nil
}

func findOrCreateCategory(ctx context.Context, repo Repository, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	category, err := repo.GetCategoryByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, ErrCategoryNotFound) {
		return nil, err
	}

	category = &Category{ID: uuid.NewString(), Name: name}
	if err := repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func filterByAdder(transactions []Transaction, userID string) []Transaction {
	result := make([]Transaction, 0, len(transactions))
	for _, transaction := range transactions {
		if transaction.AddedBy == userID {
			result = append(result, transaction)
		}
	}
	return result
}

func sumAmounts(transactions []Transaction) float64 {
	var total float64
	for _, transaction := range transactions {
		total += transaction.Amount
	}
	return total
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
