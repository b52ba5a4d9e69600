package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"booking-ledger-go/internal/domain/access"
	"booking-ledger-go/internal/domain/notifications"
	"github.com/google/uuid"
)

const (
	maxChainDepth           = 1000
	defaultReplaceReference = "Payment updated"
)

// AddPayment appends a new transaction to the event's ledger and fans out a
// notification to the event's co-owners and write members.
func (s *Service) AddPayment(ctx context.Context, actorID, eventID string, input AddPaymentInput) (*Transaction, notifications.Result, error) {
	event, err := s.repo.GetEvent(ctx, eventID, false)
	if err != nil {
		return nil, notifications.Result{}, err
	}
	if err := s.access.RequireAccess(ctx, actorID, event.OwnerID, access.LevelWrite); err != nil {
		return nil, notifications.Result{}, err
	}
	if err := validatePayment(input.Amount, input.PaymentMethod); err != nil {
		return nil, notifications.Result{}, err
	}

	transaction := Transaction{
		ID:            uuid.NewString(),
		EventID:       event.ID,
		AddedBy:       actorID,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		Reference:     input.Reference,
		Note:          input.Note,
	}
	if err := s.repo.CreateTransaction(ctx, &transaction); err != nil {
		return nil, notifications.Result{}, err
	}

	message := fmt.Sprintf("%s added a payment of %s for %s.", s.actorName(ctx, actorID), formatAmount(input.Amount), event.Name)
	result := s.notify.FanOut(ctx, event.OwnerID, actorID, "Payment added", message, paymentData(event.ID, transaction.ID))

	return &transaction, result, nil
}

// ReplacePayment performs the soft-delete-and-chain update: the existing
// transaction is stamped deleted with an audit note, then a successor is
// created carrying forward unspecified fields and linking back via
// OldTransactionID. The deleted_at stamp is a compare-and-swap, so of two
// concurrent replacements only one claims the predecessor; the loser sees
// not-found instead of double-chaining.
func (s *Service) ReplacePayment(ctx context.Context, actorID, eventID, transactionID string, patch ReplacePaymentInput) (*Transaction, notifications.Result, error) {
	event, err := s.repo.GetEvent(ctx, eventID, false)
	if err != nil {
		return nil, notifications.Result{}, err
	}
	if err := s.access.RequireAccess(ctx, actorID, event.OwnerID, access.LevelWrite); err != nil {
		return nil, notifications.Result{}, err
	}
	if patch.Amount != nil && *patch.Amount <= 0 {
		return nil, notifications.Result{}, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if patch.PaymentMethod != nil && *patch.PaymentMethod == "" {
		return nil, notifications.Result{}, &ValidationError{Field: "payment_method", Reason: "must not be empty"}
	}

	old, err := s.repo.GetTransaction(ctx, eventID, transactionID)
	if err != nil {
		return nil, notifications.Result{}, err
	}

	now := time.Now().UTC()
	audit := "Soft deleted because user requested update at " + now.Format(time.RFC3339)
	oldReference := appendReference(old.Reference, audit)

	claimed, err := s.repo.MarkTransactionDeleted(ctx, eventID, old.ID, now, &oldReference)
	if err != nil {
		return nil, notifications.Result{}, err
	}
	if !claimed {
		return nil, notifications.Result{}, ErrTransactionNotFound
	}

	replacement := Transaction{
		ID:               uuid.NewString(),
		EventID:          event.ID,
		AddedBy:          actorID,
		Amount:           old.Amount,
		PaymentMethod:    old.PaymentMethod,
		Note:             old.Note,
		OldTransactionID: &old.ID,
	}
	if patch.Amount != nil {
		replacement.Amount = *patch.Amount
	}
	if patch.PaymentMethod != nil {
		replacement.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Note != nil {
		replacement.Note = patch.Note
	}

	base := defaultReplaceReference
	if patch.Reference != nil && *patch.Reference != "" {
		base = *patch.Reference
	}
	newReference := base + " | Soft deleted transaction id: " + old.ID
	replacement.Reference = &newReference

	if err := s.repo.CreateTransaction(ctx, &replacement); err != nil {
		return nil, notifications.Result{}, err
	}

	message := fmt.Sprintf("%s updated a payment of %s for %s.", s.actorName(ctx, actorID), formatAmount(replacement.Amount), event.Name)
	result := s.notify.FanOut(ctx, event.OwnerID, actorID, "Payment updated", message, paymentData(event.ID, replacement.ID))

	return &replacement, result, nil
}

// SoftDeletePayment stamps the transaction deleted with an audit note. No
// replacement record is created.
func (s *Service) SoftDeletePayment(ctx context.Context, actorID, eventID, transactionID string) (notifications.Result, error) {
	event, err := s.repo.GetEvent(ctx, eventID, false)
	if err != nil {
		return notifications.Result{}, err
	}
	if err := s.access.RequireAccess(ctx, actorID, event.OwnerID, access.LevelWrite); err != nil {
		return notifications.Result{}, err
	}

	old, err := s.repo.GetTransaction(ctx, eventID, transactionID)
	if err != nil {
		return notifications.Result{}, err
	}

	now := time.Now().UTC()
	audit := "Soft deleted by user at " + now.Format(time.RFC3339)
	reference := appendReference(old.Reference, audit)

	claimed, err := s.repo.MarkTransactionDeleted(ctx, eventID, old.ID, now, &reference)
	if err != nil {
		return notifications.Result{}, err
	}
	if !claimed {
		return notifications.Result{}, ErrTransactionNotFound
	}

	message := fmt.Sprintf("%s removed a payment of %s for %s.", s.actorName(ctx, actorID), formatAmount(old.Amount), event.Name)
	result := s.notify.FanOut(ctx, event.OwnerID, actorID, "Payment removed", message, paymentData(event.ID, old.ID))

	return result, nil
}

// PaymentHistory walks the ledger chain backwards from the given
// transaction, newest first, including superseded records.
func (s *Service) PaymentHistory(ctx context.Context, actorID, eventID, transactionID string) ([]Transaction, error) {
	event, err := s.repo.GetEvent(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireAccess(ctx, actorID, event.OwnerID, access.LevelRead); err != nil {
		return nil, err
	}

	chain := make([]Transaction, 0, 4)
	seen := make(map[string]struct{})
	nextID := transactionID

	for len(chain) < maxChainDepth {
		if _, ok := seen[nextID]; ok {
			break
		}
		seen[nextID] = struct{}{}

		transaction, err := s.repo.GetTransactionAny(ctx, eventID, nextID)
		if err != nil {
			if len(chain) == 0 {
				return nil, err
			}
			break
		}
		chain = append(chain, *transaction)

		if transaction.OldTransactionID == nil {
			break
		}
		nextID = *transaction.OldTransactionID
	}

	return chain, nil
}

func validatePayment(amount float64, method string) error {
	if amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if method == "" {
		return &ValidationError{Field: "payment_method", Reason: "is required"}
	}
	if len(method) > maxMethodLength {
		return &ValidationError{Field: "payment_method", Reason: fmt.Sprintf("must be at most %d characters", maxMethodLength)}
	}
	return nil
}

func appendReference(existing *string, note string) string {
	if existing != nil && *existing != "" {
		return *existing + " | " + note
	}
	return note
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

func paymentData(eventID, transactionID string) map[string]any {
	return map[string]any{
		"event_id":       eventID,
		"transaction_id": transactionID,
	}
}
