package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"booking-ledger-go/internal/domain/access"
)

func TestAddPayment(t *testing.T) {
	env := newTestEnv()
	env.grants.seed("owner-1", "member-1", access.LevelWrite)
	env.seedEvent("evt-1", "owner-1")

	reference := "invoice 42"
	transaction, result, err := env.svc.AddPayment(context.Background(), "member-1", "evt-1", AddPaymentInput{
		Amount:        250,
		PaymentMethod: "card",
		Reference:     &reference,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if transaction.AddedBy != "member-1" || transaction.Amount != 250 {
		t.Fatalf("unexpected transaction: %+v", transaction)
	}
	if transaction.OldTransactionID != nil {
		t.Fatalf("fresh payment must not chain to a predecessor")
	}
	if len(result.Notified) == 0 {
		t.Fatalf("expected fan-out invoked")
	}

	call := env.notifier.calls[0]
	if call.Title != "Payment added" {
		t.Fatalf("expected title 'Payment added', got %q", call.Title)
	}
	want := "Bob added a payment of 250 for Wedding evt-1."
	if call.Message != want {
		t.Fatalf("expected message %q, got %q", want, call.Message)
	}

	balance, _ := env.repo.SumActiveTransactions(context.Background(), "evt-1")
	if balance != 250 {
		t.Fatalf("expected balance 250, got %v", balance)
	}
}

func TestAddPaymentValidation(t *testing.T) {
	env := newTestEnv()
	env.seedEvent("evt-1", "owner-1")

	cases := []AddPaymentInput{
		{Amount: 0, PaymentMethod: "cash"},
		{Amount: -10, PaymentMethod: "cash"},
		{Amount: 10, PaymentMethod: ""},
		{Amount: 10, PaymentMethod: strings.Repeat("x", maxMethodLength+1)},
	}
	for i, input := range cases {
		_, _, err := env.svc.AddPayment(context.Background(), "owner-1", "evt-1", input)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("case %d: expected ValidationError, got %v", i, err)
		}
	}
	if len(env.notifier.calls) != 0 {
		t.Fatalf("expected no fan-out on rejected payments")
	}
}

func TestAddPaymentForbiddenForReadMember(t *testing.T) {
	env := newTestEnv()
	env.grants.seed("owner-1", "member-1", access.LevelRead)
	env.seedEvent("evt-1", "owner-1")

	_, _, err := env.svc.AddPayment(context.Background(), "member-1", "evt-1", AddPaymentInput{
		Amount:        10,
		PaymentMethod: "cash",
	})
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAddPaymentDeletedEventNotFound(t *testing.T) {
	env := newTestEnv()
	event := env.seedEvent("evt-1", "owner-1")
	event.IsDeleted = true

	_, _, err := env.svc.AddPayment(context.Background(), "owner-1", "evt-1", AddPaymentInput{
		Amount:        10,
		PaymentMethod: "cash",
	})
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestReplacePaymentBalanceReflectsOnlyNewAmount(t *testing.T) {
	env := newTestEnv()
	env.seedEvent("evt-1", "owner-1")
	env.seedTransaction("tx-1", "evt-1", "owner-1", 1000)

	amount := 1500.0
	replacement, _, err := env.svc.ReplacePayment(context.Background(), "owner-1", "evt-1", "tx-1", ReplacePaymentInput{
		Amount: &amount,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	balance, _ := env.repo.SumActiveTransactions(context.Background(), "evt-1")
	if balance != 1500 {
		t.Fatalf("expected balance 1500 (not 2500), got %v", balance)
	}
	if replacement.OldTransactionID == nil || *replacement.OldTransactionID != "tx-1" {
		t.Fatalf("expected replacement chained to tx-1, got %+v", replacement)
	}
}

func TestReplacePaymentCarriesForwardUnspecifiedFields(t *testing.T) {
	env := newTestEnv()
	env.seedEvent("evt-1", "owner-1")
	note := "deposit"
	old := env.seedTransaction("tx-1", "evt-1", "owner-1", 300)
	old.PaymentMethod = "card"
	old.Note = &note

	amount := 350.0
	replacement, _, err := env.svc.ReplacePayment(context.Background(), "owner-1", "evt-1", "tx-1", ReplacePaymentInput{
		Amount: &amount,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if replacement.PaymentMethod != "card" {
		t.Fatalf("expected method carried forward, got %q", replacement.PaymentMethod)
	}
	if replacement.Note == nil || *replacement.Note != "deposit" {
		t.Fatalf("expected note carried forward, got %v", replacement.Note)
	}
	if replacement.Amount != 350 {
		t.Fatalf("expected patched amount, got %v", replacement.Amount)
	}
}

func TestReplacePaymentAuditReferences(t *testing.T) {
	env := newTestEnv()
	env.seedEvent("evt-1", "owner-1")
	reference := "initial"
	old := env.seedTransaction("tx-1", "evt-1", "owner-1", 100)
	old.Reference = &reference

	amount := 200.0
	replacement, _, err := env.svc.ReplacePayment(context.Background(), "owner-1", "evt-1", "tx-1", ReplacePaymentInput{
		Amount: &amount,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	deleted := env.repo.transactions["tx-1"]
	if deleted.DeletedAt == nil {
		t.Fatalf("expected predecessor soft-deleted")
	}
	if deleted.Reference == nil ||
		!strings.HasPrefix(*deleted.Reference, "initial | Soft deleted because user requested update at ") {
		t.Fatalf("unexpected audit reference on predecessor: %v", deleted.Reference)
	}
	if replacement.Reference == nil ||
		*replacement.Reference != "Payment updated | Soft deleted transaction id: tx-1" {
		t.Fatalf("unexpected reference on replacement: %v", replacement.Reference)
	}
}

func TestReplacePaymentCustomReference(t *testing.T) {
	env := newTestEnv()
	env.seedEvent("evt-1", "owner-1")
	env.seedTransaction("tx-1", "evt-1", "owner-1", 100)

	custom := "corrected typo"
	replacement, _, err := env.svc.ReplacePayment(context.Background(), "owner-1", "evt-1", "tx-1", ReplacePaymentInput{
		Reference: &custom,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if replacement.Reference == nil ||
		*replacement.Reference != "corrected typo | Soft deleted transaction id: tx-1" {
		t.Fatalf("unexpected reference: %v", replacement.Reference)
	}
}

func TestReplacePaymentSecondReplaceFails(t *testing.T) {
	env := newTestEnv()
	env.seedEvent("evt-1", "owner-1")
	env.seedTransaction("tx-1", "evt-1", "owner-1", 100)

	amount := 200.0
	if _, _, err := env.svc.ReplacePayment(context.Background(), "owner-1", "evt-1", "tx-1", ReplacePaymentInput{Amount: &amount}); err != nil {
		t.Fatalf("first replace: expected no error, got %v", err)
	}

	// The predecessor is already claimed: a second replace against the same
	// id must fail instead of forking the chain.
	other := 300.0
	_, _, err := env.svc.ReplacePayment(context.Background(), "owner-1", "evt-1", "tx-1", ReplacePaymentInput{Amount: &other})
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}

	live, _ := env.repo.ListTransactionsByEvent(context.Background(), "evt-1")
	if len(live) != 1 {
		t.Fatalf("expected exactly one live transaction, got %d", len(live))
	}
}

func TestReplacePaymentValidation(t *testing.T) {
	env := newTestEnv()
	env.seedEvent("evt-1", "owner-1")
	env.seedTransaction("tx-1", "evt-1", "owner-1", 100)

	zero := 0.0
	_, _, err := env.svc.ReplacePayment(context.Background(), "owner-1", "evt-1", "tx-1", ReplacePaymentInput{Amount: &zero})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for zero amount, got %v", err)
	}

	empty := ""
	_, _, err = env.svc.ReplacePayment(context.Background(), "owner-1", "evt-1", "tx-1", ReplacePaymentInput{PaymentMethod: &empty})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for empty method, got %v", err)
	}

	if env.repo.transactions["tx-1"].DeletedAt != nil {
		t.Fatalf("rejected replace must not touch the original")
	}
}

func TestSoftDeletePayment(t *testing.T) {
	env := newTestEnv()
	env.seedEvent("evt-1", "owner-1")
	env.seedTransaction("tx-1", "evt-1", "owner-1", 400)

	result, err := env.svc.SoftDeletePayment(context.Background(), "owner-1", "evt-1", "tx-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Notified) == 0 {
		t.Fatalf("expected fan-out invoked")
	}

	deleted := env.repo.transactions["tx-1"]
	if deleted.DeletedAt == nil {
		t.Fatalf("expected transaction soft-deleted")
	}
	if deleted.Reference == nil || !strings.HasPrefix(*deleted.Reference, "Soft deleted by user at ") {
		t.Fatalf("unexpected audit reference: %v", deleted.Reference)
	}

	balance, _ := env.repo.SumActiveTransactions(context.Background(), "evt-1")
	if balance != 0 {
		t.Fatalf("expected balance 0 after delete, got %v", balance)
	}

	// Deleting again reads as not-found.
	_, err = env.svc.SoftDeletePayment(context.Background(), "owner-1", "evt-1", "tx-1")
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestPaymentHistoryWalksChain(t *testing.T) {
	env := newTestEnv()
	env.seedEvent("evt-1", "owner-1")
	env.seedTransaction("tx-1", "evt-1", "owner-1", 100)

	first := 200.0
	mid, _, err := env.svc.ReplacePayment(context.Background(), "owner-1", "evt-1", "tx-1", ReplacePaymentInput{Amount: &first})
	if err != nil {
		t.Fatalf("first replace: %v", err)
	}
	second := 300.0
	head, _, err := env.svc.ReplacePayment(context.Background(), "owner-1", "evt-1", mid.ID, ReplacePaymentInput{Amount: &second})
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}

	chain, err := env.svc.PaymentHistory(context.Background(), "owner-1", "evt-1", head.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("expected chain of 3, got %d", len(chain))
	}
	if chain[0].ID != head.ID || chain[1].ID != mid.ID || chain[2].ID != "tx-1" {
		t.Fatalf("unexpected chain order: %s, %s, %s", chain[0].ID, chain[1].ID, chain[2].ID)
	}
	if chain[2].Amount != 100 {
		t.Fatalf("expected original amount preserved in history, got %v", chain[2].Amount)
	}
}

func TestPaymentHistoryReadAccessSuffices(t *testing.T) {
	env := newTestEnv()
	env.grants.seed("owner-1", "member-1", access.LevelRead)
	env.seedEvent("evt-1", "owner-1")
	env.seedTransaction("tx-1", "evt-1", "owner-1", 100)

	chain, err := env.svc.PaymentHistory(context.Background(), "member-1", "evt-1", "tx-1")
	if err != nil {
		t.Fatalf("expected read grant to allow history, got %v", err)
	}
	if len(chain) != 1 {
		t.Fatalf("expected single-record chain, got %d", len(chain))
	}

	_, err = env.svc.PaymentHistory(context.Background(), "stranger", "evt-1", "tx-1")
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPaymentHistoryUnknownTransaction(t *testing.T) {
	env := newTestEnv()
	env.seedEvent("evt-1", "owner-1")

	_, err := env.svc.PaymentHistory(context.Background(), "owner-1", "evt-1", "missing")
	if !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("expected ErrTransactionNotFound, got %v", err)
	}
}
