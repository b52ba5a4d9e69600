package handler

import (
	"net/http"
	"strings"
	"time"

	ledgerdomain "booking-ledger-go/internal/domain/ledger"
	"booking-ledger-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type addPaymentRequest struct {
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Reference     *string `json:"reference"`
	Note          *string `json:"note"`
}

type replacePaymentRequest struct {
	Amount        *float64 `json:"amount"`
	PaymentMethod *string  `json:"payment_method"`
	Reference     *string  `json:"reference"`
	Note          *string  `json:"note"`
}

type transactionResponse struct {
	ID               string     `json:"id"`
	EventID          string     `json:"event_id"`
	AddedBy          string     `json:"added_by"`
	Amount           float64    `json:"amount"`
	PaymentMethod    string     `json:"payment_method"`
	Reference        *string    `json:"reference,omitempty"`
	Note             *string    `json:"note,omitempty"`
	OldTransactionID *string    `json:"old_transaction_id,omitempty"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type transactionMutationResponse struct {
	Transaction transactionResponse `json:"transaction"`
	Notified    []string            `json:"notified"`
	Warning     string              `json:"delivery_warning,omitempty"`
}

type deletePaymentResponse struct {
	Notified []string `json:"notified"`
	Warning  string   `json:"delivery_warning,omitempty"`
}

type transactionHistoryResponse struct {
	Items []transactionResponse `json:"items"`
}

func (h *Handlers) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req addPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	eventID := strings.TrimSpace(chi.URLParam(r, "id"))
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	input := ledgerdomain.AddPaymentInput{
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Note:          req.Note,
	}

	transaction, result, err := h.Ledger.AddPayment(r.Context(), user.ID, eventID, input)
	if err != nil {
		h.writeEventError(w, "transactions.add", user.ID, eventID, err)
		return
	}

	writeJSON(w, http.StatusCreated, transactionMutationResponse{
		Transaction: toTransactionResponse(*transaction),
		Notified:    notifiedList(result),
		Warning:     result.Warning,
	})
}

func (h *Handlers) ReplacePayment(w http.ResponseWriter, r *http.Request) {
	var req replacePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	eventID := strings.TrimSpace(chi.URLParam(r, "id"))
	transactionID := strings.TrimSpace(chi.URLParam(r, "transaction_id"))
	if eventID == "" || transactionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id and transaction_id are required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	patch := ledgerdomain.ReplacePaymentInput{
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Note:          req.Note,
	}

	replacement, result, err := h.Ledger.ReplacePayment(r.Context(), user.ID, eventID, transactionID, patch)
	if err != nil {
		h.writeEventError(w, "transactions.replace", user.ID, eventID, err)
		return
	}

	writeJSON(w, http.StatusOK, transactionMutationResponse{
		Transaction: toTransactionResponse(*replacement),
		Notified:    notifiedList(result),
		Warning:     result.Warning,
	})
}

func (h *Handlers) DeletePayment(w http.ResponseWriter, r *http.Request) {
	eventID := strings.TrimSpace(chi.URLParam(r, "id"))
	transactionID := strings.TrimSpace(chi.URLParam(r, "transaction_id"))
	if eventID == "" || transactionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id and transaction_id are required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	result, err := h.Ledger.SoftDeletePayment(r.Context(), user.ID, eventID, transactionID)
	if err != nil {
		h.writeEventError(w, "transactions.delete", user.ID, eventID, err)
		return
	}

	writeJSON(w, http.StatusOK, deletePaymentResponse{
		Notified: notifiedList(result),
		Warning:  result.Warning,
	})
}

func (h *Handlers) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	eventID := strings.TrimSpace(chi.URLParam(r, "id"))
	transactionID := strings.TrimSpace(chi.URLParam(r, "transaction_id"))
	if eventID == "" || transactionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id and transaction_id are required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	chain, err := h.Ledger.PaymentHistory(r.Context(), user.ID, eventID, transactionID)
	if err != nil {
		h.writeEventError(w, "transactions.history", user.ID, eventID, err)
		return
	}

	items := make([]transactionResponse, 0, len(chain))
	for _, transaction := range chain {
		items = append(items, toTransactionResponse(transaction))
	}
	writeJSON(w, http.StatusOK, transactionHistoryResponse{Items: items})
}

func toTransactionResponse(transaction ledgerdomain.Transaction) transactionResponse {
	return transactionResponse{
		ID:               transaction.ID,
		EventID:          transaction.EventID,
		AddedBy:          transaction.AddedBy,
		Amount:           transaction.Amount,
		PaymentMethod:    transaction.PaymentMethod,
		Reference:        transaction.Reference,
		Note:             transaction.Note,
		OldTransactionID: transaction.OldTransactionID,
		DeletedAt:        transaction.DeletedAt,
		CreatedAt:        transaction.CreatedAt,
	}
}
