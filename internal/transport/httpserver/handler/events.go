package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	accessdomain "booking-ledger-go/internal/domain/access"
	ledgerdomain "booking-ledger-go/internal/domain/ledger"
	notificationsdomain "booking-ledger-go/internal/domain/notifications"
	"booking-ledger-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createEventRequest struct {
	Name              string     `json:"name"`
	Category          string     `json:"category"`
	Venue             *string    `json:"venue"`
	EventDate         *time.Time `json:"event_date"`
	Status            int        `json:"status"`
	Priority          string     `json:"priority"`
	BookingTotalValue float64    `json:"booking_total_value"`
	AdvancePayment    float64    `json:"advance_payment"`
	PaymentMethod     string     `json:"payment_method"`
}

type updateEventRequest struct {
	Name              *string    `json:"name"`
	Category          *string    `json:"category"`
	Venue             *string    `json:"venue"`
	EventDate         *time.Time `json:"event_date"`
	Status            *int       `json:"status"`
	Priority          *string    `json:"priority"`
	BookingTotalValue *float64   `json:"booking_total_value"`
	AdvancePayment    *float64   `json:"advance_payment"`
}

type updateEventStatusRequest struct {
	Status   *int    `json:"status"`
	Priority *string `json:"priority"`
}

type eventResponse struct {
	ID                string                `json:"id"`
	OwnerID           string                `json:"owner_id"`
	CreatedBy         string                `json:"created_by"`
	UpdatedBy         *string               `json:"updated_by,omitempty"`
	CategoryID        string                `json:"category_id"`
	Name              string                `json:"name"`
	Venue             *string               `json:"venue,omitempty"`
	EventDate         *time.Time            `json:"event_date,omitempty"`
	Status            int                   `json:"status"`
	Priority          string                `json:"priority"`
	BookingTotalValue float64               `json:"booking_total_value"`
	AdvancePayment    float64               `json:"advance_payment"`
	Balance           float64               `json:"balance"`
	Transactions      []transactionResponse `json:"transactions"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

type eventListResponse struct {
	Items []eventResponse `json:"items"`
}

type eventMutationResponse struct {
	Event    eventResponse `json:"event"`
	Notified []string      `json:"notified"`
	Warning  string        `json:"delivery_warning,omitempty"`
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	items, err := h.Ledger.ListAccessible(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("events.list: list failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]eventResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toEventResponse(item))
	}
	writeJSON(w, http.StatusOK, eventListResponse{Items: response})
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	input := ledgerdomain.CreateEventInput{
		Name:              req.Name,
		CategoryName:      req.Category,
		Venue:             req.Venue,
		EventDate:         req.EventDate,
		Status:            req.Status,
		Priority:          req.Priority,
		BookingTotalValue: req.BookingTotalValue,
		AdvancePayment:    req.AdvancePayment,
		PaymentMethod:     req.PaymentMethod,
	}

	created, err := h.Ledger.Create(r.Context(), user.ID, input)
	if err != nil {
		h.writeEventError(w, "events.create", user.ID, "", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(*created))
}

func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
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

	item, err := h.Ledger.GetByID(r.Context(), user.ID, eventID)
	if err != nil {
		h.writeEventError(w, "events.get", user.ID, eventID, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(*item))
}

func (h *Handlers) UpdateEventStatus(w http.ResponseWriter, r *http.Request) {
	var req updateEventStatusRequest
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

	input := ledgerdomain.UpdateStatusPriorityInput{Status: req.Status, Priority: req.Priority}
	event, result, err := h.Ledger.UpdateStatusPriority(r.Context(), user.ID, eventID, input)
	if err != nil {
		h.writeEventError(w, "events.status", user.ID, eventID, err)
		return
	}

	writeJSON(w, http.StatusOK, eventMutationResponse{
		Event:    toEventResponse(ledgerdomain.EventWithTransactions{Event: *event}),
		Notified: notifiedList(result),
		Warning:  result.Warning,
	})
}

func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
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

	patch := ledgerdomain.UpdateEventInput{
		Name:              req.Name,
		CategoryName:      req.Category,
		Venue:             req.Venue,
		EventDate:         req.EventDate,
		Status:            req.Status,
		Priority:          req.Priority,
		BookingTotalValue: req.BookingTotalValue,
		AdvancePayment:    req.AdvancePayment,
	}

	event, err := h.Ledger.UpdateFields(r.Context(), user.ID, eventID, patch)
	if err != nil {
		h.writeEventError(w, "events.update", user.ID, eventID, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(ledgerdomain.EventWithTransactions{Event: *event}))
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Ledger.SoftDelete(r.Context(), user.ID, eventID); err != nil {
		h.writeEventError(w, "events.delete", user.ID, eventID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeEventError maps ledger and access errors onto the HTTP taxonomy:
// validation 400, forbidden 403, not-found 404, already-deleted 409,
// everything else 500.
func (h *Handlers) writeEventError(w http.ResponseWriter, op, userID, eventID string, err error) {
	var validation *ledgerdomain.ValidationError
	switch {
	case errors.As(err, &validation):
		h.log.BusinessError(op+": invalid request", err, "user_id", userID, "event_id", eventID)
		writeError(w, http.StatusBadRequest, "invalid_request", validation.Error())
	case errors.Is(err, accessdomain.ErrForbidden):
		h.log.BusinessError(op+": forbidden", err, "user_id", userID, "event_id", eventID)
		writeError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, ledgerdomain.ErrEventNotFound):
		h.log.BusinessError(op+": event not found", err, "user_id", userID, "event_id", eventID)
		writeError(w, http.StatusNotFound, "event_not_found", "event not found")
	case errors.Is(err, ledgerdomain.ErrTransactionNotFound):
		h.log.BusinessError(op+": transaction not found", err, "user_id", userID, "event_id", eventID)
		writeError(w, http.StatusNotFound, "transaction_not_found", "transaction not found")
	case errors.Is(err, ledgerdomain.ErrEventAlreadyDeleted):
		h.log.BusinessError(op+": event already deleted", err, "user_id", userID, "event_id", eventID)
		writeError(w, http.StatusConflict, "event_already_deleted", "event already deleted")
	default:
		h.log.InternalError(op+": failed", err, "user_id", userID, "event_id", eventID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func notifiedList(result notificationsdomain.Result) []string {
	if result.Notified == nil {
		return []string{}
	}
	return result.Notified
}

func toEventResponse(item ledgerdomain.EventWithTransactions) eventResponse {
	transactions := make([]transactionResponse, 0, len(item.Transactions))
	for _, transaction := range item.Transactions {
		transactions = append(transactions, toTransactionResponse(transaction))
	}
	return eventResponse{
		ID:                item.ID,
		OwnerID:           item.OwnerID,
		CreatedBy:         item.CreatedBy,
		UpdatedBy:         item.UpdatedBy,
		CategoryID:        item.CategoryID,
		Name:              item.Name,
		Venue:             item.Venue,
		EventDate:         item.EventDate,
		Status:            item.Status,
		Priority:          item.Priority,
		BookingTotalValue: item.BookingTotalValue,
		AdvancePayment:    item.AdvancePayment,
		Balance:           item.Balance,
		Transactions:      transactions,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}
