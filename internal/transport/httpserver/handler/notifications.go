package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	notificationsdomain "booking-ledger-go/internal/domain/notifications"
	"booking-ledger-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type notificationResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type notificationListResponse struct {
	Items []notificationResponse `json:"items"`
}

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
			return
		}
		limit = parsed
	}

	items, err := h.Notifications.List(r.Context(), user.ID, limit)
	if err != nil {
		h.log.InternalError("notifications.list: list failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]notificationResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toNotificationResponse(item))
	}
	writeJSON(w, http.StatusOK, notificationListResponse{Items: response})
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notificationID := strings.TrimSpace(chi.URLParam(r, "id"))
	if notificationID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if err := h.Notifications.MarkRead(r.Context(), user.ID, notificationID); err != nil {
		if errors.Is(err, notificationsdomain.ErrNotificationNotFound) {
			h.log.BusinessError("notifications.read: not found", err, "user_id", user.ID, "notification_id", notificationID)
			writeError(w, http.StatusNotFound, "notification_not_found", "notification not found")
			return
		}
		h.log.InternalError("notifications.read: mark failed", err, "user_id", user.ID, "notification_id", notificationID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toNotificationResponse(item notificationsdomain.Notification) notificationResponse {
	return notificationResponse{
		ID:        item.ID,
		Title:     item.Title,
		Message:   item.Message,
		Data:      json.RawMessage(item.Data),
		IsRead:    item.IsRead,
		ReadAt:    item.ReadAt,
		CreatedAt: item.CreatedAt,
	}
}
