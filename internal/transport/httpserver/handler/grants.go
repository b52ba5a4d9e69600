package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	accessdomain "booking-ledger-go/internal/domain/access"
	"booking-ledger-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type grantRequest struct {
	MemberID string `json:"member_id"`
	Level    string `json:"level"`
}

type grantResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	MemberID  string    `json:"member_id"`
	Level     string    `json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Handlers) CreateGrant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	grant, err := h.Access.Grant(r.Context(), user.ID, req.MemberID, req.Level)
	if err != nil {
		var validation *accessdomain.ValidationError
		if errors.As(err, &validation) {
			h.log.BusinessError("grants.create: invalid request", err, "user_id", user.ID)
			writeError(w, http.StatusBadRequest, "invalid_request", validation.Error())
			return
		}
		h.log.InternalError("grants.create: upsert failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toGrantResponse(*grant))
}

func (h *Handlers) ListGrants(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	grants, err := h.Access.ListMembers(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("grants.list: list failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toGrantListResponse(grants))
}

func (h *Handlers) ListMemberships(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	grants, err := h.Access.Memberships(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("grants.memberships: list failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toGrantListResponse(grants))
}

func (h *Handlers) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	memberID := strings.TrimSpace(chi.URLParam(r, "member_id"))
	if memberID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "member_id is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if err := h.Access.Revoke(r.Context(), user.ID, memberID); err != nil {
		if errors.Is(err, accessdomain.ErrGrantNotFound) {
			h.log.BusinessError("grants.revoke: grant not found", err, "user_id", user.ID, "member_id", memberID)
			writeError(w, http.StatusNotFound, "grant_not_found", "grant not found")
			return
		}
		h.log.InternalError("grants.revoke: delete failed", err, "user_id", user.ID, "member_id", memberID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toGrantResponse(grant accessdomain.Grant) grantResponse {
	return grantResponse{
		ID:        grant.ID,
		OwnerID:   grant.OwnerID,
		MemberID:  grant.MemberID,
		Level:     grant.Level,
		CreatedAt: grant.CreatedAt,
		UpdatedAt: grant.UpdatedAt,
	}
}

func toGrantListResponse(grants []accessdomain.Grant) map[string][]grantResponse {
	items := make([]grantResponse, 0, len(grants))
	for _, grant := range grants {
		items = append(items, toGrantResponse(grant))
	}
	return map[string][]grantResponse{"items": items}
}
