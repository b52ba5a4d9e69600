package handler

import (
	"errors"
	"net/http"

	userdomain "booking-ledger-go/internal/domain/user"
	"booking-ledger-go/internal/transport/httpserver/middleware"
)

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type authMeResponse struct {
	ID        string  `json:"id"`
	Email     *string `json:"email"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	response := authMeResponse{ID: user.ID}
	profile, err := h.Users.GetProfile(r.Context(), user.ID)
	if err != nil && !errors.Is(err, userdomain.ErrProfileNotFound) {
		h.log.InternalError("auth.me: get profile failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}
	if profile != nil {
		response.Email = profile.Email
		response.FullName = profile.FullName
		response.AvatarURL = profile.AvatarURL
	}

	writeJSON(w, http.StatusOK, response)
}
