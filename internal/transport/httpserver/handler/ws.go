package handler

import (
	"net/http"

	"booking-ledger-go/internal/transport/httpserver/middleware"
)

// ConnectPush upgrades the request to a websocket session used for push
// notification delivery.
func (h *Handlers) ConnectPush(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if err := h.Push.Attach(w, r, user.ID); err != nil {
		h.log.Warn("push: websocket upgrade failed", "error", err, "user_id", user.ID)
	}
}
