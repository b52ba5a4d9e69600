package httpserver

import (
	"net/http"
	"time"

	"booking-ledger-go/internal/config"
	"booking-ledger-go/internal/transport/httpserver/handler"
	authmw "booking-ledger-go/internal/transport/httpserver/middleware"
	"booking-ledger-go/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, profiles authmw.ProfileSaver, log logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORS.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		auth := authmw.NewJWTAuth(cfg.Auth, profiles, log)
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.AuthMe)

			r.Get("/grants", handlers.ListGrants)
			r.Post("/grants", handlers.CreateGrant)
			r.Delete("/grants/{member_id}", handlers.RevokeGrant)
			r.Get("/memberships", handlers.ListMemberships)

			r.Get("/events", handlers.ListEvents)
			r.Post("/events", handlers.CreateEvent)
			r.Get("/events/{id}", handlers.GetEvent)
			r.Put("/events/{id}", handlers.UpdateEvent)
			r.Patch("/events/{id}/status", handlers.UpdateEventStatus)
			r.Delete("/events/{id}", handlers.DeleteEvent)

			r.Post("/events/{id}/transactions", handlers.AddPayment)
			r.Put("/events/{id}/transactions/{transaction_id}", handlers.ReplacePayment)
			r.Delete("/events/{id}/transactions/{transaction_id}", handlers.DeletePayment)
			r.Get("/events/{id}/transactions/{transaction_id}/history", handlers.PaymentHistory)

			r.Get("/notifications", handlers.ListNotifications)
			r.Post("/notifications/{id}/read", handlers.MarkNotificationRead)

			r.Get("/ws", handlers.ConnectPush)
		})
	})

	return r
}
