package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/idalmas/chatterbox-be/internal/api/handlers"
	"github.com/idalmas/chatterbox-be/internal/auth"
	"github.com/idalmas/chatterbox-be/internal/config"
	"github.com/idalmas/chatterbox-be/internal/mail"
	"github.com/idalmas/chatterbox-be/internal/services"
)

// NewRouter creates and configures a new Chi router. The outbox is nil in
// production, which leaves the dev mail preview endpoint unmounted.
func NewRouter(cfg *config.Config, tokens *auth.TokenIssuer, authService *services.AuthService, userService services.UserServiceProvider, eventService services.EventServiceProvider, outbox *mail.Outbox) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for the SPA origin
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	dev := !cfg.IsProduction()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService, tokens, dev)
	eventHandler := handlers.NewEventHandler(eventService, dev)
	healthHandler := handlers.NewHealthHandler()

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Get)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/verify-otp", authHandler.VerifyOtp)
			r.Post("/resend-otp", authHandler.ResendOtp)
			r.Post("/logout", authHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(tokens.Middleware())
				r.Get("/check-auth", authHandler.CheckAuth)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(tokens.Middleware())
			r.Get("/events", eventHandler.GetRecent)
		})

		if dev && outbox != nil {
			devMailHandler := handlers.NewDevMailHandler(outbox)
			r.Get("/dev/mail/{id}", devMailHandler.Get)
		}
	})

	return r
}
