package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/snapplace/server/internal/auth"
	"github.com/snapplace/server/internal/config"
	"github.com/snapplace/server/internal/httputil"
	"github.com/snapplace/server/internal/logging"
	"github.com/snapplace/server/internal/place"
	"github.com/snapplace/server/internal/push"
	"github.com/snapplace/server/internal/vote"
)

// RouterDeps bundles everything the router wires together.
type RouterDeps struct {
	Config       *config.Config
	Logger       *logging.Logger
	AuthHandler  *auth.Handler
	PlaceHandler *place.Handler
	VoteHandler  *vote.Handler
	PushHandler  *push.Handler
	Tokens       *auth.PasetoService
	Sessions     auth.Sessions
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(deps.Config.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.Config.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)                    // Security headers on all responses
	r.Use(middleware.Recoverer)               // Recover from panics
	r.Use(middleware.RequestID)               // Add request ID
	r.Use(middleware.RealIP)                  // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(deps.Logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))             // Compress responses

	// Public routes
	r.Get("/health", handleHealth)
	r.Get("/vapid-public-key", deps.PushHandler.PublicKey)

	r.Post("/register", deps.AuthHandler.Register)
	r.Post("/login", deps.AuthHandler.Login)
	r.Post("/resend-2fa", deps.AuthHandler.Resend2FA)
	r.Post("/verify-2fa", deps.AuthHandler.Verify2FA)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Tokens, deps.Sessions))

		r.Post("/logout", deps.AuthHandler.Logout)
		r.Get("/me", deps.AuthHandler.Me)

		r.Post("/places", deps.PlaceHandler.Create)

		r.Post("/votes", deps.VoteHandler.Cast)
		r.Get("/votes", deps.VoteHandler.List)
		r.Get("/votes/{place_id}", deps.VoteHandler.Status)
		r.Delete("/votes/{place_id}", deps.VoteHandler.Retract)

		r.Post("/save-subscription", deps.PushHandler.Save)
		r.Post("/delete-subscription", deps.PushHandler.Delete)
	})

	return r
}

// handleHealth is a simple health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
