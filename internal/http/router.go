package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/go-accounts-api/internal/auth"
	"github.com/redmonkez12/go-accounts-api/internal/config"
	"github.com/redmonkez12/go-accounts-api/internal/httputil"
	"github.com/redmonkez12/go-accounts-api/internal/logging"
)

// StaticDir serves files from Dir under URLPrefix
type StaticDir struct {
	URLPrefix string
	Dir       string
}

// NewRouter creates and configures the HTTP router. avatars may be nil when
// avatars are not served by this process.
func NewRouter(cfg *config.Config, authHandler *auth.Handler, authMiddleware *auth.Middleware, avatars *StaticDir, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(TrustedRealIP(cfg.Server.TrustedProxies))
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondMessage(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondMessage(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	if avatars != nil {
		prefix := avatars.URLPrefix
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", noDirListing(http.FileServer(http.Dir(avatars.Dir)))))
	}

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Get("/verify/{token}", authHandler.VerifyEmail)
		r.Post("/verify/{token}", authHandler.ResendVerification)
		r.Post("/verify", authHandler.ResendVerificationByEmail)

		// Protected routes (require a live session)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.Post("/logout", authHandler.Logout)
			r.Get("/current", authHandler.Current)
			r.Patch("/", authHandler.UpdateSubscription)
			r.Patch("/avatars", authHandler.UpdateAvatar)
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} httputil.Envelope
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondMessage(w, "api is running", http.StatusOK)
}
