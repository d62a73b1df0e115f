package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/studydeck/studydeck-server/internal/auth"
	"github.com/studydeck/studydeck-server/internal/domain"
	"github.com/studydeck/studydeck-server/internal/service"
	"github.com/studydeck/studydeck-server/pkg/health"
	"github.com/studydeck/studydeck-server/pkg/middleware"
)

// RouterConfig carries the non-service inputs to NewRouter.
type RouterConfig struct {
	CORS              middleware.CORSConfig
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all server routes registered.
func NewRouter(
	userService *service.UserService,
	flashcardService *service.FlashcardService,
	adminService *service.AdminService,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("studydeck"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}

	userHandler := NewUserHandler(userService, logger)
	flashcardHandler := NewFlashcardHandler(flashcardService, logger)
	adminHandler := NewAdminHandler(adminService, logger)

	// Registration and login (public)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Get("/profile", userHandler.GetProfile)
		})
	})

	// Flashcard sets
	r.Route("/api/v1/flashcards", func(r chi.Router) {
		// Browsing needs no token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(30))

			r.Get("/", flashcardHandler.List)
			r.Get("/{id}", flashcardHandler.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/", flashcardHandler.Create)
			r.Put("/{id}", flashcardHandler.Update)
			r.Delete("/{id}", flashcardHandler.Delete)
			r.Post("/{id}/rate", flashcardHandler.Rate)
			r.Post("/{id}/reviews", flashcardHandler.AddReview)
		})
	})

	// Admin endpoints (admin role required)
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))
		r.Use(middleware.RequireRole(domain.RoleAdmin))

		r.Get("/dashboard", adminHandler.Dashboard)
	})

	return r
}
