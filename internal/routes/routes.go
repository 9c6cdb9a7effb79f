package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/tasktrack/internal/auth"
	"github.com/BradenHooton/tasktrack/internal/handlers"
	"github.com/BradenHooton/tasktrack/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	taskHandler *handlers.TaskHandler,
	verify auth.VerifyFunc,
	rateLimitConfig middleware.RateLimitConfig,
) {
	router.Get("/", healthHandler.Root)
	router.Get("/health", healthHandler.Health)

	router.Route("/api", func(r chi.Router) {
		// Public routes, throttled per client IP
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(rateLimitConfig))
			r.Post("/auth/signup", authHandler.Signup)
			r.Post("/auth/signin", authHandler.Signin)
		})

		// Protected routes - bearer token required
		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(verify))

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)
			taskHandler.RegisterRoutes(r)
		})
	})
}
