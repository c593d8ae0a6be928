package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/portalworks/portal-auth/internal/api/http/handlers"
	"github.com/portalworks/portal-auth/internal/auth"
	"github.com/portalworks/portal-auth/internal/domain"
	"github.com/portalworks/portal-auth/internal/ratelimit"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Accounts       *handlers.AccountHandler
	Profile        *handlers.ProfileHandler
	AuthMiddleware *auth.AuthMiddleware
	CSRF           *auth.CSRFManager
	Throttle       *ratelimit.IPThrottle
	Metrics        http.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	authenticated := cfg.AuthMiddleware.RequireAuthenticated
	csrf := auth.RequireCSRF(cfg.CSRF)

	throttle := ThrottleByIP(cfg.Throttle)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", throttle, cfg.Auth.Register)
	authGroup.Post("/login", throttle, cfg.Auth.Login)
	authGroup.Post("/password/reset/request", throttle, cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", throttle, cfg.Auth.ConfirmPasswordReset)

	authGroup.Get("/session", authenticated, cfg.Auth.Session)
	authGroup.Post("/logout", cfg.AuthMiddleware.OptionalAuthenticated, auth.RequireCSRFWhenAuthenticated(cfg.CSRF), cfg.Auth.Logout)
	authGroup.Post("/password/change", authenticated, csrf, cfg.Auth.ChangePassword)

	me := app.Group("/me", authenticated, csrf)
	me.Put("/photo", cfg.Profile.UploadPhoto)
	me.Get("/activity", cfg.Profile.Activity)

	admin := app.Group("/admin", authenticated, auth.RequireRole(domain.RoleAdmin), csrf)
	admin.Get("/users", cfg.Accounts.List)
	admin.Patch("/users/:id/status", cfg.Accounts.UpdateStatus)
}
