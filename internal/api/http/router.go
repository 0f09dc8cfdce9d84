package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sms-support-bridge/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Webhook *handlers.WebhookHandler
	Admin   *handlers.AdminHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/webhook", cfg.Webhook.Receive)

	app.Get("/admin", cfg.Admin.ListOpen)
	app.Post("/reply", cfg.Admin.Reply)
}
