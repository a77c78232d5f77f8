package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/http/handlers"
	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Users          *handlers.UsersHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": cfg.Metrics.Snapshot()})
	})

	app.Get("/", cfg.AuthMiddleware.Optional, cfg.Auth.Index)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireIdentity())
	protected.Get("/dashboard", cfg.Tickets.Dashboard)

	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Post("/tickets/:id/update", cfg.Tickets.UpdateTicket)
	protected.Get("/tickets/:id/comments", cfg.Comments.ListComments)
	protected.Post("/tickets/:id/comments", cfg.Comments.AddComment)
	protected.Post("/tickets/:id/comments_ajax", cfg.Comments.AddCommentAjax)

	protected.Get("/users", cfg.Users.ListUsers)
	protected.Post("/users/:id/role", cfg.Users.ChangeRole)
}
