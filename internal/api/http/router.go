package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Tickets         *handlers.TicketsHandler
	OperatorTickets *handlers.OperatorTicketsHandler
	Categories      *handlers.CategoriesHandler
	Users           *handlers.UsersHandler
	Staff           *handlers.StaffHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Post("/auth/register", cfg.Users.Register)

	app.Get("/categories", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Categories.ListEnabled)

	customer := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireCustomer())
	customer.Post("/", cfg.Tickets.CreateTicket)
	customer.Get("/", cfg.Tickets.ListTickets)
	customer.Get("/:id", cfg.Tickets.GetTicket)
	customer.Get("/:id/attachment", cfg.Tickets.DownloadAttachment)
	customer.Post("/:id/cancel", cfg.Tickets.CancelTicket)

	operator := app.Group("/operator", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleOperator))
	operator.Get("/queue", cfg.OperatorTickets.Queue)
	operator.Get("/tickets", cfg.OperatorTickets.Assigned)
	operator.Get("/tickets/:id/attachment", cfg.OperatorTickets.DownloadAttachment)
	operator.Post("/tickets/:id/claim", cfg.OperatorTickets.Claim)
	operator.Post("/tickets/:id/resolve", cfg.OperatorTickets.Resolve)
	operator.Post("/tickets/:id/release", cfg.OperatorTickets.Release)

	manager := app.Group("/manager", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleManager))
	manager.Get("/categories", cfg.Categories.List)
	manager.Post("/categories", cfg.Categories.Create)
	manager.Put("/categories/:id", cfg.Categories.Rename)
	manager.Post("/categories/:id/enable", cfg.Categories.Enable)
	manager.Post("/categories/:id/disable", cfg.Categories.Disable)
	manager.Get("/operators", cfg.Staff.ListOperators)
	manager.Post("/operators", cfg.Staff.CreateOperator)
}
