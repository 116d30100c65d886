package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/service"
)

// OperatorTicketsHandler serves the operator queue and the claim workflow.
type OperatorTicketsHandler struct {
	tickets *service.TicketService
	queries *service.TicketQueryService
}

// NewOperatorTicketsHandler constructs handler.
func NewOperatorTicketsHandler(tickets *service.TicketService, queries *service.TicketQueryService) *OperatorTicketsHandler {
	return &OperatorTicketsHandler{tickets: tickets, queries: queries}
}

// Queue GET /operator/queue.
func (h *OperatorTicketsHandler) Queue(c *fiber.Ctx) error {
	views, err := h.queries.ListQueue(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketViewResponses(views)})
}

// Assigned GET /operator/tickets?status=.
func (h *OperatorTicketsHandler) Assigned(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	status, err := service.ParseTicketStatus(c.Query("status"))
	if err != nil {
		return err
	}
	views, err := h.queries.ListAssigned(c.UserContext(), staff.ID, service.TicketListOptions{Status: status})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketViewResponses(views)})
}

// DownloadAttachment GET /operator/tickets/:id/attachment.
func (h *OperatorTicketsHandler) DownloadAttachment(c *fiber.Ctx) error {
	att, err := h.queries.GetAttachment(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return sendAttachment(c, att)
}

// Claim POST /operator/tickets/:id/claim.
func (h *OperatorTicketsHandler) Claim(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.Claim(c.UserContext(), c.Params("id"), staff)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, "")})
}

// Resolve POST /operator/tickets/:id/resolve. Only the assigned operator may resolve.
func (h *OperatorTicketsHandler) Resolve(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.ResolveAssigned(c.UserContext(), c.Params("id"), staff.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, "")})
}

// Release POST /operator/tickets/:id/release. Only the assigned operator may release.
func (h *OperatorTicketsHandler) Release(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.ReleaseAssigned(c.UserContext(), c.Params("id"), staff.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, "")})
}
