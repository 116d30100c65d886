package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler manages customer ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	queries *service.TicketQueryService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, queries *service.TicketQueryService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, queries: queries}
}

// CreateTicket POST /tickets. Accepts multipart with an optional "attachment" part, or JSON.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	customer, err := customerPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.CategoryID) == "" {
		return apperrors.NewInvalidCategory("category_id is required", nil)
	}

	att, err := readAttachment(c)
	if err != nil {
		return err
	}

	ticket, err := h.tickets.Create(c.UserContext(), customer.ID, service.TicketCreateInput{
		Title:      req.Title,
		Body:       req.Body,
		CategoryID: req.CategoryID,
		Attachment: att,
	})
	if err != nil {
		return err
	}
	view, err := h.queries.GetTicket(c.UserContext(), ticket.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(view.Ticket, view.CategoryName)})
}

// ListTickets GET /tickets?status=&order=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	customer, err := customerPrincipal(c)
	if err != nil {
		return err
	}
	status, err := service.ParseTicketStatus(c.Query("status"))
	if err != nil {
		return err
	}
	views, err := h.queries.ListCustomerTickets(c.UserContext(), customer.ID, service.TicketListOptions{
		Status: status,
		Order:  repository.ParseSortOrder(c.Query("order")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketViewResponses(views)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	view, err := h.ownedTicket(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(view.Ticket, view.CategoryName)})
}

// DownloadAttachment GET /tickets/:id/attachment.
func (h *TicketsHandler) DownloadAttachment(c *fiber.Ctx) error {
	view, err := h.ownedTicket(c)
	if err != nil {
		return err
	}
	att, err := h.queries.GetAttachment(c.UserContext(), view.Ticket.ID)
	if err != nil {
		return err
	}
	return sendAttachment(c, att)
}

// CancelTicket POST /tickets/:id/cancel.
func (h *TicketsHandler) CancelTicket(c *fiber.Ctx) error {
	customer, err := customerPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.CancelOwned(c.UserContext(), c.Params("id"), customer.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket, "")})
}

// ownedTicket hides other customers' tickets behind NOT_FOUND.
func (h *TicketsHandler) ownedTicket(c *fiber.Ctx) (service.TicketView, error) {
	customer, err := customerPrincipal(c)
	if err != nil {
		return service.TicketView{}, err
	}
	id := c.Params("id")
	view, err := h.queries.GetTicket(c.UserContext(), id)
	if err != nil {
		return service.TicketView{}, err
	}
	if view.Ticket.CustomerID != customer.ID {
		return service.TicketView{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return view, nil
}

func readAttachment(c *fiber.Ctx) (*service.AttachmentInput, error) {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	files := form.File["attachment"]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewInvalidAttachment("attachment could not be read", map[string]any{"reason": "unreadable"})
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewInvalidAttachment("attachment could not be read", map[string]any{"reason": "unreadable"})
	}
	return &service.AttachmentInput{FileName: fh.Filename, Content: content}, nil
}
