package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func customerPrincipal(c *fiber.Ctx) (*domain.Customer, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Customer == nil {
		return nil, apperrors.NewUnauthorized("customer required")
	}
	return principal.Customer, nil
}

func staffPrincipal(c *fiber.Ctx) (*domain.StaffMember, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return principal.Staff, nil
}

func ticketResponse(ticket domain.Ticket, categoryName string) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:           ticket.ID,
		ExternalKey:  ticket.ExternalKey,
		Title:        ticket.Title,
		Body:         ticket.Body,
		Status:       ticket.Status,
		CategoryID:   ticket.CategoryID,
		CategoryName: categoryName,
		CustomerID:   ticket.CustomerID,
		OperatorID:   ticket.OperatorID,
		CreatedAt:    ticket.CreatedAt,
		AssignedAt:   ticket.AssignedAt,
		CancelledAt:  ticket.CancelledAt,
		ResolvedAt:   ticket.ResolvedAt,
	}
	if ticket.Attachment != nil {
		resp.Attachment = &dto.AttachmentResponse{
			FileName:  ticket.Attachment.FileName,
			SizeBytes: ticket.Attachment.SizeBytes,
		}
	}
	return resp
}

func ticketViewResponses(views []service.TicketView) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(views))
	for _, view := range views {
		items = append(items, ticketResponse(view.Ticket, view.CategoryName))
	}
	return items
}

func categoryResponse(category domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Enabled:   category.Enabled,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

func categoryResponses(categories []domain.Category) []dto.CategoryResponse {
	items := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, categoryResponse(category))
	}
	return items
}
