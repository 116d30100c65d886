package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// StaffHandler lets managers provision operators.
type StaffHandler struct {
	accounts *service.AccountService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(accounts *service.AccountService) *StaffHandler {
	return &StaffHandler{accounts: accounts}
}

// CreateOperator handles POST /manager/operators.
func (h *StaffHandler) CreateOperator(c *fiber.Ctx) error {
	var req dto.StaffCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}
	staff, err := h.accounts.CreateStaffMember(c.UserContext(), req.Name, req.Email, req.Password, domain.StaffRoleOperator)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": staffResponse(*staff)})
}

// ListOperators handles GET /manager/operators.
func (h *StaffHandler) ListOperators(c *fiber.Ctx) error {
	role := domain.StaffRoleOperator
	members, err := h.accounts.ListStaff(c.UserContext(), &role)
	if err != nil {
		return err
	}
	resp := make([]dto.StaffResponse, 0, len(members))
	for _, member := range members {
		resp = append(resp, staffResponse(member))
	}
	return c.JSON(fiber.Map{"data": resp})
}

func staffResponse(staff domain.StaffMember) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        staff.ID,
		Name:      staff.Name,
		Email:     staff.Email,
		Role:      staff.Role,
		Enabled:   staff.Enabled,
		CreatedAt: staff.CreatedAt,
	}
}
