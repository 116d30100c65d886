package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UsersHandler exposes customer self-registration.
type UsersHandler struct {
	accounts *service.AccountService
	auth     *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accounts *service.AccountService, authService *service.AuthService) *UsersHandler {
	return &UsersHandler{accounts: accounts, auth: authService}
}

// Register handles POST /auth/register and signs the new customer in.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("first_name, email, password required", nil)
	}

	customer, err := h.accounts.CreateCustomer(c.UserContext(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), customer.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.RegisterResponse{
		Customer: dto.CustomerResponse{
			ID:        customer.ID,
			FirstName: customer.FirstName,
			LastName:  customer.LastName,
			Email:     customer.Email,
			CreatedAt: customer.CreatedAt,
		},
		Auth: loginResponse(result),
	}})
}
