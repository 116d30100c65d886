package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CategoriesHandler serves the category list and the manager's administration endpoints.
type CategoriesHandler struct {
	categories *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categories *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{categories: categories}
}

// ListEnabled GET /categories.
func (h *CategoriesHandler) ListEnabled(c *fiber.Ctx) error {
	categories, err := h.categories.ListEnabled(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponses(categories)})
}

// List GET /manager/categories.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	categories, err := h.categories.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponses(categories)})
}

// Create POST /manager/categories.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.categories.Add(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": categoryResponse(category)})
}

// Rename PUT /manager/categories/:id.
func (h *CategoriesHandler) Rename(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := h.categories.Rename(c.UserContext(), c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponse(category)})
}

// Enable POST /manager/categories/:id/enable.
func (h *CategoriesHandler) Enable(c *fiber.Ctx) error {
	category, err := h.categories.Enable(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponse(category)})
}

// Disable POST /manager/categories/:id/disable.
func (h *CategoriesHandler) Disable(c *fiber.Ctx) error {
	category, err := h.categories.Disable(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categoryResponse(category)})
}
