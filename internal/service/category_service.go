package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var categoryNamePattern = regexp.MustCompile(`^[A-Za-zÀ-ÿ\s]{3,50}$`)

// CategoryService is the category registry. Disabling a category only stops
// new tickets from being filed under it.
type CategoryService struct {
	categories repository.CategoryRepository
	now        func() time.Time
}

// NewCategoryService builds the service.
func NewCategoryService(categories repository.CategoryRepository, clock func() time.Time) *CategoryService {
	if clock == nil {
		clock = time.Now
	}
	return &CategoryService{categories: categories, now: clock}
}

// IsCreatable reports whether the category exists and is enabled.
func (s *CategoryService) IsCreatable(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, nil
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, apperrors.NewInternalError(err)
	}
	return category.Enabled, nil
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, id string) (domain.Category, error) {
	category, err := s.load(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	return *category, nil
}

// List returns every category ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.list(ctx, repository.CategoryFilter{})
}

// ListEnabled returns the categories customers may file tickets under.
func (s *CategoryService) ListEnabled(ctx context.Context) ([]domain.Category, error) {
	enabled := true
	return s.list(ctx, repository.CategoryFilter{Enabled: &enabled})
}

// Add registers a new enabled category.
func (s *CategoryService) Add(ctx context.Context, name string) (domain.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return domain.Category{}, err
	}
	now := s.timestamp()
	category := domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.categories.Create(ctx, &category); err != nil {
		return domain.Category{}, categoryWriteError(err, name)
	}
	return category, nil
}

// Rename changes a category's display name.
func (s *CategoryService) Rename(ctx context.Context, id, name string) (domain.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return domain.Category{}, err
	}
	category, err := s.load(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	if category.Name == name {
		return *category, nil
	}
	category.Name = name
	return s.save(ctx, category)
}

// Enable reopens a category for new tickets.
func (s *CategoryService) Enable(ctx context.Context, id string) (domain.Category, error) {
	return s.setEnabled(ctx, id, true)
}

// Disable stops new tickets from being filed under the category.
func (s *CategoryService) Disable(ctx context.Context, id string) (domain.Category, error) {
	return s.setEnabled(ctx, id, false)
}

func (s *CategoryService) setEnabled(ctx context.Context, id string, enabled bool) (domain.Category, error) {
	category, err := s.load(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	if category.Enabled == enabled {
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		return domain.Category{}, apperrors.NewConflict("category is already "+state,
			map[string]any{"category_id": id})
	}
	category.Enabled = enabled
	return s.save(ctx, category)
}

func (s *CategoryService) save(ctx context.Context, category *domain.Category) (domain.Category, error) {
	category.UpdatedAt = s.timestamp()
	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Category{}, apperrors.NewNotFound("category", map[string]any{"category_id": category.ID})
		}
		return domain.Category{}, categoryWriteError(err, category.Name)
	}
	return *category, nil
}

func (s *CategoryService) list(ctx context.Context, filter repository.CategoryFilter) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

func (s *CategoryService) load(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return category, nil
}

func (s *CategoryService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !categoryNamePattern.MatchString(name) {
		return "", apperrors.NewValidationError("category name must be 3-50 letters or spaces",
			map[string]any{"field": "name"})
	}
	return name, nil
}

func categoryWriteError(err error, name string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict("category name already exists", map[string]any{"name": name})
	}
	return apperrors.NewInternalError(err)
}
