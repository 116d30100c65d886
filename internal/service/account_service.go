package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AccountService provisions customers and staff for the admin CLI and the
// registration endpoints.
type AccountService struct {
	customers repository.CustomerRepository
	staff     repository.StaffRepository
	hasher    auth.PasswordHasher
	now       func() time.Time
}

// NewAccountService builds the service.
func NewAccountService(customers repository.CustomerRepository, staff repository.StaffRepository, hasher auth.PasswordHasher) *AccountService {
	return &AccountService{customers: customers, staff: staff, hasher: hasher, now: time.Now}
}

// CreateCustomer registers an enabled customer.
func (s *AccountService) CreateCustomer(ctx context.Context, firstName, lastName, email, password string) (*domain.Customer, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(firstName) == "" {
		return nil, apperrors.NewValidationError("first name is required", map[string]any{"field": "first_name"})
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	customer := &domain.Customer{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        email,
		PasswordHash: hash,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, accountWriteError(err, email)
	}
	return customer, nil
}

// CreateStaffMember registers an enabled operator or manager.
func (s *AccountService) CreateStaffMember(ctx context.Context, name, email, password string, role domain.StaffRole) (*domain.StaffMember, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	role = domain.StaffRole(strings.ToUpper(string(role)))
	if role != domain.StaffRoleOperator && role != domain.StaffRoleManager {
		return nil, apperrors.NewValidationError("role must be OPERATOR or MANAGER", map[string]any{"role": role})
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	staff := &domain.StaffMember{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, accountWriteError(err, email)
	}
	return staff, nil
}

func (s *AccountService) hashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", apperrors.NewValidationError("password must be at least 8 characters", map[string]any{"field": "password"})
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
	}
	return email, nil
}

func accountWriteError(err error, email string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	return apperrors.NewInternalError(err)
}

// ListStaff returns staff members, optionally narrowed to one role.
func (s *AccountService) ListStaff(ctx context.Context, role *domain.StaffRole) ([]domain.StaffMember, error) {
	members, err := s.staff.List(ctx, repository.StaffFilter{Role: role})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if members == nil {
		members = []domain.StaffMember{}
	}
	return members, nil
}
