package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// ErrIdentityNotFound is returned when no source knows the account.
var ErrIdentityNotFound = errors.New("identity not found")

// Identity is the credential view of an account, whichever store it lives in.
type Identity struct {
	SubjectID    string
	Subject      domain.SubjectType
	Role         *domain.StaffRole
	Email        string
	DisplayName  string
	PasswordHash string
	Enabled      bool
}

// IdentitySource looks accounts up in one store.
type IdentitySource interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
}

// Resolver tries each source in order and returns the first match.
type Resolver struct {
	sources []IdentitySource
}

// NewResolver keeps sources in the given priority order.
func NewResolver(sources ...IdentitySource) *Resolver {
	return &Resolver{sources: sources}
}

// ResolveEmail returns the first identity registered under email.
func (r *Resolver) ResolveEmail(ctx context.Context, email string) (*Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrIdentityNotFound
	}
	for _, source := range r.sources {
		identity, err := source.FindByEmail(ctx, email)
		if errors.Is(err, ErrIdentityNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return identity, nil
	}
	return nil, ErrIdentityNotFound
}

// CustomerSource resolves customers.
type CustomerSource struct {
	Customers repository.CustomerRepository
}

func (s CustomerSource) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	customer, err := s.Customers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return &Identity{
		SubjectID:    customer.ID,
		Subject:      domain.SubjectTypeCustomer,
		Email:        customer.Email,
		DisplayName:  customer.FullName(),
		PasswordHash: customer.PasswordHash,
		Enabled:      customer.Enabled,
	}, nil
}

// StaffSource resolves operators and managers.
type StaffSource struct {
	Staff repository.StaffRepository
}

func (s StaffSource) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	staff, err := s.Staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	role := staff.Role
	return &Identity{
		SubjectID:    staff.ID,
		Subject:      domain.SubjectTypeStaff,
		Role:         &role,
		Email:        staff.Email,
		DisplayName:  staff.Name,
		PasswordHash: staff.PasswordHash,
		Enabled:      staff.Enabled,
	}, nil
}
