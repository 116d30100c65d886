package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestLoginIssuesTokenForEachAccountKind(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	result, err := h.auth.Login(ctx, "ADA@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeCustomer, result.Identity.Subject)
	assert.Equal(t, h.customer.ID, result.Identity.SubjectID)
	assert.Empty(t, result.Identity.PasswordHash)

	claims, err := h.auth.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, h.customer.ID, claims.SubjectID())
	assert.Nil(t, claims.Role)

	result, err = h.auth.Login(ctx, "olive@example.com", "battery-staple")
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeStaff, result.Identity.Subject)
	require.NotNil(t, result.Identity.Role)
	assert.Equal(t, domain.StaffRoleOperator, *result.Identity.Role)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.auth.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.EqualError(t, err, "invalid credentials")

	_, err = h.auth.Login(ctx, "nobody@example.com", "whatever1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.EqualError(t, err, "invalid credentials")
}

func TestCustomerShadowsStaffWithSameEmail(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.accounts.CreateStaffMember(ctx, "Ada Staff", "ada@example.com", "staff-password", domain.StaffRoleManager)
	require.NoError(t, err)

	result, err := h.auth.Login(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeCustomer, result.Identity.Subject)

	_, err = h.auth.Login(ctx, "ada@example.com", "staff-password")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAccountValidation(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.accounts.CreateCustomer(ctx, "Ada", "", "ada@example.com", "another-pass")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = h.accounts.CreateCustomer(ctx, "Bob", "", "not-an-email", "another-pass")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = h.accounts.CreateCustomer(ctx, "Bob", "", "bob@example.com", "short")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = h.accounts.CreateStaffMember(ctx, "Bob", "bob@example.com", "long-enough", domain.StaffRole("JANITOR"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
