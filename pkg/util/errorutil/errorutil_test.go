package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsMatchByCode(t *testing.T) {
	err := NewInvalidState("ticket is not open", map[string]any{"status": "RESOLVED"})

	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.False(t, errors.Is(err, ErrNotFound))

	wrapped := fmt.Errorf("claim: %w", err)
	assert.True(t, errors.Is(wrapped, ErrInvalidState))
	assert.Equal(t, CodeInvalidState, CodeOf(wrapped))
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")

	domainErr := ToDomainError(cause)

	require.NotNil(t, domainErr)
	assert.Equal(t, CodeInternal, domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.ErrorIs(t, domainErr, cause)
}

func TestToDomainErrorKeepsSentinelsUntouched(t *testing.T) {
	domainErr := ToDomainError(ErrConflict)

	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	assert.Zero(t, ErrConflict.HTTPStatus)
}

func TestInvalidAttachmentCarriesReason(t *testing.T) {
	err := NewInvalidAttachment("attachment too large", map[string]any{"reason": "size_exceeded"})

	domainErr := ToDomainError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, domainErr.HTTPStatus)
	assert.Equal(t, "size_exceeded", domainErr.Details["reason"])
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}
