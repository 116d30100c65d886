package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Identity  auth.Identity
	Token     string
	ExpiresAt time.Time
}

// AuthService authenticates callers against every identity store.
type AuthService struct {
	resolver *auth.Resolver
	tokens   *auth.TokenManager
	hasher   auth.PasswordHasher
}

// NewAuthService builds the service.
func NewAuthService(resolver *auth.Resolver, tokens *auth.TokenManager, hasher auth.PasswordHasher) *AuthService {
	return &AuthService{resolver: resolver, tokens: tokens, hasher: hasher}
}

// Login checks credentials and issues an access token. Unknown accounts, wrong
// passwords and disabled accounts are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	identity, err := s.resolver.ResolveEmail(ctx, email)
	if err != nil {
		if errors.Is(err, auth.ErrIdentityNotFound) {
			return LoginResult{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return LoginResult{}, apperrors.NewInternalError(err)
	}
	if err := s.hasher.Compare(identity.PasswordHash, password); err != nil {
		return LoginResult{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if !identity.Enabled {
		return LoginResult{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokens.GenerateToken(*identity)
	if err != nil {
		return LoginResult{}, apperrors.NewInternalError(err)
	}
	identity.PasswordHash = ""
	return LoginResult{Identity: *identity, Token: token, ExpiresAt: exp}, nil
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
