package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PlanujHajs/analiza-backend/internal/cache"
	dom "github.com/PlanujHajs/analiza-backend/internal/domain"
	"github.com/PlanujHajs/analiza-backend/internal/repo"
	"github.com/PlanujHajs/analiza-backend/internal/security"
)

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// AuthService handles registration, login and password changes.
type AuthService struct {
	repo   repo.UserRepo
	hasher security.PasswordHasher
	tokens TokenIssuer
	cache  *cache.UserCache

	// dummyHash is compared against on the unknown-email login path so that
	// "no such user" costs the same as "wrong password".
	dummyHash string
}

// NewAuthService creates an AuthService. If c is nil, cache invalidation on
// password change is skipped.
func NewAuthService(r repo.UserRepo, h security.PasswordHasher, t TokenIssuer, c *cache.UserCache) (*AuthService, error) {
	dummy, err := h.Hash("timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("prime dummy hash: %w", err)
	}
	return &AuthService{repo: r, hasher: h, tokens: t, cache: c, dummyHash: dummy}, nil
}

// Register creates a new account. A taken email yields domain.ErrEmailTaken,
// whether caught by the pre-check or by losing the insert race: the UNIQUE
// constraint is the safety mechanism, the pre-check only a friendlier path.
func (s *AuthService) Register(ctx context.Context, email, password string) (dom.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return dom.User{}, dom.ErrInvalidCredentials
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return dom.User{}, dom.ErrEmailTaken
	} else if !errors.Is(err, dom.ErrNotFound) {
		return dom.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, email, hash)
	if err != nil {
		return dom.User{}, err
	}
	return u, nil
}

// Authenticate verifies credentials and returns a signed access token.
// Unknown email and wrong password are indistinguishable in both error and
// timing; no token is ever issued on the failure path.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return "", dom.ErrInvalidCredentials
		}
		return "", err
	}
	if !s.hasher.Verify(password, u.HashedPassword) {
		return "", dom.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// ChangePassword replaces the user's hash after verifying the old password.
func (s *AuthService) ChangePassword(ctx context.Context, user dom.User, oldPassword, newPassword string) error {
	if newPassword == "" {
		return dom.ErrInvalidCredentials
	}
	if !s.hasher.Verify(oldPassword, user.HashedPassword) {
		return dom.ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if s.cache != nil {
		// A stale cached record would keep resolving against the old hash
		// until the TTL runs out, so a failed invalidation is an error.
		if err := s.cache.Invalidate(ctx, user.ID); err != nil {
			return fmt.Errorf("invalidate user cache: %w", err)
		}
	}
	return nil
}
