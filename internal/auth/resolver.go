package auth

import (
	"context"
	"errors"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/PlanujHajs/analiza-backend/internal/cache"
	dom "github.com/PlanujHajs/analiza-backend/internal/domain"
	"github.com/PlanujHajs/analiza-backend/internal/repo"
	"github.com/PlanujHajs/analiza-backend/internal/security"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*security.Claims, error)
}

// Resolver turns a bearer token into the authenticated user. It is the sole
// gate in front of protected endpoints: every failure mode — bad signature,
// expired token, malformed subject, vanished user — collapses into
// domain.ErrUnauthenticated with no distinguishing detail.
type Resolver struct {
	tokens TokenVerifier
	repo   repo.UserRepo
	cache  *cache.UserCache
	sf     singleflight.Group
}

// NewResolver creates a Resolver. If c is nil, every resolve hits the store.
func NewResolver(t TokenVerifier, r repo.UserRepo, c *cache.UserCache) *Resolver {
	return &Resolver{tokens: t, repo: r, cache: c}
}

// Resolve validates token and loads the user it identifies.
func (r *Resolver) Resolve(ctx context.Context, token string) (dom.User, error) {
	claims, err := r.tokens.Verify(token)
	if err != nil {
		return dom.User{}, dom.ErrUnauthenticated
	}
	id, err := claims.UserID()
	if err != nil {
		return dom.User{}, dom.ErrUnauthenticated
	}

	u, err := r.lookup(ctx, id)
	if err != nil {
		if errors.Is(err, dom.ErrNotFound) {
			// Token outlived the account; same answer as a bad token.
			return dom.User{}, dom.ErrUnauthenticated
		}
		return dom.User{}, err
	}
	return u, nil
}

// lookup loads the user by id through the cache, collapsing concurrent
// requests for the same id into one store round trip.
func (r *Resolver) lookup(ctx context.Context, id int64) (dom.User, error) {
	if r.cache == nil {
		return r.repo.GetByID(ctx, id)
	}
	key := "user:" + strconv.FormatInt(id, 10)
	v, err, _ := r.sf.Do(key, func() (interface{}, error) {
		if u, ok, err := r.cache.Get(ctx, id); err == nil && ok {
			return u, nil
		}
		u, err := r.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		_ = r.cache.Set(ctx, u)
		return u, nil
	})
	if err != nil {
		return dom.User{}, err
	}
	return v.(dom.User), nil
}
