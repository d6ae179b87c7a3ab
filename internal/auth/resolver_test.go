package auth

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/PlanujHajs/analiza-backend/internal/cache"
	dom "github.com/PlanujHajs/analiza-backend/internal/domain"
	"github.com/PlanujHajs/analiza-backend/internal/security"
)

type fakeVerifier struct {
	claims *security.Claims
	err    error
}

func (f *fakeVerifier) Verify(string) (*security.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type fakeUserRepo struct {
	users map[int64]dom.User
	calls atomic.Int64
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	f.calls.Add(1)
	u, ok := f.users[id]
	if !ok {
		return dom.User{}, dom.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	return dom.User{}, dom.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, email, hash string) (dom.User, error) {
	return dom.User{}, errors.New("not implemented")
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) (dom.User, error) {
	return dom.User{}, errors.New("not implemented")
}

func claimsFor(id int64, email string) *security.Claims {
	return &security.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: strconv.FormatInt(id, 10)},
		Email:            email,
	}
}

func TestResolver_Success(t *testing.T) {
	repo := &fakeUserRepo{users: map[int64]dom.User{
		7: {ID: 7, Email: "a@x.com", IsActive: true},
	}}
	r := NewResolver(&fakeVerifier{claims: claimsFor(7, "a@x.com")}, repo, nil)

	u, err := r.Resolve(context.Background(), "token")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if u.ID != 7 || u.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestResolver_InvalidToken(t *testing.T) {
	r := NewResolver(&fakeVerifier{err: security.ErrInvalidToken}, &fakeUserRepo{}, nil)

	_, err := r.Resolve(context.Background(), "bad")
	if !errors.Is(err, dom.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolver_MalformedSubject(t *testing.T) {
	v := &fakeVerifier{claims: &security.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-number"},
	}}
	r := NewResolver(v, &fakeUserRepo{}, nil)

	_, err := r.Resolve(context.Background(), "token")
	if !errors.Is(err, dom.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolver_VanishedUser(t *testing.T) {
	r := NewResolver(&fakeVerifier{claims: claimsFor(99, "gone@x.com")}, &fakeUserRepo{}, nil)

	_, err := r.Resolve(context.Background(), "token")
	if !errors.Is(err, dom.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for vanished user, got %v", err)
	}
}

func TestResolver_CacheSkipsStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &fakeUserRepo{users: map[int64]dom.User{
		5: {ID: 5, Email: "c@x.com", IsActive: true},
	}}
	r := NewResolver(&fakeVerifier{claims: claimsFor(5, "c@x.com")}, repo,
		cache.NewUserCache(rdb, time.Minute))

	for i := 0; i < 3; i++ {
		u, err := r.Resolve(context.Background(), "token")
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i, err)
		}
		if u.ID != 5 {
			t.Fatalf("unexpected user: %+v", u)
		}
	}
	if got := repo.calls.Load(); got != 1 {
		t.Fatalf("store hit %d times, want 1", got)
	}
}
