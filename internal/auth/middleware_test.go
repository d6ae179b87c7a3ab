package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	dom "github.com/PlanujHajs/analiza-backend/internal/domain"
	"github.com/PlanujHajs/analiza-backend/internal/security"
)

// failingUserRepo simulates a storage outage on every lookup.
type failingUserRepo struct{}

func (failingUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	return dom.User{}, errors.New("pg: connection refused")
}

func (failingUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	return dom.User{}, errors.New("pg: connection refused")
}

func (failingUserRepo) Create(ctx context.Context, email, hash string) (dom.User, error) {
	return dom.User{}, errors.New("pg: connection refused")
}

func (failingUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) (dom.User, error) {
	return dom.User{}, errors.New("pg: connection refused")
}

func newGuardedRouter(resolver *Resolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(resolver), func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": u.Email})
	})
	return r
}

func doProtected(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_Success(t *testing.T) {
	repo := &fakeUserRepo{users: map[int64]dom.User{
		7: {ID: 7, Email: "a@x.com", IsActive: true},
	}}
	router := newGuardedRouter(NewResolver(&fakeVerifier{claims: claimsFor(7, "a@x.com")}, repo, nil))

	w := doProtected(router, "Bearer token")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
}

func TestRequireAuth_MissingOrInvalidToken(t *testing.T) {
	router := newGuardedRouter(NewResolver(&fakeVerifier{err: security.ErrInvalidToken}, &fakeUserRepo{}, nil))

	for name, header := range map[string]string{
		"no header":    "",
		"not a bearer": "Basic dXNlcjpwdw==",
		"bad token":    "Bearer garbage",
	} {
		w := doProtected(router, header)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, w.Code)
		}
		if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Errorf("%s: WWW-Authenticate = %q", name, got)
		}
	}
}

func TestRequireAuth_VanishedUser(t *testing.T) {
	router := newGuardedRouter(NewResolver(&fakeVerifier{claims: claimsFor(99, "gone@x.com")}, &fakeUserRepo{}, nil))

	w := doProtected(router, "Bearer token")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuth_StorageFailureIs500(t *testing.T) {
	// A storage outage during the lookup must not masquerade as a bad
	// credential, and must not leak the underlying error.
	router := newGuardedRouter(NewResolver(&fakeVerifier{claims: claimsFor(7, "a@x.com")}, failingUserRepo{}, nil))

	w := doProtected(router, "Bearer token")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body %s", w.Code, w.Body.String())
	}
	if body := w.Body.String(); body == "" || errorsLeak(body) {
		t.Fatalf("response leaks internals: %s", body)
	}
}

func errorsLeak(body string) bool {
	for _, fragment := range []string{"pg:", "connection refused"} {
		if strings.Contains(body, fragment) {
			return true
		}
	}
	return false
}
