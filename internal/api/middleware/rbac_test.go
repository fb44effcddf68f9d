package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

func sessionFor(u *domain.User) *domain.Session {
	s := domain.NewSession("sid")
	if u != nil {
		s.Authenticate(u)
	}
	return s
}

func runRBAC(t *testing.T, s *domain.Session, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if s != nil {
		WithSession(c, s)
	}

	_ = RBAC(domain.RoleManager)(next)(c)
	return rec
}

func TestRBAC_AllowsRole(t *testing.T) {
	manager, _ := domain.NewManager("admin", "h", "Boss", "Big", "", true)

	called := false
	rec := runRBAC(t, sessionFor(manager), func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("expected next handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRBAC_RejectsRole(t *testing.T) {
	client, _ := domain.NewClient("j.doe1", "h", "Doe", "Jane", "", false, "0101010101")

	rec := runRBAC(t, sessionFor(client), func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRBAC_RejectsAnonymous(t *testing.T) {
	for _, s := range []*domain.Session{nil, sessionFor(nil)} {
		rec := runRBAC(t, s, func(c echo.Context) error {
			t.Fatalf("should not reach next handler")
			return nil
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	}
}
