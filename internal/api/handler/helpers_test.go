package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/api/middleware"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

// newRequest builds an echo context carrying a JSON body and the handler's
// validator. A non-nil session is attached the way the Auth middleware does.
func newRequest(method, target, body string, s *domain.Session) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if s != nil {
		middleware.WithSession(c, s)
	}
	return e, c, rec
}

// serve runs h and renders a returned error with echo's default handler.
func serve(e *echo.Echo, c echo.Context, h echo.HandlerFunc) error {
	err := h(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return err
}

func clientSession(t *testing.T) *domain.Session {
	t.Helper()
	u, err := domain.NewClient("j.doe1", "h", "Doe", "Jane", "1 rue de la Paix", false, "0101010101")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	a, _ := domain.NewAccount("FR0000000001", "j.doe1")
	u.AttachAccounts([]*domain.Account{a})
	s := domain.NewSession("sid-client")
	s.Authenticate(u)
	return s
}

func managerSession(t *testing.T) *domain.Session {
	t.Helper()
	u, err := domain.NewManager("admin", "h", "Boss", "Big", "", true)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	s := domain.NewSession("sid-manager")
	s.Authenticate(u)
	return s
}

type stubSessions struct {
	ids     map[string]string
	saveErr error
}

func newStubSessions() *stubSessions { return &stubSessions{ids: map[string]string{}} }

func (s *stubSessions) Save(_ context.Context, id, userID string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.ids[id] = userID
	return nil
}

func (s *stubSessions) Load(_ context.Context, id string) (string, error) {
	userID, ok := s.ids[id]
	if !ok {
		return "", domain.ErrNotAuthenticated
	}
	return userID, nil
}

func (s *stubSessions) Delete(_ context.Context, id string) error {
	delete(s.ids, id)
	return nil
}
