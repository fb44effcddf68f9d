package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
)

// stubLedger overrides the calls a test needs; the embedded interface is nil
// so anything else panics.
type stubLedger struct {
	ports.AuthorizedLedger
	createClientFn  func(ctx context.Context, s *domain.Session, in ports.CreateClientInput) (*domain.User, error)
	createAccountFn func(ctx context.Context, s *domain.Session, in ports.CreateAccountInput) (*domain.Account, error)
	getAccountFn    func(ctx context.Context, s *domain.Session, number string) (*domain.Account, error)
	debitFn         func(ctx context.Context, s *domain.Session, number string, amount decimal.Decimal) (*domain.Account, error)
	transferFn      func(ctx context.Context, s *domain.Session, from, to string, amount decimal.Decimal) error
	listClientsFn   func(ctx context.Context, s *domain.Session) ([]*domain.User, error)
	deleteUserFn    func(ctx context.Context, s *domain.Session, userID string) error
}

func (l *stubLedger) CreateClient(ctx context.Context, s *domain.Session, in ports.CreateClientInput) (*domain.User, error) {
	return l.createClientFn(ctx, s, in)
}

func (l *stubLedger) CreateAccount(ctx context.Context, s *domain.Session, in ports.CreateAccountInput) (*domain.Account, error) {
	return l.createAccountFn(ctx, s, in)
}

func (l *stubLedger) GetAccount(ctx context.Context, s *domain.Session, number string) (*domain.Account, error) {
	return l.getAccountFn(ctx, s, number)
}

func (l *stubLedger) Debit(ctx context.Context, s *domain.Session, number string, amount decimal.Decimal) (*domain.Account, error) {
	return l.debitFn(ctx, s, number, amount)
}

func (l *stubLedger) Transfer(ctx context.Context, s *domain.Session, from, to string, amount decimal.Decimal) error {
	return l.transferFn(ctx, s, from, to, amount)
}

func (l *stubLedger) ListClients(ctx context.Context, s *domain.Session) ([]*domain.User, error) {
	return l.listClientsFn(ctx, s)
}

func (l *stubLedger) DeleteUser(ctx context.Context, s *domain.Session, userID string) error {
	return l.deleteUserFn(ctx, s, userID)
}

func TestLedgerHandler_CreateClient(t *testing.T) {
	s := managerSession(t)
	stub := &stubLedger{
		createClientFn: func(_ context.Context, got *domain.Session, in ports.CreateClientInput) (*domain.User, error) {
			if got != s {
				t.Fatalf("handler must forward the caller's session")
			}
			if in.UserID != "j.doe1" || in.ClientNumber != "0101010101" || in.Password != "pw" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return domain.NewClient(in.UserID, "hashed", in.LastName, in.FirstName, in.Address, in.Male, in.ClientNumber)
		},
	}
	h := NewLedgerHandler(stub)

	body := `{"user_id":"j.doe1","password":"pw","last_name":"Doe","first_name":"Jane","client_number":"0101010101"}`
	e, c, rec := newRequest(http.MethodPost, "/clients", body, s)
	if err := serve(e, c, h.CreateClient); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["user_id"] != "j.doe1" || resp["role"] != "client" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestLedgerHandler_CreateClient_Validation(t *testing.T) {
	stub := &stubLedger{
		createClientFn: func(context.Context, *domain.Session, ports.CreateClientInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewLedgerHandler(stub)

	body := `{"user_id":"j.doe1","password":"pw","last_name":"Doe","first_name":"Jane","client_number":"01"}`
	e, c, rec := newRequest(http.MethodPost, "/clients", body, managerSession(t))
	_ = serve(e, c, h.CreateClient)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_CreateAccount_WithOverdraft(t *testing.T) {
	stub := &stubLedger{
		createAccountFn: func(_ context.Context, _ *domain.Session, in ports.CreateAccountInput) (*domain.Account, error) {
			if in.Number != "" || in.OverdraftLimit == nil || !in.OverdraftLimit.Equal(decimal.NewFromInt(200)) {
				t.Fatalf("unexpected input: %+v", in)
			}
			return domain.NewOverdraftAccount("FR1234567890", in.OwnerID, *in.OverdraftLimit)
		},
	}
	h := NewLedgerHandler(stub)

	e, c, rec := newRequest(http.MethodPost, "/accounts", `{"owner_id":"j.doe1","overdraft_limit":200}`, managerSession(t))
	if err := serve(e, c, h.CreateAccount); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["account_number"] != "FR1234567890" || resp["kind"] != string(domain.KindWithOverdraft) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["available"] != "200" {
		t.Fatalf("expected available 200, got %v", resp["available"])
	}
}

func TestLedgerHandler_CreateAccount_InvalidNumber(t *testing.T) {
	h := NewLedgerHandler(&stubLedger{})

	e, c, rec := newRequest(http.MethodPost, "/accounts", `{"owner_id":"j.doe1","account_number":"fr12"}`, managerSession(t))
	_ = serve(e, c, h.CreateAccount)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLedgerHandler_Debit_PropagatesDomainError(t *testing.T) {
	stub := &stubLedger{
		debitFn: func(_ context.Context, _ *domain.Session, number string, amount decimal.Decimal) (*domain.Account, error) {
			if number != "FR0000000001" || !amount.Equal(decimal.RequireFromString("12.50")) {
				t.Fatalf("unexpected args: %s %s", number, amount)
			}
			return nil, domain.ErrInsufficientFunds
		},
	}
	h := NewLedgerHandler(stub)

	_, c, _ := newRequest(http.MethodPost, "/accounts/FR0000000001/debit", `{"amount":"12.50"}`, clientSession(t))
	c.SetParamNames("number")
	c.SetParamValues("FR0000000001")

	if err := h.Debit(c); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestLedgerHandler_Transfer(t *testing.T) {
	balances := map[string]decimal.Decimal{
		"FR0000000001": decimal.NewFromInt(100),
		"FR0000000002": decimal.Zero,
	}
	stub := &stubLedger{
		transferFn: func(_ context.Context, _ *domain.Session, from, to string, amount decimal.Decimal) error {
			balances[from] = balances[from].Sub(amount)
			balances[to] = balances[to].Add(amount)
			return nil
		},
		getAccountFn: func(_ context.Context, _ *domain.Session, number string) (*domain.Account, error) {
			a, _ := domain.NewAccount(number, "j.doe1")
			a.Balance = balances[number]
			return a, nil
		},
	}
	h := NewLedgerHandler(stub)

	e, c, rec := newRequest(http.MethodPost, "/transfers", `{"from":"FR0000000001","to":"FR0000000002","amount":40}`, clientSession(t))
	if err := serve(e, c, h.Transfer); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["from"]["balance"] != "60" || resp["to"]["balance"] != "40" {
		t.Fatalf("unexpected balances: %+v", resp)
	}
}

func TestLedgerHandler_Transfer_Forbidden(t *testing.T) {
	stub := &stubLedger{
		transferFn: func(context.Context, *domain.Session, string, string, decimal.Decimal) error {
			return domain.ErrForbidden
		},
	}
	h := NewLedgerHandler(stub)

	_, c, _ := newRequest(http.MethodPost, "/transfers", `{"from":"FR0000000001","to":"FR0000000003","amount":1}`, clientSession(t))
	if err := h.Transfer(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestLedgerHandler_ListClients(t *testing.T) {
	a, _ := domain.NewClient("a.martin1", "h", "Martin", "Alice", "", false, "0202020202")
	b, _ := domain.NewClient("j.doe1", "h", "Doe", "Jane", "", false, "0101010101")
	stub := &stubLedger{
		listClientsFn: func(context.Context, *domain.Session) ([]*domain.User, error) {
			return []*domain.User{a, b}, nil
		},
	}
	h := NewLedgerHandler(stub)

	e, c, rec := newRequest(http.MethodGet, "/clients", "", managerSession(t))
	if err := serve(e, c, h.ListClients); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Data  []map[string]any `json:"data"`
		Count int              `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || resp.Data[0]["user_id"] != "a.martin1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestLedgerHandler_DeleteUser(t *testing.T) {
	var deleted string
	stub := &stubLedger{
		deleteUserFn: func(_ context.Context, _ *domain.Session, userID string) error {
			deleted = userID
			return nil
		},
	}
	h := NewLedgerHandler(stub)

	e, c, rec := newRequest(http.MethodDelete, "/users/j.doe1", "", managerSession(t))
	c.SetParamNames("id")
	c.SetParamValues("j.doe1")
	if err := serve(e, c, h.DeleteUser); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || deleted != "j.doe1" {
		t.Fatalf("expected 204 deleting j.doe1, got %d deleting %q", rec.Code, deleted)
	}
}

func TestLedgerHandler_RequiresSession(t *testing.T) {
	h := NewLedgerHandler(&stubLedger{})

	e, c, rec := newRequest(http.MethodGet, "/accounts/FR0000000001", "", nil)
	_ = serve(e, c, h.GetAccount)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
