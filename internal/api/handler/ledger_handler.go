package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
)

// LedgerHandler exposes the ledger use cases. Every call goes through the
// authorization gate with the session of the caller; domain errors are
// rendered by the API error handler.
type LedgerHandler struct {
	ledger ports.AuthorizedLedger
}

func NewLedgerHandler(ledger ports.AuthorizedLedger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// --- Users ---

// CreateClient handles POST /clients.
func (h *LedgerHandler) CreateClient(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req createClientRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.ledger.CreateClient(c.Request().Context(), s, toCreateClientInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// CreateManager handles POST /managers.
func (h *LedgerHandler) CreateManager(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req createManagerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.ledger.CreateManager(c.Request().Context(), s, toCreateManagerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// ListClients handles GET /clients.
func (h *LedgerHandler) ListClients(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	users, err := h.ledger.ListClients(c.Request().Context(), s)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[userResponse]{Data: toUserResponses(users), Count: len(users)})
}

// ListManagers handles GET /managers.
func (h *LedgerHandler) ListManagers(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	users, err := h.ledger.ListManagers(c.Request().Context(), s)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[userResponse]{Data: toUserResponses(users), Count: len(users)})
}

// GetUser handles GET /users/:id.
func (h *LedgerHandler) GetUser(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	user, err := h.ledger.GetUser(c.Request().Context(), s, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteUser handles DELETE /users/:id.
func (h *LedgerHandler) DeleteUser(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.ledger.DeleteUser(c.Request().Context(), s, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangeClientNumber handles PUT /users/:id/client-number.
func (h *LedgerHandler) ChangeClientNumber(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req clientNumberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.ledger.ChangeClientNumber(c.Request().Context(), s, c.Param("id"), req.ClientNumber)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ListAccountsOf handles GET /users/:id/accounts.
func (h *LedgerHandler) ListAccountsOf(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	accounts, err := h.ledger.ListAccountsOf(c.Request().Context(), s, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[accountResponse]{Data: toAccountResponses(accounts), Count: len(accounts)})
}

// --- Accounts ---

// CreateAccount handles POST /accounts. The number is generated when the
// request leaves it empty.
func (h *LedgerHandler) CreateAccount(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req createAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.ledger.CreateAccount(c.Request().Context(), s, toCreateAccountInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccount handles GET /accounts/:number.
func (h *LedgerHandler) GetAccount(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	account, err := h.ledger.GetAccount(c.Request().Context(), s, c.Param("number"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// DeleteAccount handles DELETE /accounts/:number.
func (h *LedgerHandler) DeleteAccount(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.ledger.DeleteAccount(c.Request().Context(), s, c.Param("number")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangeOverdraftLimit handles PUT /accounts/:number/overdraft.
func (h *LedgerHandler) ChangeOverdraftLimit(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req overdraftRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.ledger.ChangeOverdraftLimit(c.Request().Context(), s, c.Param("number"), req.OverdraftLimit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Credit handles POST /accounts/:number/credit.
func (h *LedgerHandler) Credit(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req amountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.ledger.Credit(c.Request().Context(), s, c.Param("number"), req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Debit handles POST /accounts/:number/debit.
func (h *LedgerHandler) Debit(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req amountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.ledger.Debit(c.Request().Context(), s, c.Param("number"), req.Amount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// Transfer handles POST /transfers. Both balances are returned after the
// transfer commits.
func (h *LedgerHandler) Transfer(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req transferRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.ledger.Transfer(ctx, s, req.From, req.To, req.Amount); err != nil {
		return err
	}

	from, err := h.ledger.GetAccount(ctx, s, req.From)
	if err != nil {
		return err
	}
	to, err := h.ledger.GetAccount(ctx, s, req.To)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]accountResponse{
		"from": toAccountResponse(from),
		"to":   toAccountResponse(to),
	})
}
