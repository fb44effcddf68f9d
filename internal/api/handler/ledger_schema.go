package handler

import (
	"github.com/shopspring/decimal"
)

// --- Request types ---

type createClientRequest struct {
	UserID       string `json:"user_id"       validate:"required"`
	Password     string `json:"password"      validate:"required"`
	LastName     string `json:"last_name"     validate:"required"`
	FirstName    string `json:"first_name"    validate:"required"`
	Address      string `json:"address"`
	Male         bool   `json:"male"`
	ClientNumber string `json:"client_number" validate:"required,client_number"`
}

type createManagerRequest struct {
	UserID    string `json:"user_id"    validate:"required"`
	Password  string `json:"password"   validate:"required"`
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Address   string `json:"address"`
	Male      bool   `json:"male"`
}

// createAccountRequest opens a with_overdraft account when OverdraftLimit is set.
type createAccountRequest struct {
	OwnerID        string           `json:"owner_id"        validate:"required"`
	Number         string           `json:"account_number"  validate:"omitempty,account_number"`
	OverdraftLimit *decimal.Decimal `json:"overdraft_limit"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type overdraftRequest struct {
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
}

type clientNumberRequest struct {
	ClientNumber string `json:"client_number" validate:"required,client_number"`
}

type transferRequest struct {
	From   string          `json:"from"   validate:"required,account_number"`
	To     string          `json:"to"     validate:"required,account_number"`
	Amount decimal.Decimal `json:"amount"`
}

// --- Response types ---

type accountResponse struct {
	Number         string          `json:"account_number"`
	OwnerID        string          `json:"owner_id"`
	Kind           string          `json:"kind"`
	Balance        decimal.Decimal `json:"balance"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	Available      decimal.Decimal `json:"available"`
	Overdrawn      bool            `json:"overdrawn"`
	Links          accountLinks    `json:"_links"`
}

type accountLinks struct {
	Self  string `json:"self"`
	Owner string `json:"owner"`
}

type userResponse struct {
	UserID       string            `json:"user_id"`
	Role         string            `json:"role"`
	LastName     string            `json:"last_name"`
	FirstName    string            `json:"first_name"`
	Address      string            `json:"address"`
	Male         bool              `json:"male"`
	ClientNumber string            `json:"client_number,omitempty"`
	Accounts     []accountResponse `json:"accounts,omitempty"`
}

type listResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}
