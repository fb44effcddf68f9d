package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountKind is the variant tag of an Account.
type AccountKind string

const (
	KindNoOverdraft   AccountKind = "no_overdraft"
	KindWithOverdraft AccountKind = "with_overdraft"
)

// Account is a customer account. Balance invariants:
//   - no_overdraft:   Balance >= 0
//   - with_overdraft: Balance >= -OverdraftLimit, OverdraftLimit >= 0
//
// Every mutating method either succeeds or leaves the account untouched.
type Account struct {
	Number         string          `json:"account_number"`
	OwnerID        string          `json:"owner_id"`
	Kind           AccountKind     `json:"kind"`
	Balance        decimal.Decimal `json:"balance"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
}

// NewAccount returns an empty account without overdraft.
func NewAccount(number, ownerID string) (*Account, error) {
	if err := ValidateAccountNumber(number); err != nil {
		return nil, err
	}
	return &Account{
		Number:  number,
		OwnerID: ownerID,
		Kind:    KindNoOverdraft,
		Balance: decimal.Zero,
	}, nil
}

// NewOverdraftAccount returns an empty account allowed to go down to -limit.
func NewOverdraftAccount(number, ownerID string, limit decimal.Decimal) (*Account, error) {
	if err := ValidateAccountNumber(number); err != nil {
		return nil, err
	}
	if limit.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOverdraftLimit, limit)
	}
	return &Account{
		Number:         number,
		OwnerID:        ownerID,
		Kind:           KindWithOverdraft,
		Balance:        decimal.Zero,
		OverdraftLimit: limit,
	}, nil
}

// Available returns the amount that can still be debited.
func (a *Account) Available() decimal.Decimal {
	switch a.Kind {
	case KindWithOverdraft:
		return a.Balance.Add(a.OverdraftLimit)
	default:
		return a.Balance
	}
}

// Credit adds a strictly positive amount.
func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("credit %s: %w", a.Number, ErrInvalidAmount)
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Debit removes a strictly positive amount if it is covered by Available.
func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("debit %s: %w", a.Number, ErrInvalidAmount)
	}
	if amount.GreaterThan(a.Available()) {
		return fmt.Errorf("debit %s of %s (available %s): %w", a.Number, amount, a.Available(), ErrInsufficientFunds)
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// SetOverdraftLimit changes the limit of a with_overdraft account. The new
// limit must still cover the overdraft currently in use.
func (a *Account) SetOverdraftLimit(limit decimal.Decimal) error {
	if a.Kind != KindWithOverdraft {
		return fmt.Errorf("overdraft %s: %w", a.Number, ErrNoOverdraftAccount)
	}
	if limit.IsNegative() {
		return fmt.Errorf("overdraft %s: %w", a.Number, ErrInvalidOverdraftLimit)
	}
	if limit.Neg().GreaterThan(a.Balance) {
		return fmt.Errorf("overdraft %s to %s (balance %s): %w", a.Number, limit, a.Balance, ErrIncompatibleOverdraft)
	}
	a.OverdraftLimit = limit
	return nil
}

// CanBeDeleted reports whether the balance is exactly zero.
func (a *Account) CanBeDeleted() bool {
	return a.Balance.IsZero()
}

// IsOverdrawn reports whether the balance is negative.
func (a *Account) IsOverdrawn() bool {
	return a.Balance.IsNegative()
}

// Clone returns an independent copy.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}
