package domain

import "errors"

// Kind classifies a domain error so callers can react without matching
// individual sentinels.
type Kind string

const (
	KindIllegalFormat     Kind = "illegal_format"
	KindIllegalOperation  Kind = "illegal_operation"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindNotFound          Kind = "not_found"
	KindTechnical         Kind = "technical"
)

// Error is a domain sentinel carrying its kind. Sentinels are compared by
// identity, so wrap them with fmt.Errorf("...: %w", err) to add context.
type Error struct {
	Kind Kind
	msg  string
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

var (
	ErrInvalidAmount         = newError(KindIllegalFormat, "amount must be strictly positive")
	ErrInvalidOverdraftLimit = newError(KindIllegalFormat, "overdraft limit must not be negative")
	ErrInvalidUserID         = newError(KindIllegalFormat, "invalid user id")
	ErrInvalidAccountNumber  = newError(KindIllegalFormat, "invalid account number")
	ErrInvalidClientNumber   = newError(KindIllegalFormat, "invalid client number")
	ErrInvalidPassword       = newError(KindIllegalFormat, "password cannot be hashed")

	ErrInsufficientFunds = newError(KindInsufficientFunds, "insufficient funds")

	ErrIncompatibleOverdraft = newError(KindIllegalOperation, "overdraft limit is below the overdraft in use")
	ErrNoOverdraftAccount    = newError(KindIllegalOperation, "account does not allow overdraft")
	ErrSameAccount           = newError(KindIllegalOperation, "source and destination accounts are the same")
	ErrNonZeroBalance        = newError(KindIllegalOperation, "balance must be zero")
	ErrLastManager           = newError(KindIllegalOperation, "cannot remove the last manager")
	ErrWrongPassword         = newError(KindIllegalOperation, "current password is incorrect")
	ErrBlankPassword         = newError(KindIllegalOperation, "new password is required")
	ErrIdentityMismatch      = newError(KindIllegalOperation, "identity does not match any user")
	ErrNotAClient            = newError(KindIllegalOperation, "user is not a client")
	ErrForbidden             = newError(KindIllegalOperation, "access forbidden")
	ErrNotAuthenticated      = newError(KindIllegalOperation, "no authenticated user")

	ErrAccountNotFound = newError(KindNotFound, "account not found")
	ErrUserNotFound    = newError(KindNotFound, "user not found")

	ErrDuplicateAccount      = newError(KindTechnical, "account number already in use")
	ErrDuplicateUser         = newError(KindTechnical, "user id already in use")
	ErrDuplicateClientNumber = newError(KindTechnical, "client number already in use")
)

// KindOf returns the kind of the first domain error in err's chain.
// Errors that do not come from this package are technical failures.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindTechnical
}
