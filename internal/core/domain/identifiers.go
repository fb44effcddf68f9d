package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	clientUserIDPattern  = regexp.MustCompile(`^[a-z]\.[a-z]+[1-9][0-9]*$`)
	accountNumberPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{10}$`)
	clientNumberPattern  = regexp.MustCompile(`^[0-9]{10}$`)
)

// ValidateUserID checks a user id against the grammar of its role.
// Clients follow the "j.doe1" pattern; managers only need a non-blank id
// without whitespace (historical ids such as "admin" are still valid).
func ValidateUserID(role Role, id string) error {
	switch role {
	case RoleClient:
		if !clientUserIDPattern.MatchString(id) {
			return fmt.Errorf("%w: %q", ErrInvalidUserID, id)
		}
	case RoleManager:
		if id == "" || strings.ContainsAny(id, " \t\r\n") {
			return fmt.Errorf("%w: %q", ErrInvalidUserID, id)
		}
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidUserID, role)
	}
	return nil
}

// ValidateAccountNumber checks the two-letter prefix + 10 digits format.
func ValidateAccountNumber(number string) error {
	if !accountNumberPattern.MatchString(number) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountNumber, number)
	}
	return nil
}

// ValidateClientNumber checks that a client number is exactly 10 digits.
func ValidateClientNumber(number string) error {
	if !clientNumberPattern.MatchString(number) {
		return fmt.Errorf("%w: %q", ErrInvalidClientNumber, number)
	}
	return nil
}
