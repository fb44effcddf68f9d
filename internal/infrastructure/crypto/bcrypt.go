// Package crypto provides the password hash schemes used by the
// credential service.
package crypto

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptHashLen = 60

// BcryptScheme is the modern scheme. New passwords are always hashed with it.
type BcryptScheme struct {
	cost int
}

// NewBcryptScheme clamps cost to the range bcrypt accepts; zero means
// bcrypt.DefaultCost.
func NewBcryptScheme(cost int) *BcryptScheme {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptScheme{cost: cost}
}

func (s *BcryptScheme) Name() string { return "bcrypt" }

func (s *BcryptScheme) Hash(raw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Recognizes accepts the $2a$, $2b$ and $2y$ variants with a readable cost.
func (s *BcryptScheme) Recognizes(stored string) bool {
	if len(stored) != bcryptHashLen {
		return false
	}
	if !strings.HasPrefix(stored, "$2a$") && !strings.HasPrefix(stored, "$2b$") && !strings.HasPrefix(stored, "$2y$") {
		return false
	}
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

func (s *BcryptScheme) Matches(raw, stored string) (bool, error) {
	if !s.Recognizes(stored) {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(raw))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
