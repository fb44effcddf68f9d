package domain

import (
	"fmt"
	"sort"
)

// Role is the variant tag of a User. It is fixed at creation.
type Role string

const (
	RoleClient  Role = "client"
	RoleManager Role = "manager"
)

// ClientProfile holds the client-only part of a User. Accounts is a
// read model keyed by account number; Account.OwnerID stays the
// authoritative ownership link.
type ClientProfile struct {
	Number   string              `json:"client_number"`
	Accounts map[string]*Account `json:"accounts,omitempty"`
}

// User models a customer or a bank manager.
type User struct {
	UserID       string         `json:"user_id"`
	PasswordHash string         `json:"-"`
	LastName     string         `json:"last_name"`
	FirstName    string         `json:"first_name"`
	Address      string         `json:"address"`
	Male         bool           `json:"male"`
	Role         Role           `json:"role"`
	Client       *ClientProfile `json:"client,omitempty"`
}

// NewClient validates the identifiers of a new client.
func NewClient(userID, passwordHash, lastName, firstName, address string, male bool, clientNumber string) (*User, error) {
	if err := ValidateUserID(RoleClient, userID); err != nil {
		return nil, err
	}
	if err := ValidateClientNumber(clientNumber); err != nil {
		return nil, err
	}
	return &User{
		UserID:       userID,
		PasswordHash: passwordHash,
		LastName:     lastName,
		FirstName:    firstName,
		Address:      address,
		Male:         male,
		Role:         RoleClient,
		Client:       &ClientProfile{Number: clientNumber, Accounts: map[string]*Account{}},
	}, nil
}

// NewManager validates the identifier of a new manager.
func NewManager(userID, passwordHash, lastName, firstName, address string, male bool) (*User, error) {
	if err := ValidateUserID(RoleManager, userID); err != nil {
		return nil, err
	}
	return &User{
		UserID:       userID,
		PasswordHash: passwordHash,
		LastName:     lastName,
		FirstName:    firstName,
		Address:      address,
		Male:         male,
		Role:         RoleManager,
	}, nil
}

func (u *User) IsManager() bool { return u.Role == RoleManager }

func (u *User) IsClient() bool { return u.Role == RoleClient && u.Client != nil }

// Identity renders "FirstName LastName (number)" for clients and
// "FirstName LastName" for managers.
func (u *User) Identity() string {
	if u.IsClient() {
		return fmt.Sprintf("%s %s (%s)", u.FirstName, u.LastName, u.Client.Number)
	}
	return u.FirstName + " " + u.LastName
}

// ChangeClientNumber is the only way to rename a client number.
func (u *User) ChangeClientNumber(number string) error {
	if !u.IsClient() {
		return fmt.Errorf("change client number of %s: %w", u.UserID, ErrNotAClient)
	}
	if err := ValidateClientNumber(number); err != nil {
		return err
	}
	u.Client.Number = number
	return nil
}

// AttachAccounts replaces the client's account read model. Accounts owned
// by someone else are ignored.
func (u *User) AttachAccounts(accounts []*Account) {
	if !u.IsClient() {
		return
	}
	u.Client.Accounts = make(map[string]*Account, len(accounts))
	for _, a := range accounts {
		if a.OwnerID == u.UserID {
			u.Client.Accounts[a.Number] = a
		}
	}
}

// Owns reports whether the account number belongs to the client's read model.
func (u *User) Owns(number string) bool {
	if !u.IsClient() {
		return false
	}
	_, ok := u.Client.Accounts[number]
	return ok
}

// NonZeroAccounts returns the owned accounts whose balance is not zero,
// sorted by account number.
func (u *User) NonZeroAccounts() []*Account {
	if !u.IsClient() {
		return nil
	}
	var out []*Account
	for _, a := range u.Client.Accounts {
		if !a.Balance.IsZero() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// HasOverdrawnAccounts reports whether any owned account is below zero.
func (u *User) HasOverdrawnAccounts() bool {
	if !u.IsClient() {
		return false
	}
	for _, a := range u.Client.Accounts {
		if a.IsOverdrawn() {
			return true
		}
	}
	return false
}
