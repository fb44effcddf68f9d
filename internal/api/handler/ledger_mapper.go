package handler

import (
	"sort"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
)

// --- Request → Service input ---

func toCreateClientInput(req createClientRequest) ports.CreateClientInput {
	return ports.CreateClientInput{
		UserID:       req.UserID,
		Password:     req.Password,
		LastName:     req.LastName,
		FirstName:    req.FirstName,
		Address:      req.Address,
		Male:         req.Male,
		ClientNumber: req.ClientNumber,
	}
}

func toCreateManagerInput(req createManagerRequest) ports.CreateManagerInput {
	return ports.CreateManagerInput{
		UserID:    req.UserID,
		Password:  req.Password,
		LastName:  req.LastName,
		FirstName: req.FirstName,
		Address:   req.Address,
		Male:      req.Male,
	}
}

func toCreateAccountInput(req createAccountRequest) ports.CreateAccountInput {
	return ports.CreateAccountInput{
		OwnerID:        req.OwnerID,
		Number:         req.Number,
		OverdraftLimit: req.OverdraftLimit,
	}
}

// --- Domain → HTTP response ---

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		Number:         a.Number,
		OwnerID:        a.OwnerID,
		Kind:           string(a.Kind),
		Balance:        a.Balance,
		OverdraftLimit: a.OverdraftLimit,
		Available:      a.Available(),
		Overdrawn:      a.IsOverdrawn(),
		Links: accountLinks{
			Self:  "/accounts/" + a.Number,
			Owner: "/users/" + a.OwnerID,
		},
	}
}

func toAccountResponses(accounts []*domain.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out
}

// toUserResponse never exposes the password hash. Client accounts are
// listed in account-number order.
func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		UserID:    u.UserID,
		Role:      string(u.Role),
		LastName:  u.LastName,
		FirstName: u.FirstName,
		Address:   u.Address,
		Male:      u.Male,
	}
	if u.Client != nil {
		resp.ClientNumber = u.Client.Number
		accounts := make([]*domain.Account, 0, len(u.Client.Accounts))
		for _, a := range u.Client.Accounts {
			accounts = append(accounts, a)
		}
		sort.Slice(accounts, func(i, j int) bool { return accounts[i].Number < accounts[j].Number })
		resp.Accounts = toAccountResponses(accounts)
	}
	return resp
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
