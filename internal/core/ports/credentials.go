package ports

import "context"

// HashScheme is one password hashing algorithm.
type HashScheme interface {
	Name() string
	Hash(raw string) (string, error)
	// Recognizes reports whether stored looks like a hash of this scheme.
	Recognizes(stored string) bool
	// Matches must return false, never an error, for a stored value it does
	// not recognize.
	Matches(raw, stored string) (bool, error)
}

// SessionStore keeps session id -> user id across requests.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string) error
	// Load returns domain.ErrNotAuthenticated when the session is unknown or expired.
	Load(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}
