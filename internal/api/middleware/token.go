package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	claimSubject   = "sub"
	claimSessionID = "sid"
)

var errInvalidToken = errors.New("invalid token")

// IssueToken signs an HS256 token binding a session id to a user id.
func IssueToken(secret, sessionID, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		claimSubject:   userID,
		claimSessionID: sessionID,
		"iat":          now.Unix(),
		"exp":          now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(secret, raw string) (sessionID, userID string, err error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tkn.Valid {
		return "", "", errInvalidToken
	}

	sessionID, _ = claims[claimSessionID].(string)
	userID, _ = claims[claimSubject].(string)
	if sessionID == "" || userID == "" {
		return "", "", errInvalidToken
	}
	return sessionID, userID, nil
}
