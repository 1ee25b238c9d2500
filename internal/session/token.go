package session

import (
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"
)

// sessionClaims is the payload of a pre-issued session token.
type sessionClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// parseToken verifies an HS256 session token against the configured
// secret and extracts the identity. The subject claim is the UID.
func (p *Provider) parseToken(token string) (Identity, error) {
	if len(p.secret) == 0 {
		return Identity{}, ErrNoSecret
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return p.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !parsed.Valid {
		return Identity{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("token has no subject")
	}

	return Identity{
		UID:   claims.Subject,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}

// IssueToken mints a session token for a UID, signed with the given
// secret. Used by tests and by deployments that pre-issue tokens out
// of band.
func IssueToken(secret []byte, uid, name, email string) (string, error) {
	claims := &sessionClaims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: uid,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
