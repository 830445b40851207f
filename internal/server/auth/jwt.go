// Package auth issues and verifies the bearer tokens handed out at sign-in
// and carries the authenticated identity through request contexts.
package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Claims carries the standard claims plus the user's email and name.
// The user id travels in the subject.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenService signs and verifies HS256 tokens with a fixed secret.
type TokenService struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenService(secret []byte, validity time.Duration) *TokenService {
	return &TokenService{secret: secret, validity: validity, now: time.Now}
}

// Issue signs a token for id. A non-positive validity produces a token that
// is already expired.
func (s *TokenService) Issue(id Identity) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		Email: id.Email,
		Name:  id.Name,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Parse verifies tokenString and returns the identity it was issued for.
// Every failure (bad signature, expiry, malformed subject) wraps
// common.ErrInvalidToken.
func (s *TokenService) Parse(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: bad subject", common.ErrInvalidToken)
	}

	return &Identity{ID: id, Email: claims.Email, Name: claims.Name}, nil
}
