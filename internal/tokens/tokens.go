package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type AccessClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies bearer tokens. Secret and Expiry are
// loaded once at startup and never change.
type TokenService struct {
	Secret []byte
	Expiry time.Duration
}

func (t *TokenService) CreateToken(userID, role string) (string, time.Time, error) {
	return t.CreateTokenWithExpiry(userID, role, t.Expiry)
}

func (t *TokenService) CreateTokenWithExpiry(userID, role string, expiresIn time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(expiresIn)
	claims := AccessClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			// Timestamps truncate to whole seconds, so the JTI is what keeps
			// two logins in the same second from minting the same token.
			ID: uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, exp, nil
}

// Verify checks signature and expiry only. Session liveness is a separate,
// mandatory check done by the auth gate.
func (t *TokenService) Verify(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(tok *jwt.Token) (any, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return t.Secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
