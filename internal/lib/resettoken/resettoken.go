// Package resettoken issues and verifies stateless password-reset tokens.
// A token is a compact HS256-signed payload binding the user's email to an
// absolute expiry, so no reset-token table is needed.
package resettoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type claims struct {
	ResetEmail string `json:"reset_email"`
	jwt.RegisteredClaims
}

// New signs a reset token for email valid for ttl.
func New(email string, ttl time.Duration, secret string) (string, error) {
	c := claims{
		ResetEmail: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString([]byte(secret))
}

// Verify checks the signature and expiry and returns the embedded email.
// Any failure (bad signature, malformed payload, expired) reports
// ErrInvalidToken without detail.
func Verify(tokenStr string, secret string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.ResetEmail == "" {
		return "", ErrInvalidToken
	}

	return c.ResetEmail, nil
}
