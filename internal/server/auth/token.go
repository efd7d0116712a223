package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/frankly034/userdir/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the minimal identity payload embedded in a signed token:
// the principal id plus a display name. No scopes are carried.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Username string `json:"username"`
}

// TokenService signs and decodes bearer tokens. Secret, algorithm and
// validity are fixed at construction time, not per call. The service is
// stateless and safe for concurrent use.
type TokenService struct {
	secret   []byte
	method   jwt.SigningMethod
	validity time.Duration
}

// NewTokenService builds a TokenService from the configured signing secret,
// algorithm identifier (HS256/HS384/HS512) and token validity.
func NewTokenService(secret, algorithm string, validity time.Duration) (*TokenService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q: only HMAC variants are configured with a symmetric secret", algorithm)
	}
	return &TokenService{
		secret:   []byte(secret),
		method:   method,
		validity: validity,
	}, nil
}

// Issue signs a token for the given principal.
func (s *TokenService) Issue(userID, username string) (string, error) {
	token := jwt.NewWithClaims(s.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   userID,
		Username: username,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// Decode parses and verifies a raw token string (no scheme prefix). It never
// panics on malformed input. Expired tokens yield common.ErrTokenExpired;
// anything else that fails verification yields common.ErrInvalidToken.
func (s *TokenService) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
