// SPDX-License-Identifier: GPL-3.0-only

package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TypeAccess     TokenType = "access"
	TypeActivation TokenType = "activation"
	// TypeMedia grants read access to one stored object.
	TypeMedia TokenType = "media"
)

// DefaultTTL applies when Issue is called without an explicit lifetime.
const DefaultTTL = 15 * time.Minute

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	Type TokenType `json:"type"`
	jwt.RegisteredClaims
}

type Service struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

func NewService(secret string, defaultTTL time.Duration) *Service {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Service{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Issue signs claims with HS256. A ttl <= 0 falls back to the service default.
func (s *Service) Issue(claims Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) IssueAccessToken(email string, ttl time.Duration) (string, error) {
	return s.Issue(Claims{
		Type:             TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: email},
	}, ttl)
}

func (s *Service) IssueActivationToken(email string, ttl time.Duration) (string, error) {
	return s.Issue(Claims{
		Type:             TypeActivation,
		RegisteredClaims: jwt.RegisteredClaims{Subject: email},
	}, ttl)
}

// Verify checks signature, algorithm and expiry. Any failure is reported as
// ErrInvalidToken; the token type is left for the caller to check.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
