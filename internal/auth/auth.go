// Package auth provides capability tokens and anti-forgery nonces for the settings API.
package auth

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Claims represents the JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string   `json:"uid"`
	Capabilities []string `json:"caps,omitempty"`
}

// Can reports whether the token grants capability.
func (c *Claims) Can(capability string) bool {
	return c != nil && slices.Contains(c.Capabilities, capability)
}

// TokenService issues and validates capability tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(signingKey []byte, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{
		signingKey: signingKey,
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Generate signs a token for userID carrying capabilities.
func (s *TokenService) Generate(userID string, capabilities []string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:       userID,
		Capabilities: capabilities,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// Validate parses tokenStr and checks its signature, issuer and expiry.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearerToken extracts the token from an Authorization header.
func ExtractBearerToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
