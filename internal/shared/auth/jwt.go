package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TypeAccess marks short-lived tokens accepted by the API middleware.
	TypeAccess = "access"
	// TypeRefresh marks tokens accepted only by the refresh endpoint.
	TypeRefresh = "refresh"
)

// ErrInvalidToken is returned for tokens that fail signature, shape, or
// expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried in issued tokens.
type Claims struct {
	Username  string `json:"username,omitempty"`
	Admin     bool   `json:"admin,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens with a shared secret.
type Signer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewSigner builds a Signer. An empty secret falls back to a dev-only value.
func NewSigner(secret string, accessTTL, refreshTTL time.Duration) *Signer {
	if secret == "" {
		secret = "dev-secret"
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Signer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// TokenPair carries a freshly issued access/refresh pair.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// IssuePair signs an access and a refresh token for the given user.
func (s *Signer) IssuePair(userID, username string, admin bool) (TokenPair, error) {
	access, err := s.sign(userID, username, admin, TypeAccess, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(userID, username, admin, TypeRefresh, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess signs a new access token, typically from refresh-token claims.
func (s *Signer) IssueAccess(userID, username string, admin bool) (string, error) {
	return s.sign(userID, username, admin, TypeAccess, s.accessTTL)
}

// Verify parses a token and checks its signature, expiry, and type.
func (s *Signer) Verify(token, wantType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Signer) sign(userID, username string, admin bool, tokenType string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := time.Now().UTC()
	claims := Claims{
		Username:  username,
		Admin:     admin,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
