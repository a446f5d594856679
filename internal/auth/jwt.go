// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/docket-hq/docket/internal/config"
)

// Claims represents the JWT claims carried by a session token.
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token creation and validation.
type JWTManager struct {
	secret  []byte
	timeout time.Duration
}

// NewJWTManager creates a JWT token manager with the configured secret and
// session timeout. Tokens are signed with HMAC-SHA256.
//
// Returns an error if the secret is empty; length policy is enforced by
// config validation, not here.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required but was empty")
	}
	return &JWTManager{
		secret:  []byte(cfg.JWTSecret),
		timeout: cfg.SessionTimeout,
	}, nil
}

// GenerateToken creates a signed session token for an authenticated user.
//
// Parameters:
//   - userID: the stable account ID; authorization keys off this, never
//     the username
//   - username: login name, carried for logging
//   - role: client, lawyer, or admin
//
// Returns:
//   - Signed JWT token string valid for the configured session timeout
//   - error if signing fails
func (m *JWTManager) GenerateToken(userID, username, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

// ValidateToken validates a session token and extracts its claims.
//
// Validation covers the signature, the signing algorithm (HS256 only, so
// an attacker cannot downgrade to "none" or swap in an RSA public key),
// and the exp/nbf time bounds.
//
// Returns the parsed Claims, or an error for any invalid, expired, or
// malformed token. Callers translate every failure to the same 401; the
// reason is logged, never surfaced.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == "" {
		return nil, errors.New("token missing user id")
	}
	return claims, nil
}

// SessionTimeout returns the configured token lifetime. Used to align the
// cookie Max-Age with the token expiry.
func (m *JWTManager) SessionTimeout() time.Duration {
	return m.timeout
}
