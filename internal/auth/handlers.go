// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
handlers.go - Authentication Endpoints

Endpoints:
  - POST /api/v1/auth/register  self-signup (client or lawyer only)
  - POST /api/v1/auth/login     issues JWT, sets HTTP-only cookie
  - POST /api/v1/auth/logout    clears the cookie
  - GET  /api/v1/auth/me        returns the caller's identity

Login failures never distinguish "no such user" from "wrong password".
*/

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/docket-hq/docket/internal/config"
	"github.com/docket-hq/docket/internal/database"
	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/models"
	"github.com/docket-hq/docket/internal/validation"
)

// UserStore is the persistence port the auth service needs. *database.DB
// satisfies it; tests substitute a mock.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// Service provides authentication handlers and middleware.
type Service struct {
	db  UserStore
	jwt *JWTManager
	cfg *config.SecurityConfig
}

// NewService creates the authentication service.
func NewService(db UserStore, jwtManager *JWTManager, cfg *config.SecurityConfig) *Service {
	return &Service{db: db, jwt: jwtManager, cfg: cfg}
}

// HandleRegister creates a new client or lawyer account.
func (s *Service) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := HashPassword(req.Password, s.cfg.BcryptCost)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Password hashing failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := models.NewUser(req.Username, req.Email, hash, req.Role)
	if err := s.db.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, database.ErrDuplicateUsername) {
			respondError(w, http.StatusConflict, "Username already exists")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("User creation failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", user.ID).
		Str("role", user.Role).
		Msg("User registered")
	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Success: true,
		Data:    user,
		Message: "Account created",
	})
}

// HandleLogin authenticates a user and issues a session token.
func (s *Service) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if !errors.Is(err, database.ErrUserNotFound) {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Login lookup failed")
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		// Burn a bcrypt comparison so a missing user costs the same as a
		// wrong password.
		CheckPassword("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", req.Password)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !CheckPassword(user.PasswordHash, req.Password) {
		logging.Ctx(r.Context()).Debug().Str("username", req.Username).Msg("Password mismatch")
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Token generation failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	expiresAt := time.Now().Add(s.jwt.SessionTimeout())
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(s.jwt.SessionTimeout().Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	logging.Ctx(r.Context()).Info().
		Str("user_id", user.ID).
		Str("role", user.Role).
		Msg("User logged in")
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Data: &models.LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			UserID:    user.ID,
			Username:  user.Username,
			Role:      user.Role,
		},
	})
}

// HandleLogout clears the session cookie. Tokens are stateless, so a
// Bearer client simply discards its copy.
func (s *Service) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Message: "Logged out",
	})
}

// HandleMe returns the authenticated caller's account.
func (s *Service) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := s.db.GetUser(r.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			// Token outlived the account.
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("User lookup failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{Success: true, Data: user})
}

// respondJSON writes the envelope with the given status.
func respondJSON(w http.ResponseWriter, status int, resp *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes a failure envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, &models.APIResponse{Success: false, Error: message})
}
