// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
users.go - User and Role Models

Roles:
  - client: owns cases; the only role that may create or mutate case content
  - lawyer: sees a case only through an access grant (or discovery listing)
  - admin: full read access and workflow oversight

Role membership is fixed at registration; there is no role hierarchy.
A lawyer never becomes a case owner and a client never receives a grant.
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// Role constants define the three user roles.
const (
	// RoleClient owns cases and approves lawyer access.
	RoleClient = "client"

	// RoleLawyer requests and receives case access via grants.
	RoleLawyer = "lawyer"

	// RoleAdmin has unrestricted read access.
	RoleAdmin = "admin"
)

// ValidRoles contains all valid role names for validation.
var ValidRoles = []string{RoleClient, RoleLawyer, RoleAdmin}

// IsValidRole checks if a role name is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents an account in the system.
type User struct {
	// ID is the primary key (UUID).
	ID string `json:"id"`

	// Username is the unique login name.
	Username string `json:"username"`

	// Email is the contact address.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash; never serialized.
	PasswordHash string `json:"-"`

	// Role is one of client, lawyer, admin.
	Role string `json:"role"`

	CreatedAt time.Time `json:"created_at"`
}

// NewUser creates a User with a fresh ID and creation timestamp.
func NewUser(username, email, passwordHash, role string) *User {
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
}
