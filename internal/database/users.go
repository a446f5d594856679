// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/docket-hq/docket/internal/models"
)

// scanUserRow scans a row into a User.
func scanUserRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.User, error) {
	user := &models.User{}
	err := scanner.Scan(
		&user.ID, &user.Username, &user.Email,
		&user.PasswordHash, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

const userColumns = "id, username, email, password_hash, role, created_at"

// GetUser retrieves a user by ID.
// Returns ErrUserNotFound if no user exists.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUserRow(db.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username.
// Returns ErrUserNotFound if no user exists.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	user, err := scanUserRow(db.conn.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user by username: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new user.
// Returns ErrDuplicateUsername when the username is taken.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.conn.ExecContext(ctx, query,
		user.ID, user.Username, user.Email,
		user.PasswordHash, user.Role, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether the error is a unique/primary key
// constraint violation. The DuckDB driver does not expose typed constraint
// errors, so this matches on the message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "primary key")
}
