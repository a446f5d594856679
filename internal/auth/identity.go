// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package auth

import "context"

// Identity is the authenticated caller as resolved from the session token.
// Handlers never parse tokens themselves; the middleware puts an Identity
// on the request context and everything downstream reads it from there.
type Identity struct {
	ID       string
	Username string
	Role     string
}

// identityContextKey is the private context key for the Identity.
type identityContextKey struct{}

// ContextWithIdentity returns a context carrying the identity.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the authenticated identity from the context.
// The second return is false on unauthenticated requests; handlers behind
// RequireAuth can rely on it being true.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	return id, ok && id != nil
}
