// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

/*
Package auth provides JWT token management and HTTP middleware for
authentication, authorization, rate limiting, and CORS.

# Tokens

Tokens are HMAC-signed (HS256) and carry the BroSkate identity claims
user_id, username, and role alongside the registered claims. Validation
rejects any token whose signing method is not HMAC, which closes the
classic alg-substitution hole.

	mgr, err := auth.NewJWTManager(secret, 24*time.Hour)
	token, err := mgr.GenerateToken(42, "tonyhawk", "user")
	claims, err := mgr.ValidateToken(token)

# Middleware

Middleware bundles the HTTP concerns the router composes per route group:

  - Authenticate: accepts a Bearer Authorization header or a "token"
    cookie, stashing the verified Claims in the request context
    (ClaimsFromContext retrieves them)
  - RequireRole: role gate; the admin role passes every gate
  - RateLimit: per-client-IP token buckets (golang.org/x/time/rate), with
    a cleanup goroutine that drops buckets idle for over an hour
  - CORS: origin allowlist with wildcard support; preflight requests from
    unknown origins get 403

Call Stop when tearing the middleware down to release the cleanup
goroutine.
*/
package auth
