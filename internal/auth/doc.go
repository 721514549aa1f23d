// Package auth provides authentication and authorisation for the toolkit's
// HTTP API.
//
// It implements a three-tier role model (viewer → operator → admin) with:
//   - Argon2id password hashing
//   - Short-lived HS256 JWT access tokens validated by signature alone
//   - A static role-permission table (no database lookup per request)
//   - A SQLite user store and a bootstrap admin created on first boot
package auth
