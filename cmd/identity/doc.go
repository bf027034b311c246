// Package identity implements Quill's user directory.
//
// It owns the users table and credential verification. The token core
// consumes it through a narrow read interface (lookup by id); the auth
// HTTP layer additionally uses it for the password login flow.
//
// This package is intentionally dependency-light and security-first.
package identity
