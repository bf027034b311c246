// Package authapi exposes Quill's token scheme over HTTP: the login,
// refresh, revoke, and logout endpoints, plus the request middleware that
// verifies access tokens and silently refreshes them for cookie clients.
package authapi
