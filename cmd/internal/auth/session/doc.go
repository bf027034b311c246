// Package session implements Quill's dual-token scheme: short-lived
// stateless access tokens (signed JWTs) and longer-lived stateful refresh
// tokens (opaque secrets whose hashes live in the session store), with
// threshold-based refresh rotation.
package session
