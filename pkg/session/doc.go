// Package session implements opaque-token session management with a
// durable store as the source of truth and a process-local cache as a
// best-effort index.
//
// A Manager orchestrates the full session lifecycle: creation on login,
// validation on every authenticated request, explicit invalidation on
// logout or admin action, and explicit extension for sliding-window
// deployments. The manager enforces a single-active-session policy: a
// new login atomically invalidates any previously active session for
// the same user.
//
// Expiry is detected lazily at validation time by comparing against the
// configured TTL; an optional background sweep keeps admin aggregates
// accurate between validations but is never required for correctness.
//
// Basic usage:
//
//	mgr := session.New(
//		session.WithStore(session.NewPGStore(pool)),
//		session.WithUserDirectory(users),
//		session.WithRecorder(recorder),
//	)
//
//	token, err := mgr.CreateSession(ctx, userID, ip, userAgent)
//	uc, err := mgr.ValidateSession(ctx, token)
//	err = mgr.InvalidateSession(ctx, token, session.ReasonLogout)
//
// The cache is strictly an optimization: every code path remains
// correct with an empty cache, so process restarts and multi-instance
// deployments degrade to store lookups rather than failing.
package session
