// Package monitor provides the read-only admin view over sessions and
// activity aggregates: currently active sessions joined with user
// identity, the activity histogram and the daily login series. Its
// only mutation is a forced logout, delegated to the session manager.
package monitor
