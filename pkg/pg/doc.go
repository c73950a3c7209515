// Package pg manages the PostgreSQL connection pool backing the
// session and activity stores: connect with retry, health checking,
// and goose schema migrations.
package pg
