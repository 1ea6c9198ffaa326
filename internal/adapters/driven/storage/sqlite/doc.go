// Package sqlite provides the SQLite-backed evaluation history.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, so the container image stays a static build.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a NNN_name.up.sql file and is
// recorded in schema_migrations once applied.
//
// # Data Location
//
// By default, the database is stored at ~/.policyshield/data/history.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL mode
// with a busy timeout so the web server and CLI can share one file.
package sqlite
