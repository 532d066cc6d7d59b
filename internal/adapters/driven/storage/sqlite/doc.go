// Package sqlite provides a durable CacheBackend on a local SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Entries survive restarts, so a cache warmed by one CLI run
// serves the next.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.saturday-night/data/cache.db
//
// # Expiry
//
// Expiry instants are stored as Unix milliseconds. Expired rows are ignored by
// Get and removed by Sweep.
package sqlite
