// Package sqlite provides a SQLite-based implementation of the
// PassageStore driven port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Passages hold text and
// positional identity only; vectors live in the vector index adapters.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory as .up.sql files embedded at compile time.
//
// # Data Location
//
// By default, the database is stored at ~/.ancora/data/ancora.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
