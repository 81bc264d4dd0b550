// Package store provides SQLite-backed storage for answered questions.
//
// Every successful pipeline run is appended to the query_history table.
// Rows are ordered by an autoincrement seq, never by wall-clock time, so
// reads are deterministic even when two answers share a timestamp.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//
// The history database is separate from the datasets being queried, which
// are only ever opened read-only.
package store
