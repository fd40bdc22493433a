// Package database provides the SQLite connection and schema management for
// the dispatch history store.
//
// The database is opened with WAL mode and a busy timeout, and the pool is
// pinned to a single connection — SQLite supports one writer, and the
// history workload is append-mostly. Schema changes are applied through an
// inline, append-only migration list so upgrades remain a plain restart.
package database
