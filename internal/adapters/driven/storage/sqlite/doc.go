// Package sqlite provides SQLite-backed persistence for Noteward.
//
// A single database file holds tasks, digests, and the persisted
// vector index. The Store type owns the connection and migrations;
// the per-concern store interfaces are exposed through wrapper types
// so the core services depend only on the narrow ports they use.
package sqlite
