// Package storage persists the per-message post counts between invocations.
//
// Drivers:
//   - "file":   JSON array of {"value","count"} objects, replaced atomically on save,
//     plus an append-only <prefix>.history.jsonl of successful posts
//   - "sqlite": SQLite database file with counts and history tables
//
// Concurrent invocations against the same store are not coordinated.
package storage
