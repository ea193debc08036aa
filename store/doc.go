// Package store defines the checkpoint model used for the run audit trail.
//
// When auditing is enabled the pipeline saves one Checkpoint after every
// stage of a run. State holds the JSON encoding of the run state at that
// point, so any backend can persist it without knowing the pipeline types.
//
// Backends live in sub-packages:
//
//   - store/memory: process-local map, the default
//   - store/redis: Redis, one key per checkpoint plus a sorted set per run
//   - store/sqlite: SQLite via mattn/go-sqlite3
//   - store/postgres: PostgreSQL via pgx
//
// All backends return ErrNotFound (possibly wrapped) for unknown IDs.
package store
