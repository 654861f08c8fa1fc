// Package records is the append-only record log: one ordered sequence of
// encrypted envelopes per category.
//
// # Contract
//
//   - Append adds an envelope as the new last element of its category.
//     Prior elements are never mutated or removed.
//   - ReadAll returns a snapshot in insertion order, or an empty slice when
//     nothing was appended yet.
//   - When the medium itself is unreadable ReadAll returns an empty slice and
//     an error matching common.ErrStorageDegraded; callers treat the category
//     as empty instead of failing.
//
// # Implementations
//
//   - SQLiteRepository: default local store (modernc.org/sqlite)
//   - PostgresRepository: shared store for several client instances (pgx)
//   - FileRepository: one JSON array per category, atomic rename on write
//   - MemoryRepository: process-local, used by tests and the memory driver
//
// The SQL stores order by a per-category sequence column, so concurrent
// appenders from different processes cannot overwrite each other.
package records
