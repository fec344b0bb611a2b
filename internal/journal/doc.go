// Package journal provides SQLite-backed history of beat table mutations.
//
// Every persisted operation (append, delete, sort, generate) is recorded as
// one row. The beat table file stays the source of truth; the journal only
// answers "what changed, and when".
//
// # Ordering
//
//   - seq INTEGER PRIMARY KEY AUTOINCREMENT is the ordering key
//   - recorded_at is informational and never used for ordering
//
// # Database Configuration
//
//   - WAL mode: readers (history) do not block the writer
//   - synchronous=NORMAL
//   - busy_timeout=5000: a second process waits instead of failing at once
//
// Entry IDs are UUIDv7 so they sort by creation time as well.
package journal
