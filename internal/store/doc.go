// Package store provides the SQLite-backed run ledger.
//
// Every pipeline stage (emit, determinism, index) can record its outcome
// keyed by (analysis_run_id, stage). Re-recording the same key replaces the
// row's values but keeps its original seq, so listings stay in first-seen
// order.
//
// # Ordering
//
// All list queries use ORDER BY seq ASC. Timestamps are informational and
// never used for ordering.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
