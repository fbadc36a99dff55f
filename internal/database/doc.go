// Package database provides SQLite-based storage for collection history.
//
// This package implements the HistoryDB, which stores:
//   - Collection runs with the full report and fingerprint summary
//   - Per-platform records for quick cross-run queries
//   - Saved LLM analyses
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
