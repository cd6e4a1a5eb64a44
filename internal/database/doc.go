// Package database provides SQLite-based storage for mrviz.
//
// This package implements the ReportStore, which keeps a history of
// imported model reports so they can be visualized again later, listed,
// and compared across runs of the report generator.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// Reports are stored in their canonical JSON form, which preserves layer
// order, so a stored report renders exactly like the original file.
package database
