package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migration.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Portfolio-wide settings (single row)
		CREATE TABLE settings (
			id INTEGER NOT NULL PRIMARY KEY CHECK (id = 1),
			us_exchange_rate REAL NOT NULL DEFAULT 0,
			last_modified TEXT NOT NULL
		);

		INSERT INTO settings (id, us_exchange_rate, last_modified)
		VALUES (1, 0, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'));

		-- Capital allocation buckets
		CREATE TABLE category (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL UNIQUE,
			market VARCHAR(2) NOT NULL,
			allocation_percent REAL NOT NULL DEFAULT 0
		);

		-- Held instruments
		CREATE TABLE asset (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			category_id VARCHAR(36) NOT NULL,
			symbol VARCHAR(20) NOT NULL,
			name VARCHAR(100),
			shares REAL NOT NULL,
			avg_cost REAL NOT NULL,
			current_price REAL NOT NULL DEFAULT 0,
			FOREIGN KEY (category_id) REFERENCES category(id) ON DELETE CASCADE,
			CONSTRAINT unique_category_symbol UNIQUE (category_id, symbol)
		);

		-- Purchase lots
		CREATE TABLE lot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id VARCHAR(36) NOT NULL,
			seq INTEGER NOT NULL,
			date TEXT NOT NULL,
			shares REAL NOT NULL,
			cost_per_share REAL NOT NULL,
			exchange_rate REAL NOT NULL,
			FOREIGN KEY (asset_id) REFERENCES asset(id) ON DELETE CASCADE
		);

		-- Audit log (quoted because transaction is a reserved keyword)
		CREATE TABLE "transaction" (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			seq INTEGER NOT NULL,
			timestamp TEXT NOT NULL,
			asset_id VARCHAR(36) NOT NULL,
			lot_id VARCHAR(36),
			symbol VARCHAR(20) NOT NULL,
			action VARCHAR(10) NOT NULL,
			shares REAL NOT NULL,
			price REAL NOT NULL,
			exchange_rate REAL NOT NULL,
			gross_amount REAL NOT NULL,
			fee REAL NOT NULL DEFAULT 0,
			tax REAL NOT NULL DEFAULT 0,
			category_name VARCHAR(100) NOT NULL,
			realized_pnl REAL NOT NULL DEFAULT 0
		);

		-- Deposits and withdrawals
		CREATE TABLE capital_log (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			seq INTEGER NOT NULL,
			type VARCHAR(10) NOT NULL,
			amount REAL NOT NULL,
			timestamp TEXT NOT NULL
		);

		CREATE INDEX idx_asset_category ON asset(category_id);
		CREATE INDEX idx_lot_asset ON lot(asset_id, seq);
		CREATE INDEX idx_transaction_asset ON "transaction"(asset_id, seq);
	`

	_, err := db.Exec(schema)
	return err
}
