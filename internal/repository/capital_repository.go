package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

// CapitalRepository provides data access for the capital log. The log is
// append-only; the total is always derived by folding it, never stored.
type CapitalRepository struct {
	db *sql.DB
}

// NewCapitalRepository creates a new CapitalRepository with the provided database connection.
func NewCapitalRepository(db *sql.DB) *CapitalRepository {
	return &CapitalRepository{db: db}
}

// GetEntries retrieves the capital log in append order.
func (r *CapitalRepository) GetEntries() ([]ledger.CapitalLogEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, type, amount, timestamp
		FROM capital_log
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query capital_log table: %w", err)
	}
	defer rows.Close()

	entries := []ledger.CapitalLogEntry{}
	for rows.Next() {
		var e ledger.CapitalLogEntry
		var tsStr string
		if err := rows.Scan(&e.ID, &e.Type, &e.Amount, &tsStr); err != nil {
			return nil, fmt.Errorf("failed to scan capital log entry: %w", err)
		}
		if e.Timestamp, err = ParseTime(tsStr); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating capital_log table: %w", err)
	}
	return entries, nil
}

// InsertEntry appends one deposit or withdrawal.
func (r *CapitalRepository) InsertEntry(ctx context.Context, entry ledger.CapitalLogEntry) error {
	var next int
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq)+1, 0) FROM capital_log`).Scan(&next); err != nil {
		return fmt.Errorf("failed to compute capital log seq: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO capital_log (id, seq, type, amount, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, next, entry.Type, entry.Amount, FormatTime(entry.Timestamp)); err != nil {
		return fmt.Errorf("failed to insert capital log entry: %w", err)
	}
	return nil
}
