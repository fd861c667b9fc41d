package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

// PortfolioRepository provides data access for the ledger state: settings,
// categories, asset positions and their lots. Mutations that span tables
// run inside one database transaction so a failed order leaves the stored
// snapshot untouched.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// Load assembles the full portfolio snapshot from storage. Lots come back
// in insertion order (seq), which is what keeps FIFO deterministic for lots
// sharing an acquisition date.
func (r *PortfolioRepository) Load() (ledger.Portfolio, error) {
	var p ledger.Portfolio

	var lastModified string
	err := r.db.QueryRow(`SELECT us_exchange_rate, last_modified FROM settings WHERE id = 1`).
		Scan(&p.Settings.USExchangeRate, &lastModified)
	if err != nil {
		return ledger.Portfolio{}, fmt.Errorf("failed to query settings: %w", err)
	}
	p.LastModified, err = ParseTime(lastModified)
	if err != nil {
		return ledger.Portfolio{}, err
	}

	if p.Categories, err = r.loadCategories(); err != nil {
		return ledger.Portfolio{}, err
	}
	if p.Transactions, err = r.loadTransactions(); err != nil {
		return ledger.Portfolio{}, err
	}
	if p.CapitalLogs, err = r.loadCapitalLogs(); err != nil {
		return ledger.Portfolio{}, err
	}

	return p, nil
}

func (r *PortfolioRepository) loadCategories() ([]ledger.Category, error) {
	rows, err := r.db.Query(`
		SELECT id, name, market, allocation_percent
		FROM category
		ORDER BY rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category table: %w", err)
	}
	defer rows.Close()

	categories := []ledger.Category{}
	for rows.Next() {
		var c ledger.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Market, &c.AllocationPercent); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category table: %w", err)
	}

	for i := range categories {
		if categories[i].Assets, err = r.loadAssets(categories[i].ID); err != nil {
			return nil, err
		}
	}
	return categories, nil
}

func (r *PortfolioRepository) loadAssets(categoryID string) ([]ledger.AssetPosition, error) {
	rows, err := r.db.Query(`
		SELECT id, symbol, name, shares, avg_cost, current_price
		FROM asset
		WHERE category_id = ?
		ORDER BY rowid ASC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	assets := []ledger.AssetPosition{}
	for rows.Next() {
		var a ledger.AssetPosition
		var name sql.NullString
		if err := rows.Scan(&a.ID, &a.Symbol, &name, &a.Shares, &a.AvgCost, &a.CurrentPrice); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		a.Name = name.String
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}

	for i := range assets {
		if assets[i].Lots, err = r.loadLots(assets[i].ID); err != nil {
			return nil, err
		}
	}
	return assets, nil
}

func (r *PortfolioRepository) loadLots(assetID string) (ledger.Lots, error) {
	rows, err := r.db.Query(`
		SELECT id, date, shares, cost_per_share, exchange_rate
		FROM lot
		WHERE asset_id = ?
		ORDER BY seq ASC
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot table: %w", err)
	}
	defer rows.Close()

	lots := ledger.Lots{}
	for rows.Next() {
		var l ledger.Lot
		var dateStr string
		if err := rows.Scan(&l.ID, &dateStr, &l.Shares, &l.CostPerShare, &l.ExchangeRate); err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		if l.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot table: %w", err)
	}
	return lots, nil
}

func (r *PortfolioRepository) loadTransactions() ([]ledger.Transaction, error) {
	rows, err := r.db.Query(`
		SELECT id, timestamp, asset_id, lot_id, symbol, action, shares, price,
			exchange_rate, gross_amount, fee, tax, category_name, realized_pnl
		FROM "transaction"
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	txns := []ledger.Transaction{}
	for rows.Next() {
		var t ledger.Transaction
		var tsStr string
		var lotID sql.NullString
		if err := rows.Scan(&t.ID, &tsStr, &t.AssetID, &lotID, &t.Symbol, &t.Action, &t.Shares,
			&t.Price, &t.ExchangeRate, &t.GrossAmount, &t.Fee, &t.Tax, &t.CategoryName, &t.RealizedPnL); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if t.Timestamp, err = ParseTime(tsStr); err != nil {
			return nil, err
		}
		t.LotID = lotID.String
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}
	return txns, nil
}

func (r *PortfolioRepository) loadCapitalLogs() ([]ledger.CapitalLogEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, type, amount, timestamp
		FROM capital_log
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query capital_log table: %w", err)
	}
	defer rows.Close()

	logs := []ledger.CapitalLogEntry{}
	for rows.Next() {
		var e ledger.CapitalLogEntry
		var tsStr string
		if err := rows.Scan(&e.ID, &e.Type, &e.Amount, &tsStr); err != nil {
			return nil, fmt.Errorf("failed to scan capital log entry: %w", err)
		}
		if e.Timestamp, err = ParseTime(tsStr); err != nil {
			return nil, err
		}
		logs = append(logs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating capital_log table: %w", err)
	}
	return logs, nil
}

// SaveOrderResult persists the outcome of one executed order: the
// category's new asset set replaces the stored one and the transaction is
// appended to the log, atomically.
func (r *PortfolioRepository) SaveOrderResult(ctx context.Context, category ledger.Category, txn ledger.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := replaceCategoryAssets(ctx, tx, category); err != nil {
		return err
	}
	if err := insertTransaction(ctx, tx, txn); err != nil {
		return err
	}
	if err := touchLastModified(ctx, tx, txn.Timestamp); err != nil {
		return err
	}

	return tx.Commit()
}

// Replace wipes the stored ledger state and writes the given portfolio in
// one database transaction. Used by backup import and by transaction
// revocation, both of which produce a full new snapshot.
func (r *PortfolioRepository) Replace(ctx context.Context, p ledger.Portfolio) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{`capital_log`, `"transaction"`, `lot`, `asset`, `category`} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, c := range p.Categories {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO category (id, name, market, allocation_percent)
			VALUES (?, ?, ?, ?)
		`, c.ID, c.Name, c.Market, c.AllocationPercent); err != nil {
			return fmt.Errorf("failed to insert category: %w", err)
		}
		if err := insertAssets(ctx, tx, c); err != nil {
			return err
		}
	}

	for i, t := range p.Transactions {
		if err := insertTransactionSeq(ctx, tx, t, i); err != nil {
			return err
		}
	}

	for i, e := range p.CapitalLogs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO capital_log (id, seq, type, amount, timestamp)
			VALUES (?, ?, ?, ?, ?)
		`, e.ID, i, e.Type, e.Amount, FormatTime(e.Timestamp)); err != nil {
			return fmt.Errorf("failed to insert capital log entry: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE settings SET us_exchange_rate = ?, last_modified = ? WHERE id = 1
	`, p.Settings.USExchangeRate, FormatTime(p.LastModified)); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	return tx.Commit()
}

// UpdateAllocation stores a category's new target percentage.
func (r *PortfolioRepository) UpdateAllocation(ctx context.Context, categoryID string, percent float64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE category SET allocation_percent = ? WHERE id = ?
	`, percent, categoryID)
	if err != nil {
		return fmt.Errorf("failed to update allocation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateExchangeRate stores the current USD-to-base rate.
func (r *PortfolioRepository) UpdateExchangeRate(ctx context.Context, rate float64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE settings SET us_exchange_rate = ? WHERE id = 1
	`, rate); err != nil {
		return fmt.Errorf("failed to update exchange rate: %w", err)
	}
	return nil
}

// UpdateAssetPrice stores the latest observed quote on a position.
func (r *PortfolioRepository) UpdateAssetPrice(ctx context.Context, symbol string, price float64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE asset SET current_price = ? WHERE symbol = ?
	`, price, symbol); err != nil {
		return fmt.Errorf("failed to update asset price: %w", err)
	}
	return nil
}

// CountCategories reports how many categories exist; zero means the
// portfolio has not been seeded yet.
func (r *PortfolioRepository) CountCategories(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM category`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return n, nil
}

// SeedCategories inserts the fixed onboarding category set.
func (r *PortfolioRepository) SeedCategories(ctx context.Context, categories []ledger.Category) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, c := range categories {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO category (id, name, market, allocation_percent)
			VALUES (?, ?, ?, ?)
		`, c.ID, c.Name, c.Market, c.AllocationPercent); err != nil {
			return fmt.Errorf("failed to seed category: %w", err)
		}
	}

	return tx.Commit()
}

func replaceCategoryAssets(ctx context.Context, tx *sql.Tx, category ledger.Category) error {
	// Lots cascade with their assets.
	if _, err := tx.ExecContext(ctx, `DELETE FROM asset WHERE category_id = ?`, category.ID); err != nil {
		return fmt.Errorf("failed to clear category assets: %w", err)
	}
	return insertAssets(ctx, tx, category)
}

func insertAssets(ctx context.Context, tx *sql.Tx, category ledger.Category) error {
	for _, a := range category.Assets {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO asset (id, category_id, symbol, name, shares, avg_cost, current_price)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, a.ID, category.ID, a.Symbol, a.Name, a.Shares, a.AvgCost, a.CurrentPrice); err != nil {
			return fmt.Errorf("failed to insert asset: %w", err)
		}
		for seq, l := range a.Lots {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO lot (id, asset_id, seq, date, shares, cost_per_share, exchange_rate)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, l.ID, a.ID, seq, FormatTime(l.Date), l.Shares, l.CostPerShare, l.ExchangeRate); err != nil {
				return fmt.Errorf("failed to insert lot: %w", err)
			}
		}
	}
	return nil
}

func insertTransaction(ctx context.Context, tx *sql.Tx, txn ledger.Transaction) error {
	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq)+1, 0) FROM "transaction"`).Scan(&next); err != nil {
		return fmt.Errorf("failed to compute transaction seq: %w", err)
	}
	return insertTransactionSeq(ctx, tx, txn, next)
}

func insertTransactionSeq(ctx context.Context, tx *sql.Tx, txn ledger.Transaction, seq int) error {
	lotID := sql.NullString{String: txn.LotID, Valid: txn.LotID != ""}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO "transaction" (id, seq, timestamp, asset_id, lot_id, symbol, action,
			shares, price, exchange_rate, gross_amount, fee, tax, category_name, realized_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, txn.ID, seq, FormatTime(txn.Timestamp), txn.AssetID, lotID, txn.Symbol, txn.Action,
		txn.Shares, txn.Price, txn.ExchangeRate, txn.GrossAmount, txn.Fee, txn.Tax,
		txn.CategoryName, txn.RealizedPnL); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func touchLastModified(ctx context.Context, tx *sql.Tx, t time.Time) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE settings SET last_modified = ? WHERE id = 1
	`, FormatTime(t)); err != nil {
		return fmt.Errorf("failed to update last modified: %w", err)
	}
	return nil
}
