package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

// TransactionRepository provides read access to the append-only audit log.
// Writes go through PortfolioRepository so they share a database
// transaction with the asset state they belong to.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// GetTransactions retrieves the full log in append order, optionally
// filtered to one category name.
func (r *TransactionRepository) GetTransactions(categoryName string) ([]ledger.Transaction, error) {
	query := `
		SELECT id, timestamp, asset_id, lot_id, symbol, action, shares, price,
			exchange_rate, gross_amount, fee, tax, category_name, realized_pnl
		FROM "transaction"
	`
	var args []any
	if categoryName != "" {
		query += ` WHERE category_name = ?`
		args = append(args, categoryName)
	}
	query += ` ORDER BY seq ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	txns := []ledger.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}
	return txns, nil
}

// GetTransaction retrieves a single transaction by its ID.
func (r *TransactionRepository) GetTransaction(transactionID string) (ledger.Transaction, error) {
	row := r.db.QueryRow(`
		SELECT id, timestamp, asset_id, lot_id, symbol, action, shares, price,
			exchange_rate, gross_amount, fee, tax, category_name, realized_pnl
		FROM "transaction"
		WHERE id = ?
	`, transactionID)

	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Transaction{}, apperrors.ErrTransactionNotFound
	}
	return t, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (ledger.Transaction, error) {
	var t ledger.Transaction
	var tsStr string
	var lotID sql.NullString

	err := row.Scan(&t.ID, &tsStr, &t.AssetID, &lotID, &t.Symbol, &t.Action, &t.Shares,
		&t.Price, &t.ExchangeRate, &t.GrossAmount, &t.Fee, &t.Tax, &t.CategoryName, &t.RealizedPnL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Transaction{}, err
		}
		return ledger.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if t.Timestamp, err = ParseTime(tsStr); err != nil {
		return ledger.Transaction{}, err
	}
	t.LotID = lotID.String
	return t, nil
}
