package service

import (
	"context"
	"fmt"

	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
	"github.com/twinvest/portfolio-ledger-backend/internal/repository"
)

// TransactionService serves the append-only audit log and handles
// revocation, the one operation that removes a record - by reversing its
// ledger effect exactly, never by editing it.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	portfolioRepo   *repository.PortfolioRepository
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	portfolioRepo *repository.PortfolioRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		portfolioRepo:   portfolioRepo,
	}
}

// GetTransactions retrieves the transaction log, optionally filtered to one
// category name.
func (s *TransactionService) GetTransactions(categoryName string) ([]ledger.Transaction, error) {
	return s.transactionRepo.GetTransactions(categoryName)
}

// GetTransaction retrieves a single transaction by its ID.
func (s *TransactionService) GetTransaction(transactionID string) (ledger.Transaction, error) {
	return s.transactionRepo.GetTransaction(transactionID)
}

// RevokeTransaction deletes a transaction and reverses its ledger effect.
// Fails with apperrors.ErrIrreversibleTransaction when later activity
// already depends on the revoked record.
func (s *TransactionService) RevokeTransaction(ctx context.Context, transactionID string) error {
	p, err := s.portfolioRepo.Load()
	if err != nil {
		return err
	}

	reversed, err := ledger.Revoke(p, transactionID)
	if err != nil {
		return err
	}

	if err := s.portfolioRepo.Replace(ctx, reversed); err != nil {
		return fmt.Errorf("failed to persist revocation: %w", err)
	}
	return nil
}
