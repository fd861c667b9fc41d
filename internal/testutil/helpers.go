package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/twinvest/portfolio-ledger-backend/internal/oracle"
	"github.com/twinvest/portfolio-ledger-backend/internal/repository"
	"github.com/twinvest/portfolio-ledger-backend/internal/service"
)

func NewTestPortfolioService(t *testing.T, db *sql.DB, priceOracle *oracle.Oracle) *service.PortfolioService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)
	capitalRepo := repository.NewCapitalRepository(db)

	return service.NewPortfolioService(
		portfolioRepo,
		capitalRepo,
		priceOracle,
	)
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)

	return service.NewTransactionService(
		transactionRepo,
		portfolioRepo,
	)
}

func NewTestPriceService(t *testing.T, db *sql.DB, priceOracle *oracle.Oracle) *service.PriceService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)

	return service.NewPriceService(
		portfolioRepo,
		priceOracle,
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeCategoryName generates a unique category name for testing.
//
// Example usage:
//
//	name := testutil.MakeCategoryName("TW Long-Term")
//	// Returns: "TW Long-Term ABC123"
func MakeCategoryName(base string) string {
	if base == "" {
		base = "Category"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
