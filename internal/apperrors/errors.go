package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrCategoryNotFound indicates that a category with the given ID does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrAssetNotFound indicates that an asset position with the given ID does not
	// exist within the target category.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrLotNotFound indicates that a purchase lot with the given ID does not exist.
	ErrLotNotFound = errors.New("lot not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrCapitalLogNotFound indicates that a capital log entry does not exist.
	ErrCapitalLogNotFound = errors.New("capital log entry not found")

	// ErrSymbolNotFound indicates that a symbol lookup returned no results.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrPriceNotFound indicates that no quote could be obtained for a symbol,
	// neither fresh nor from the cache.
	ErrPriceNotFound = errors.New("price not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidShares indicates that an order requested a non-positive share count.
	ErrInvalidShares = errors.New("shares must be positive")

	// ErrInsufficientShares indicates that a sell order cannot be completed
	// because the position does not hold enough shares.
	ErrInsufficientShares = errors.New("insufficient shares for sale")

	// ErrIrreversibleTransaction indicates that a transaction can no longer be
	// revoked because later activity already consumed the shares it created.
	ErrIrreversibleTransaction = errors.New("transaction is no longer reversible")

	// ErrInvalidAction indicates that an order carries an unknown action.
	ErrInvalidAction = errors.New("invalid order action")

	// ErrInvalidMarket indicates that a market is neither TW nor US.
	ErrInvalidMarket = errors.New("invalid market")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidAllocation indicates that an allocation percentage is outside 0-100.
	ErrInvalidAllocation = errors.New("allocation percent must be between 0 and 100")
)

// Import/export errors represent problems with backup payloads. A rejected
// import must leave the stored portfolio untouched.
var (
	// ErrInvalidBackup indicates that a backup payload is missing required
	// top-level fields (categories, totalCapital) or cannot be parsed.
	ErrInvalidBackup = errors.New("invalid backup payload")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrievePortfolio    = errors.New("failed to retrieve portfolio")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveTransaction  = errors.New("failed to retrieve transaction")
	ErrFailedToRetrieveCapitalLog   = errors.New("failed to retrieve capital log")
	ErrFailedToExecuteOrder         = errors.New("failed to execute order")
	ErrFailedToRecordCapital        = errors.New("failed to record capital entry")
	ErrFailedToSetAllocation        = errors.New("failed to set allocation")
	ErrFailedToRefreshPrices        = errors.New("failed to refresh prices")
	ErrFailedToExportBackup         = errors.New("failed to export backup")
	ErrFailedToImportBackup         = errors.New("failed to import backup")
)
