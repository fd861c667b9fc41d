package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
)

// SetAllocation replaces a category's target percentage of total capital and
// returns the updated portfolio snapshot. Percentages are independent per
// category: no normalization to 100% is performed, so the portfolio may be
// over- or under-allocated as a whole. That is a reportable state, not an
// error.
func SetAllocation(p Portfolio, categoryID string, percent float64) (Portfolio, error) {
	if percent < 0 || percent > 100 {
		return Portfolio{}, apperrors.ErrInvalidAllocation
	}

	idx := -1
	for i, c := range p.Categories {
		if c.ID == categoryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Portfolio{}, apperrors.ErrCategoryNotFound
	}

	out := p
	out.Categories = make([]Category, len(p.Categories))
	copy(out.Categories, p.Categories)
	out.Categories[idx].AllocationPercent = percent
	out.LastModified = time.Now().UTC()

	return out, nil
}

// RecordCapital appends a deposit or withdrawal to the capital log and
// returns the updated portfolio. The log is append-only; the running total
// is always derived by folding it (see TotalCapital).
func RecordCapital(p Portfolio, entryType CapitalEntryType, amount float64, ts time.Time) (Portfolio, CapitalLogEntry, error) {
	if amount < 0 {
		return Portfolio{}, CapitalLogEntry{}, apperrors.ErrNegativeAmount
	}
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	entry := CapitalLogEntry{
		ID:        uuid.New().String(),
		Type:      entryType,
		Amount:    amount,
		Timestamp: ts,
	}

	out := p
	out.CapitalLogs = make([]CapitalLogEntry, len(p.CapitalLogs), len(p.CapitalLogs)+1)
	copy(out.CapitalLogs, p.CapitalLogs)
	out.CapitalLogs = append(out.CapitalLogs, entry)
	out.LastModified = ts

	return out, entry, nil
}
