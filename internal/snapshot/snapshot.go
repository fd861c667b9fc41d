// Package snapshot encodes the portfolio as the JSON backup document and
// decodes it back. Export and import are lossless inverses of each other.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
	"github.com/twinvest/portfolio-ledger-backend/internal/ledger"
)

// Document is the on-disk backup shape. TotalCapital is written for the
// consumer's convenience; on import it is cross-checked but the capital log
// remains the source of truth.
type Document struct {
	TotalCapital float64                  `json:"totalCapital"`
	Settings     ledger.Settings          `json:"settings"`
	Categories   []ledger.Category        `json:"categories"`
	Transactions []ledger.Transaction     `json:"transactions"`
	CapitalLogs  []ledger.CapitalLogEntry `json:"capitalLogs"`
	LastModified time.Time                `json:"lastModified"`
}

// Export encodes a portfolio as an indented backup document.
func Export(p ledger.Portfolio) ([]byte, error) {
	doc := Document{
		TotalCapital: p.TotalCapital(),
		Settings:     p.Settings,
		Categories:   p.Categories,
		Transactions: p.Transactions,
		CapitalLogs:  p.CapitalLogs,
		LastModified: p.LastModified,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Filename returns the export filename convention for a given day,
// e.g. "portfolio_2026-08-31.json".
func Filename(t time.Time) string {
	return fmt.Sprintf("portfolio_%s.json", t.UTC().Format("2006-01-02"))
}

// Import decodes and validates a backup document. Payloads missing the
// categories or totalCapital fields are rejected with
// apperrors.ErrInvalidBackup before any state is touched.
func Import(data []byte) (ledger.Portfolio, error) {
	// Field presence is checked on the raw object: a zero value and a
	// missing key must not be conflated.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return ledger.Portfolio{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidBackup, err)
	}
	if _, ok := probe["categories"]; !ok {
		return ledger.Portfolio{}, fmt.Errorf("%w: missing categories", apperrors.ErrInvalidBackup)
	}
	if _, ok := probe["totalCapital"]; !ok {
		return ledger.Portfolio{}, fmt.Errorf("%w: missing totalCapital", apperrors.ErrInvalidBackup)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return ledger.Portfolio{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidBackup, err)
	}

	for _, c := range doc.Categories {
		if !c.Market.Valid() {
			return ledger.Portfolio{}, fmt.Errorf("%w: category %q has invalid market %q",
				apperrors.ErrInvalidBackup, c.Name, c.Market)
		}
	}

	return ledger.Portfolio{
		Settings:     doc.Settings,
		Categories:   doc.Categories,
		Transactions: doc.Transactions,
		CapitalLogs:  doc.CapitalLogs,
		LastModified: doc.LastModified,
	}, nil
}
