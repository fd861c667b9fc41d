package ledger

import (
	"math"
	"time"

	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
)

// pnlTolerance bounds the float drift allowed when a replayed sell is
// compared against its recorded realized profit or loss.
const pnlTolerance = 1e-6

// Revoke deletes a transaction and reverses its ledger effect exactly.
//
// Reversal works by replaying the asset's remaining transaction history
// through the same FIFO machinery that produced it. The replay fails, and
// the revocation is refused with apperrors.ErrIrreversibleTransaction, when
// a later sell depended on the revoked transaction: either the remaining
// lots no longer cover the sell, or the sell's FIFO-matched cost would
// change and falsify its immutable realized figure.
//
// Revoking a sell always succeeds: removing a sale only returns shares to
// the lots it consumed, and no later record's cost basis can shrink.
func Revoke(p Portfolio, transactionID string) (Portfolio, error) {
	txnIdx := -1
	for i, t := range p.Transactions {
		if t.ID == transactionID {
			txnIdx = i
			break
		}
	}
	if txnIdx < 0 {
		return Portfolio{}, apperrors.ErrTransactionNotFound
	}
	revoked := p.Transactions[txnIdx]

	catIdx := -1
	for i, c := range p.Categories {
		if c.Name == revoked.CategoryName {
			catIdx = i
			break
		}
	}
	if catIdx < 0 {
		return Portfolio{}, apperrors.ErrCategoryNotFound
	}

	// Gather the asset's surviving history in log order.
	history := make([]Transaction, 0)
	for i, t := range p.Transactions {
		if i != txnIdx && t.AssetID == revoked.AssetID {
			history = append(history, t)
		}
	}

	replayed, err := replayAsset(history)
	if err != nil {
		return Portfolio{}, err
	}

	out := p
	out.Categories = make([]Category, len(p.Categories))
	for i, c := range p.Categories {
		out.Categories[i] = cloneCategory(c)
	}
	out.Transactions = make([]Transaction, 0, len(p.Transactions)-1)
	out.Transactions = append(out.Transactions, p.Transactions[:txnIdx]...)
	out.Transactions = append(out.Transactions, p.Transactions[txnIdx+1:]...)
	out.LastModified = time.Now().UTC()

	cat := &out.Categories[catIdx]
	assetIdx := findAsset(cat.Assets, revoked.AssetID, revoked.Symbol)

	if replayed.Shares == 0 {
		if assetIdx >= 0 {
			cat.Assets = append(cat.Assets[:assetIdx], cat.Assets[assetIdx+1:]...)
		}
		return out, nil
	}

	if assetIdx >= 0 {
		// Keep identity and the last observed quote of the live position.
		replayed.ID = cat.Assets[assetIdx].ID
		replayed.Name = cat.Assets[assetIdx].Name
		replayed.CurrentPrice = cat.Assets[assetIdx].CurrentPrice
		cat.Assets[assetIdx] = replayed
	} else {
		// Revoking the sell that had exhausted the position re-creates it.
		replayed.ID = revoked.AssetID
		replayed.CurrentPrice = revoked.Price
		cat.Assets = append(cat.Assets, replayed)
	}

	return out, nil
}

// replayAsset rebuilds a position from its transaction history. Lot IDs and
// acquisition dates are taken from the recorded buys, so a successful
// replay reproduces the exact lot sequence the forward path would have
// produced without the revoked record.
func replayAsset(history []Transaction) (AssetPosition, error) {
	var asset AssetPosition

	for _, t := range history {
		asset.Symbol = t.Symbol

		switch t.Action {
		case ActionBuy:
			asset.Lots = append(asset.Lots, Lot{
				ID:           t.LotID,
				Date:         t.Timestamp,
				Shares:       t.Shares,
				CostPerShare: t.Price,
				ExchangeRate: t.ExchangeRate,
			})

		case ActionSell:
			if t.Shares > asset.Lots.TotalShares() {
				return AssetPosition{}, apperrors.ErrIrreversibleTransaction
			}
			remaining, costOfSold := asset.Lots.Consume(t.Shares)
			realized := t.GrossAmount - costOfSold - t.Fee - t.Tax
			if math.Abs(realized-t.RealizedPnL) > pnlTolerance {
				return AssetPosition{}, apperrors.ErrIrreversibleTransaction
			}
			asset.Lots = remaining

		case ActionDividend:
			// No lot effect.
		}
	}

	asset.Shares = asset.Lots.TotalShares()
	asset.AvgCost = asset.Lots.AverageCost()
	return asset, nil
}
