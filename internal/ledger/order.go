package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/twinvest/portfolio-ledger-backend/internal/apperrors"
)

// Execute applies a single order against a category and returns the updated
// category snapshot together with the transaction record for the audit log.
//
// The input category is never modified. On any error the caller keeps its
// current snapshot and no partial state escapes.
//
// Errors:
//   - apperrors.ErrInvalidShares when order.Shares <= 0
//   - apperrors.ErrInsufficientShares when a sell requests more shares than held
//   - apperrors.ErrAssetNotFound when a sell or dividend targets an unknown position
//   - apperrors.ErrInvalidAction for an unknown action
func Execute(category Category, order Order) (Category, Transaction, error) {
	if order.Shares <= 0 {
		return Category{}, Transaction{}, apperrors.ErrInvalidShares
	}

	ts := order.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	updated := cloneCategory(category)

	txn := Transaction{
		ID:           uuid.New().String(),
		Timestamp:    ts,
		Symbol:       order.Symbol,
		Action:       order.Action,
		Shares:       order.Shares,
		Price:        order.Price,
		ExchangeRate: order.ExchangeRate,
		GrossAmount:  order.TotalAmount,
		Fee:          order.Fee,
		Tax:          order.Tax,
		CategoryName: category.Name,
	}

	switch order.Action {
	case ActionBuy:
		asset, lotID := applyBuy(&updated, order, ts)
		txn.AssetID = asset
		txn.LotID = lotID

	case ActionSell:
		assetID, realized, err := applySell(&updated, order)
		if err != nil {
			return Category{}, Transaction{}, err
		}
		txn.AssetID = assetID
		txn.RealizedPnL = realized

	case ActionDividend:
		idx := findAsset(updated.Assets, order.AssetID, order.Symbol)
		if idx < 0 {
			return Category{}, Transaction{}, apperrors.ErrAssetNotFound
		}
		txn.AssetID = updated.Assets[idx].ID
		txn.RealizedPnL = order.TotalAmount - order.Fee - order.Tax

	default:
		return Category{}, Transaction{}, apperrors.ErrInvalidAction
	}

	return updated, txn, nil
}

// applyBuy appends a new lot to the target position, creating the position
// on the first buy of a symbol. The order price becomes the position's last
// observed quote. Returns the asset ID and the ID of the created lot.
func applyBuy(category *Category, order Order, ts time.Time) (string, string) {
	idx := findAsset(category.Assets, order.AssetID, order.Symbol)
	if idx < 0 {
		category.Assets = append(category.Assets, AssetPosition{
			ID:     uuid.New().String(),
			Symbol: order.Symbol,
			Name:   order.Name,
		})
		idx = len(category.Assets) - 1
	}
	asset := &category.Assets[idx]

	lot := Lot{
		ID:           uuid.New().String(),
		Date:         ts,
		Shares:       order.Shares,
		CostPerShare: order.Price,
		ExchangeRate: order.ExchangeRate,
	}

	asset.Lots = append(asset.Lots, lot)
	asset.Shares = asset.Lots.TotalShares()
	asset.AvgCost = asset.Lots.AverageCost()
	asset.CurrentPrice = order.Price

	return asset.ID, lot.ID
}

// applySell consumes shares FIFO from the target position and computes the
// realized profit or loss: base-currency proceeds minus the FIFO-matched
// cost of the sold shares (each lot at its own historical exchange rate)
// minus fee and tax. A position exhausted to zero shares is dropped from
// the category entirely.
func applySell(category *Category, order Order) (string, float64, error) {
	idx := findAsset(category.Assets, order.AssetID, order.Symbol)
	if idx < 0 {
		return "", 0, apperrors.ErrAssetNotFound
	}
	asset := &category.Assets[idx]

	if order.Shares > asset.Lots.TotalShares() {
		return "", 0, apperrors.ErrInsufficientShares
	}

	remaining, costOfSold := asset.Lots.Consume(order.Shares)
	realized := order.TotalAmount - costOfSold - order.Fee - order.Tax
	assetID := asset.ID

	if remaining.TotalShares() == 0 {
		category.Assets = append(category.Assets[:idx], category.Assets[idx+1:]...)
		return assetID, realized, nil
	}

	asset.Lots = remaining
	asset.Shares = remaining.TotalShares()
	asset.AvgCost = remaining.AverageCost()
	asset.CurrentPrice = order.Price

	return assetID, realized, nil
}

// findAsset locates a position by asset ID when given, otherwise by symbol.
func findAsset(assets []AssetPosition, assetID, symbol string) int {
	for i, a := range assets {
		if assetID != "" {
			if a.ID == assetID {
				return i
			}
			continue
		}
		if a.Symbol == symbol {
			return i
		}
	}
	return -1
}

// cloneCategory deep-copies a category so updates never leak into the
// caller's snapshot.
func cloneCategory(c Category) Category {
	out := c
	out.Assets = make([]AssetPosition, len(c.Assets))
	for i, a := range c.Assets {
		out.Assets[i] = a
		out.Assets[i].Lots = a.Lots.clone()
	}
	return out
}
