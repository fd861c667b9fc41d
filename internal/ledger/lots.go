package ledger

// Lots is an ordered sequence of purchase lots, oldest first. Lots acquired
// at the same instant keep their insertion order, which makes FIFO
// consumption deterministic.
type Lots []Lot

// TotalShares sums the live shares across all lots.
func (l Lots) TotalShares() float64 {
	var total float64
	for _, lot := range l {
		total += lot.Shares
	}
	return total
}

// CostBasis sums the base-currency cost of all live lots, each valued at
// its own historical exchange rate.
func (l Lots) CostBasis() float64 {
	var total float64
	for _, lot := range l {
		total += lot.BaseCost()
	}
	return total
}

// AverageCost returns the base-currency weighted mean cost per share over
// all live lots. A sequence with no shares has an average cost of zero.
func (l Lots) AverageCost() float64 {
	shares := l.TotalShares()
	if shares == 0 {
		return 0
	}
	return l.CostBasis() / shares
}

// Consume removes shares from the sequence front-to-back (FIFO) and returns
// the remaining sequence together with the base-currency cost of the
// consumed shares. A fully consumed lot is dropped; a partially consumed
// lot keeps its original cost per share and exchange rate with reduced
// shares. The receiver is never modified.
//
// Callers must ensure shares does not exceed TotalShares.
func (l Lots) Consume(shares float64) (Lots, float64) {
	remaining := make(Lots, 0, len(l))
	var cost float64

	for _, lot := range l {
		if shares <= 0 {
			remaining = append(remaining, lot)
			continue
		}

		if lot.Shares > shares {
			// Partial consumption of this lot.
			cost += shares * lot.CostPerShare * lot.ExchangeRate
			reduced := lot
			reduced.Shares = lot.Shares - shares
			remaining = append(remaining, reduced)
			shares = 0
		} else {
			// Full consumption of this lot.
			cost += lot.BaseCost()
			shares -= lot.Shares
		}
	}

	return remaining, cost
}

// clone returns a deep copy of the sequence.
func (l Lots) clone() Lots {
	if l == nil {
		return nil
	}
	out := make(Lots, len(l))
	copy(out, l)
	return out
}
