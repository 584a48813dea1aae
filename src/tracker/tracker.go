package tracker

import "github.com/shopspring/decimal"

// -----------------------------------------------------------------------------

var hundred = decimal.NewFromInt(100)

// ChangeTracker holds the single most recently observed price and
// computes the percentage delta of each new observation against it.
// It is mutated only from within the fetch cycle (one cycle runs at a
// time), so it carries no lock.
type ChangeTracker struct {
	lastPrice decimal.Decimal
	hasLast   bool
}

// -----------------------------------------------------------------------------

func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{}
}

// -----------------------------------------------------------------------------

// Update stores price as the new last price and returns the percent
// change against the previous one, rounded to 2 decimal places. ok is
// false on the very first observation, when no prior price exists.
// The store happens unconditionally, whether or not the caller uses
// the returned change.
func (t *ChangeTracker) Update(price decimal.Decimal) (change decimal.Decimal, ok bool) {
	if t.hasLast {
		change = price.Sub(t.lastPrice).Div(t.lastPrice).Mul(hundred).Round(2)
		ok = true
	}

	t.lastPrice = price
	t.hasLast = true
	return change, ok
}

// -----------------------------------------------------------------------------

// LastPrice returns the stored last price, if any.
func (t *ChangeTracker) LastPrice() (decimal.Decimal, bool) {
	return t.lastPrice, t.hasLast
}
