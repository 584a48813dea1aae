package interfaces

import (
	"context"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// ILedger is the contract for the append-only external row store.
// -----------------------------------------------------------------------------

type ILedger interface {

	// AppendObservation writes the observation into the next free row:
	// timestamp and price always, the formatted percent change only when
	// hasChange is set. Returns the row that was targeted. The write is
	// not atomic; a partial row is possible and is not rolled back.
	AppendObservation(ctx context.Context, obs models.MObservation, change decimal.Decimal, hasChange bool) (int, error)
}
