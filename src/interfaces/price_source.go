package interfaces

import (
	"context"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// IPriceSource is the contract for the upstream remote read.
// -----------------------------------------------------------------------------

type IPriceSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchPrice performs one remote read and returns the price in
	// display units. Failures surface as SourceUnavailableError and are
	// never retried here; the next scheduled cycle tries again.
	FetchPrice(ctx context.Context) (decimal.Decimal, error)
}
