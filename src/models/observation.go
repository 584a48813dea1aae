package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------

// MObservation is one (price, timestamp) pair produced by a single
// successful fetch cycle. Immutable after creation; handed by value to
// the tracker, the hub and the ledger.
type MObservation struct {
	Price      decimal.Decimal
	ObservedAt time.Time
}

// -----------------------------------------------------------------------------

// MJournalRecord is the local copy of one observation together with the
// outcome of its ledger append.
type MJournalRecord struct {
	ObservedAt    time.Time
	Price         decimal.Decimal
	PercentChange *decimal.Decimal
	LedgerRow     int
	LedgerOK      bool
}
