package interfaces

import "github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"

// -----------------------------------------------------------------------------
// IJournal defines the contract for the local observation store.
// -----------------------------------------------------------------------------

type IJournal interface {

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// RecordObservation stores one observation and its ledger outcome.
	RecordObservation(rec models.MJournalRecord) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
