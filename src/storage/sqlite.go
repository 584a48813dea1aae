package storage

import (
	"database/sql"
	"fmt"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/logger"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// SQLiteJournal keeps a local copy of every observation and its ledger
// append outcome.
type SQLiteJournal struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteJournal(cfg *models.MConfig, log *logger.Logger) (*SQLiteJournal, error) {
	return &SQLiteJournal{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (j *SQLiteJournal) Initialize() error {
	dsn := j.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	j.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		j.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		j.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS observations (
			observed_at INTEGER NOT NULL,
			price REAL NOT NULL,
			percent_change TEXT,
			ledger_row INTEGER,
			ledger_ok INTEGER NOT NULL,
			PRIMARY KEY (observed_at)
		);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create observations: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (j *SQLiteJournal) RecordObservation(rec models.MJournalRecord) error {
	var change interface{}
	if rec.PercentChange != nil {
		change = rec.PercentChange.StringFixed(2)
	}

	ledgerOK := 0
	if rec.LedgerOK {
		ledgerOK = 1
	}

	_, err := j.DB.Exec(`
		INSERT OR REPLACE INTO observations
			(observed_at, price, percent_change, ledger_row, ledger_ok)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ObservedAt.Unix(), rec.Price.InexactFloat64(), change, rec.LedgerRow, ledgerOK)
	if err != nil {
		return fmt.Errorf("failed to insert observation: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (j *SQLiteJournal) Close() error {
	if j.DB != nil {
		return j.DB.Close()
	}
	return nil
}
