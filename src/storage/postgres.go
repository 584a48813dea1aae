package storage

import (
	"database/sql"
	"fmt"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/logger"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// PostgresJournal is the Postgres-backed observation journal.
type PostgresJournal struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresJournal(cfg *models.MConfig, log *logger.Logger) (*PostgresJournal, error) {
	return &PostgresJournal{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (j *PostgresJournal) Initialize() error {
	dsn := j.Config.Storage.DBConnectionString

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	j.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS observations (
			observed_at TIMESTAMPTZ NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			percent_change TEXT,
			ledger_row INTEGER,
			ledger_ok BOOLEAN NOT NULL,
			PRIMARY KEY (observed_at)
		);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create observations: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (j *PostgresJournal) RecordObservation(rec models.MJournalRecord) error {
	var change interface{}
	if rec.PercentChange != nil {
		change = rec.PercentChange.StringFixed(2)
	}

	_, err := j.DB.Exec(`
		INSERT INTO observations
			(observed_at, price, percent_change, ledger_row, ledger_ok)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (observed_at) DO UPDATE SET
			price = EXCLUDED.price,
			percent_change = EXCLUDED.percent_change,
			ledger_row = EXCLUDED.ledger_row,
			ledger_ok = EXCLUDED.ledger_ok`,
		rec.ObservedAt, rec.Price.InexactFloat64(), change, rec.LedgerRow, rec.LedgerOK)
	if err != nil {
		return fmt.Errorf("failed to insert observation: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (j *PostgresJournal) Close() error {
	if j.DB != nil {
		return j.DB.Close()
	}
	return nil
}
