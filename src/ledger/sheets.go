package ledger

import (
	"context"
	"fmt"
	"os"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/helpers"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/logger"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

// The feed writes into one fixed spreadsheet tab. These identify the
// deployment, not configuration.
const (
	spreadsheetID = "1KXb7Gy_5FBa4OrKd4q8PVR8gPj4YHOPqOVLkt7raZQg"
	tabName       = "ETH Price Feed"

	timestampLayout = "1/2/2006 3:04:05 PM"
)

// -----------------------------------------------------------------------------
// Values seam
// -----------------------------------------------------------------------------

// valuesAPI is the slice of the Sheets values surface the ledger needs.
type valuesAPI interface {
	// GetColumn returns the populated cells of a column range like "A:A".
	GetColumn(ctx context.Context, column string) ([][]interface{}, error)

	// UpdateCell writes a single value into a cell range like "B7:B7".
	UpdateCell(ctx context.Context, cellRange string, value interface{}) error
}

// -----------------------------------------------------------------------------
// SheetsLedger
// -----------------------------------------------------------------------------

// SheetsLedger appends observations to the spreadsheet tab. The store
// offers no append primitive: every write targets
// row = count of populated cells in column A, plus one. That
// read-then-write allocation assumes this process is the only writer
// against the tab while it runs; the assumption is documented, not
// enforced.
type SheetsLedger struct {
	Logger *logger.Logger
	api    valuesAPI
}

// -----------------------------------------------------------------------------

// NewSheetsLedger builds a ledger authenticated with the
// service-account credentials file.
func NewSheetsLedger(ctx context.Context, credentialsFile string) (*SheetsLedger, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, helpers.NewConfigurationError("read credentials file", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, helpers.NewConfigurationError("parse credentials", err)
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, helpers.NewConfigurationError("build sheets client", err)
	}

	return newSheetsLedger(&sheetsValues{svc: svc}), nil
}

// -----------------------------------------------------------------------------

func newSheetsLedger(api valuesAPI) *SheetsLedger {
	return &SheetsLedger{
		Logger: logger.NewLogger("SheetsLedger"),
		api:    api,
	}
}

// -----------------------------------------------------------------------------

// AppendObservation writes the observation into the next free row:
// timestamp into column A, price into column B and, when hasChange is
// set, the formatted change into column C. The writes are independent
// remote calls; a failure part-way leaves a partial row, which is
// accepted and never rolled back.
func (l *SheetsLedger) AppendObservation(ctx context.Context, obs models.MObservation, change decimal.Decimal, hasChange bool) (int, error) {
	// Row allocation happens once per cycle so every cell of this
	// observation lands on the same row.
	row, err := l.NextRow(ctx)
	if err != nil {
		return 0, helpers.NewLedgerWriteError("row allocation failed", err)
	}

	stamp := obs.ObservedAt.Format(timestampLayout)
	if err := l.api.UpdateCell(ctx, cell("A", row), stamp); err != nil {
		return row, helpers.NewLedgerWriteError("timestamp write failed", err)
	}

	price, _ := obs.Price.Float64()
	if err := l.api.UpdateCell(ctx, cell("B", row), price); err != nil {
		return row, helpers.NewLedgerWriteError("price write failed", err)
	}

	if hasChange {
		formatted := change.StringFixed(2) + "%"
		if err := l.api.UpdateCell(ctx, cell("C", row), formatted); err != nil {
			return row, helpers.NewLedgerWriteError("change write failed", err)
		}
		l.Logger.Info("Percentage Change: %s", formatted)
	}

	return row, nil
}

// -----------------------------------------------------------------------------

// NextRow computes the next free row of the tab by counting the
// populated cells of column A. Two back-to-back calls with no
// intervening write return the same index.
func (l *SheetsLedger) NextRow(ctx context.Context) (int, error) {
	rows, err := l.api.GetColumn(ctx, "A:A")
	if err != nil {
		return 0, err
	}
	return len(rows) + 1, nil
}

// -----------------------------------------------------------------------------

func cell(column string, row int) string {
	return fmt.Sprintf("%s%d:%s%d", column, row, column, row)
}

// -----------------------------------------------------------------------------
// Sheets client adapter
// -----------------------------------------------------------------------------

type sheetsValues struct {
	svc *sheets.Service
}

func (s *sheetsValues) GetColumn(ctx context.Context, column string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.
		Get(spreadsheetID, fmt.Sprintf("%s!%s", tabName, column)).
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *sheetsValues) UpdateCell(ctx context.Context, cellRange string, value interface{}) error {
	body := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := s.svc.Spreadsheets.Values.
		Update(spreadsheetID, fmt.Sprintf("%s!%s", tabName, cellRange), body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	return err
}
