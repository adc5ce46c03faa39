package csv

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// MapRow parses a raw row into a typed draft. The date must be an ISO
// calendar date and the amount an arbitrary-precision signed decimal.
// Errors are row-level: the caller counts the row invalid and moves on.
func MapRow(row *RawRow) (*TransactionDraft, error) {
	date, err := time.Parse(dateLayout, row.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", row.Date, err)
	}

	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", row.Amount, err)
	}

	return &TransactionDraft{
		IBAN:     row.IBAN,
		Date:     date,
		Currency: row.Currency,
		Category: row.Category,
		Amount:   amount,
	}, nil
}
