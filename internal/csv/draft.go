// Package csv turns uploaded CSV bytes into transaction drafts: a
// streaming reader with one-time header resolution, a row mapper and a
// row validator. Reader failures are file-level; mapper and validator
// failures are row-level and recoverable by the caller.
package csv

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDraft is one parsed but not yet validated CSV row.
// It lives only in memory; valid drafts become transaction records.
type TransactionDraft struct {
	IBAN     string
	Date     time.Time
	Currency string
	Category string
	Amount   decimal.Decimal
}
