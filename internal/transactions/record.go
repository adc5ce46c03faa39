// Package transactions holds the persisted transaction record, its
// factory and the batch writer. Records are append-only: once written
// they are never updated or deleted.
package transactions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/marcinh992/bank-transactions-api/internal/csv"
)

// Record is one persisted transaction. ID is empty until the storage
// layer assigns one at write time.
type Record struct {
	ID          string          `json:"id"`
	ImportJobID string          `json:"importJobId"`
	IBAN        string          `json:"iban"`
	Date        time.Time       `json:"transactionDate"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	// YearMonth is the canonical month tag derived from the owning
	// job's target month, not from the row's own date.
	YearMonth string `json:"yearMonth"`
}

// NewRecord builds a persistable record from a validated draft. Pure
// transformation, no validation.
func NewRecord(draft *csv.TransactionDraft, jobID, yearMonth string) *Record {
	return &Record{
		ImportJobID: jobID,
		IBAN:        draft.IBAN,
		Date:        draft.Date,
		Currency:    draft.Currency,
		Category:    draft.Category,
		Amount:      draft.Amount,
		YearMonth:   yearMonth,
	}
}
