package csv

import (
	"errors"
	"regexp"
	"strings"
)

// YearMonthLayout is the canonical "yyyy-MM" form a job's target month
// is carried in.
const YearMonthLayout = "2006-01"

var (
	ibanPattern     = regexp.MustCompile(`^[A-Z]{2}[0-9A-Z]{13,32}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidateRow applies the domain rules to a draft against the job's
// target month. Rules run in order and the first violation wins. A
// zero amount is valid; the mapper already guarantees the amount
// parsed, so no presence check is needed here.
func ValidateRow(d *TransactionDraft, yearMonth string) error {
	if strings.TrimSpace(d.IBAN) == "" {
		return errors.New("IBAN blank")
	}
	if !ibanPattern.MatchString(d.IBAN) {
		return errors.New("IBAN invalid")
	}

	if d.Date.IsZero() {
		return errors.New("date missing")
	}
	if d.Date.Format(YearMonthLayout) != yearMonth {
		return errors.New("date not in yearMonth")
	}

	if !currencyPattern.MatchString(d.Currency) {
		return errors.New("currency invalid")
	}

	if strings.TrimSpace(d.Category) == "" {
		return errors.New("category blank")
	}

	return nil
}
