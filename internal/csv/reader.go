package csv

import (
	"bytes"
	encsv "encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/marcinh992/bank-transactions-api/internal/apperr"
)

// Logical columns every import file must provide. Lookup tolerates
// case variation: the exact spelling is tried first, then lower-case,
// then upper-case.
var requiredColumns = []string{"IBAN", "date", "currency", "category", "amount"}

// RawRow is one data row with the five required fields extracted and
// trimmed, still as text.
type RawRow struct {
	IBAN     string
	Date     string
	Currency string
	Category string
	Amount   string
}

// TransactionReader opens uploaded CSV bytes for row streaming.
type TransactionReader struct{}

// NewTransactionReader creates a TransactionReader.
func NewTransactionReader() *TransactionReader {
	return &TransactionReader{}
}

// Open validates the byte content and resolves the header into a fixed
// column-index mapping. The header row is consumed here and never
// emitted as data. A fully empty file yields a reader that produces
// zero rows; absent or undecodable content and a header missing a
// required column fail with a file-level error.
func (tr *TransactionReader) Open(fileBytes []byte) (*RowReader, error) {
	if fileBytes == nil {
		return nil, apperr.FileInvalid("file content is empty")
	}
	if !utf8.Valid(fileBytes) {
		return nil, apperr.FileInvalid("file is not valid UTF-8 text")
	}

	r := encsv.NewReader(bytes.NewReader(fileBytes))

	header, err := r.Read()
	if err == io.EOF {
		return &RowReader{exhausted: true}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFileInvalid, "cannot read CSV header", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	columns := make(map[string]int, len(requiredColumns))
	for _, name := range requiredColumns {
		idx, ok := resolveColumn(index, name)
		if !ok {
			return nil, apperr.FileInvalid("missing column: %s", name)
		}
		columns[name] = idx
	}

	return &RowReader{reader: r, columns: columns}, nil
}

// resolveColumn tries the accepted spellings of a logical column in
// order against the parsed header.
func resolveColumn(index map[string]int, name string) (int, bool) {
	for _, candidate := range []string{name, strings.ToLower(name), strings.ToUpper(name)} {
		if i, ok := index[candidate]; ok {
			return i, true
		}
	}
	return 0, false
}

// RowReader streams data rows in file order.
type RowReader struct {
	reader    *encsv.Reader
	columns   map[string]int
	exhausted bool
}

// Next returns the next data row, io.EOF at the end of the stream, or
// a file-level error for structurally malformed content (unterminated
// quoting, inconsistent field counts).
func (rr *RowReader) Next() (*RawRow, error) {
	if rr.exhausted {
		return nil, io.EOF
	}

	record, err := rr.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFileInvalid, "malformed CSV row", err)
	}

	return &RawRow{
		IBAN:     strings.TrimSpace(record[rr.columns["IBAN"]]),
		Date:     strings.TrimSpace(record[rr.columns["date"]]),
		Currency: strings.TrimSpace(record[rr.columns["currency"]]),
		Category: strings.TrimSpace(record[rr.columns["category"]]),
		Amount:   strings.TrimSpace(record[rr.columns["amount"]]),
	}, nil
}
