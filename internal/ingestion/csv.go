// Package ingestion decodes the CSV transaction log into typed transactions
// for the engine. Malformed input is fatal to the run at this boundary; the
// engine only ever sees well-formed records.
package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"txreplay/internal/engine"
	"txreplay/internal/ledger"
)

// Reader streams transactions from a CSV source. The first row must be a
// header naming at least the type, client, and tx columns; the amount column
// is optional per row. All fields are whitespace-trimmed and the kind tag is
// matched case-insensitively.
type Reader struct {
	csv  *csv.Reader
	cols columns
	line int
}

type columns struct {
	kind   int
	client int
	tx     int
	amount int // -1 when the header has no amount column
}

func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	return &Reader{csv: cr, cols: cols, line: 1}, nil
}

func resolveColumns(header []string) (columns, error) {
	cols := columns{kind: -1, client: -1, tx: -1, amount: -1}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "type":
			cols.kind = i
		case "client":
			cols.client = i
		case "tx":
			cols.tx = i
		case "amount":
			cols.amount = i
		}
	}

	if cols.kind < 0 || cols.client < 0 || cols.tx < 0 {
		return cols, fmt.Errorf("header must name type, client, and tx columns, got %q", header)
	}
	return cols, nil
}

// Read returns the next transaction in file order, or io.EOF when the log is
// exhausted.
func (r *Reader) Read() (engine.Transaction, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return engine.Transaction{}, io.EOF
	}
	r.line++
	if err != nil {
		return engine.Transaction{}, fmt.Errorf("line %d: %w", r.line, err)
	}

	return r.parseRecord(record)
}

func (r *Reader) parseRecord(record []string) (engine.Transaction, error) {
	var tx engine.Transaction

	kind, err := ParseKind(r.field(record, r.cols.kind))
	if err != nil {
		return tx, fmt.Errorf("line %d: %w", r.line, err)
	}
	tx.Kind = kind

	client, err := strconv.ParseUint(r.field(record, r.cols.client), 10, 64)
	if err != nil {
		return tx, fmt.Errorf("line %d: parse client id: %w", r.line, err)
	}
	tx.Client = ledger.ClientID(client)

	txID, err := strconv.ParseUint(r.field(record, r.cols.tx), 10, 64)
	if err != nil {
		return tx, fmt.Errorf("line %d: parse transaction id: %w", r.line, err)
	}
	tx.Tx = ledger.TxID(txID)

	if raw := r.field(record, r.cols.amount); raw != "" {
		amt, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return tx, fmt.Errorf("line %d: parse amount: %w", r.line, err)
		}
		tx.Amount = &amt
	}

	return tx, nil
}

// field returns the trimmed value at index i, or "" when the row is shorter
// than the header (dispute-family rows often omit the amount cell entirely).
func (r *Reader) field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ParseKind maps a kind tag to its transaction kind, case-insensitively.
func ParseKind(tag string) (engine.Kind, error) {
	switch strings.ToLower(tag) {
	case "deposit":
		return engine.KindDeposit, nil
	case "withdrawal":
		return engine.KindWithdrawal, nil
	case "dispute":
		return engine.KindDispute, nil
	case "resolve":
		return engine.KindResolve, nil
	case "chargeback":
		return engine.KindChargeback, nil
	default:
		return 0, fmt.Errorf("unknown transaction type: %q", tag)
	}
}
