package engine

import "errors"

// Guard violations reported by Process. Each one aborts only the offending
// transaction and leaves the ledger untouched; the caller decides whether to
// log, skip, or halt.
var (
	// ErrAccountLocked is returned for every transaction addressed to a
	// client with a charged-back record, regardless of kind.
	ErrAccountLocked = errors.New("account locked")

	// ErrMissingAmountValue is returned when a deposit or withdrawal carries
	// no amount.
	ErrMissingAmountValue = errors.New("missing required amount value")

	// ErrNonPositiveAmount is returned when a deposit or withdrawal amount
	// is zero or negative.
	ErrNonPositiveAmount = errors.New("non-positive amount in transaction")

	// ErrTransactionAlreadyProcessed is returned when a deposit or
	// withdrawal reuses a transaction id already in the client's ledger.
	ErrTransactionAlreadyProcessed = errors.New("transaction already processed")

	// ErrNotEnoughFundsAvailable is returned when a withdrawal exceeds the
	// client's current available funds.
	ErrNotEnoughFundsAvailable = errors.New("not enough funds available")

	// ErrTransactionNotFound is returned when a dispute, resolve, or
	// chargeback names a transaction id absent from the client's ledger.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrTransactionAlreadyUnderDispute is returned when a dispute targets a
	// record that is not currently processed. The same error covers records
	// already under dispute and records already charged back.
	ErrTransactionAlreadyUnderDispute = errors.New("transaction already under dispute")

	// ErrTransactionNotUnderDispute is returned when a resolve or chargeback
	// targets a record that is not under dispute.
	ErrTransactionNotUnderDispute = errors.New("transaction not under dispute")

	// ErrCannotDisputeWithdrawal is returned when a dispute targets a
	// withdrawal record.
	ErrCannotDisputeWithdrawal = errors.New("transaction to be disputed was a withdrawal")
)

// RejectReason maps a Process error to a stable label for metrics and logs.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, ErrMissingAmountValue):
		return "missing_amount"
	case errors.Is(err, ErrNonPositiveAmount):
		return "non_positive_amount"
	case errors.Is(err, ErrTransactionAlreadyProcessed):
		return "duplicate_tx"
	case errors.Is(err, ErrNotEnoughFundsAvailable):
		return "insufficient_funds"
	case errors.Is(err, ErrTransactionNotFound):
		return "tx_not_found"
	case errors.Is(err, ErrTransactionAlreadyUnderDispute):
		return "already_under_dispute"
	case errors.Is(err, ErrTransactionNotUnderDispute):
		return "not_under_dispute"
	case errors.Is(err, ErrCannotDisputeWithdrawal):
		return "dispute_of_withdrawal"
	default:
		return "internal"
	}
}
