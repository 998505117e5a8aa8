package ledger

// ClientID identifies a client account. Opaque key, no validation.
type ClientID uint64

// TxID identifies a transaction. Unique only within a single client's
// ledger; two clients may reuse the same id without conflict.
type TxID uint64

// Status describes the current state of an accepted transaction.
type Status uint8

const (
	// StatusProcessed means the transaction applied cleanly; its funds count
	// toward available.
	StatusProcessed Status = iota
	// StatusUnderDispute means the funds are frozen in held pending a
	// resolve or chargeback.
	StatusUnderDispute
	// StatusChargedBack is terminal: the funds are excluded from both
	// available and held, and the client account is frozen.
	StatusChargedBack
)

func (s Status) String() string {
	switch s {
	case StatusProcessed:
		return "processed"
	case StatusUnderDispute:
		return "under_dispute"
	case StatusChargedBack:
		return "charged_back"
	default:
		return "unknown"
	}
}

// Record is an accepted transaction in a client's history. Deposits are
// stored with positive units and withdrawals with negative units, so
// available funds is a plain sum over processed records.
type Record struct {
	Units  int64
	Status Status
}
