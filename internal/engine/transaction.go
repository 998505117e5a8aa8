package engine

import "txreplay/internal/ledger"

// Kind enumerates the transaction instructions the engine accepts.
type Kind uint8

const (
	KindDeposit Kind = iota
	KindWithdrawal
	KindDispute
	KindResolve
	KindChargeback
)

func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	case KindDispute:
		return "dispute"
	case KindResolve:
		return "resolve"
	case KindChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// Transaction is a single input record. Amount is required for deposits and
// withdrawals; dispute, resolve, and chargeback reference a prior
// transaction by id and carry no amount.
type Transaction struct {
	Kind   Kind
	Client ledger.ClientID
	Tx     ledger.TxID
	Amount *float64
}
