// Package engine implements the per-client transaction state machine: an
// in-memory replay of an ordered transaction log producing final account
// snapshots.
package engine

import (
	"fmt"
	"sort"

	"txreplay/internal/amount"
	"txreplay/internal/ledger"
	"txreplay/internal/observability"
)

// Engine replays transactions against per-client ledgers. It is not safe for
// concurrent use; callers that want parallelism shard clients across engines
// (see ShardedEngine). No state survives across Engine instances.
type Engine struct {
	accounts map[ledger.ClientID]*ledger.Account
	metrics  *observability.Metrics
}

// New creates an empty engine. metrics may be nil.
func New(metrics *observability.Metrics) *Engine {
	return &Engine{
		accounts: make(map[ledger.ClientID]*ledger.Account),
		metrics:  metrics,
	}
}

// Process applies one transaction in input order. A guard violation aborts
// the call before any mutation; a charged-back client rejects every
// transaction outright.
func (e *Engine) Process(tx Transaction) error {
	acct, ok := e.accounts[tx.Client]
	if !ok {
		acct = ledger.NewAccount()
		e.accounts[tx.Client] = acct
	}

	if acct.Locked() {
		return e.reject(tx, ErrAccountLocked)
	}

	var err error
	switch tx.Kind {
	case KindDeposit:
		err = e.applyDeposit(acct, tx)
	case KindWithdrawal:
		err = e.applyWithdrawal(acct, tx)
	case KindDispute:
		err = e.applyDispute(acct, tx)
	case KindResolve:
		err = e.applyResolve(acct, tx)
	case KindChargeback:
		err = e.applyChargeback(acct, tx)
	default:
		err = fmt.Errorf("unknown transaction kind: %d", tx.Kind)
	}

	if err != nil {
		return e.reject(tx, err)
	}

	if e.metrics != nil {
		e.metrics.TransactionsApplied.WithLabelValues(tx.Kind.String()).Inc()
	}
	return nil
}

func (e *Engine) reject(tx Transaction, err error) error {
	if e.metrics != nil {
		e.metrics.TransactionsRejected.WithLabelValues(tx.Kind.String(), RejectReason(err)).Inc()
	}
	return err
}

func (e *Engine) applyDeposit(acct *ledger.Account, tx Transaction) error {
	if tx.Amount == nil {
		return ErrMissingAmountValue
	}
	if *tx.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if acct.Has(tx.Tx) {
		return ErrTransactionAlreadyProcessed
	}

	acct.Put(tx.Tx, ledger.Record{
		Units:  amount.ToUnits(*tx.Amount),
		Status: ledger.StatusProcessed,
	})
	return nil
}

func (e *Engine) applyWithdrawal(acct *ledger.Account, tx Transaction) error {
	if tx.Amount == nil {
		return ErrMissingAmountValue
	}
	if *tx.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	// Available is derived at call time, so funds moved to held by an earlier
	// dispute are already excluded here.
	if amount.ToUnits(*tx.Amount) > acct.AvailableUnits() {
		return ErrNotEnoughFundsAvailable
	}
	if acct.Has(tx.Tx) {
		return ErrTransactionAlreadyProcessed
	}

	acct.Put(tx.Tx, ledger.Record{
		Units:  -amount.ToUnits(*tx.Amount),
		Status: ledger.StatusProcessed,
	})
	return nil
}

func (e *Engine) applyDispute(acct *ledger.Account, tx Transaction) error {
	rec, ok := acct.Get(tx.Tx)
	if !ok {
		return ErrTransactionNotFound
	}
	if rec.Status != ledger.StatusProcessed {
		return ErrTransactionAlreadyUnderDispute
	}
	if rec.Units <= 0 {
		return ErrCannotDisputeWithdrawal
	}

	acct.SetStatus(tx.Tx, ledger.StatusUnderDispute)
	return nil
}

func (e *Engine) applyResolve(acct *ledger.Account, tx Transaction) error {
	rec, ok := acct.Get(tx.Tx)
	if !ok {
		return ErrTransactionNotFound
	}
	if rec.Status != ledger.StatusUnderDispute {
		return ErrTransactionNotUnderDispute
	}

	acct.SetStatus(tx.Tx, ledger.StatusProcessed)
	return nil
}

func (e *Engine) applyChargeback(acct *ledger.Account, tx Transaction) error {
	rec, ok := acct.Get(tx.Tx)
	if !ok {
		return ErrTransactionNotFound
	}
	if rec.Status != ledger.StatusUnderDispute {
		return ErrTransactionNotUnderDispute
	}

	// The locked flag is derived from this status, so the client is frozen
	// from the next Process call onward.
	acct.SetStatus(tx.Tx, ledger.StatusChargedBack)
	return nil
}

// Summary derives a snapshot for every known client, ordered by ascending
// client id for reproducible output.
func (e *Engine) Summary() []ledger.Snapshot {
	snaps := make([]ledger.Snapshot, 0, len(e.accounts))
	for id, acct := range e.accounts {
		snaps = append(snaps, acct.Snapshot(id))
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Client < snaps[j].Client
	})

	if e.metrics != nil {
		e.metrics.ClientsTracked.Set(float64(len(e.accounts)))
	}
	return snaps
}
