package engine_test

import (
	"errors"
	"testing"

	"txreplay/internal/engine"
	"txreplay/internal/ledger"
)

// --- helpers ---

func deposit(client ledger.ClientID, tx ledger.TxID, amt float64) engine.Transaction {
	return engine.Transaction{Kind: engine.KindDeposit, Client: client, Tx: tx, Amount: &amt}
}

func withdrawal(client ledger.ClientID, tx ledger.TxID, amt float64) engine.Transaction {
	return engine.Transaction{Kind: engine.KindWithdrawal, Client: client, Tx: tx, Amount: &amt}
}

func dispute(client ledger.ClientID, tx ledger.TxID) engine.Transaction {
	return engine.Transaction{Kind: engine.KindDispute, Client: client, Tx: tx}
}

func resolve(client ledger.ClientID, tx ledger.TxID) engine.Transaction {
	return engine.Transaction{Kind: engine.KindResolve, Client: client, Tx: tx}
}

func chargeback(client ledger.ClientID, tx ledger.TxID) engine.Transaction {
	return engine.Transaction{Kind: engine.KindChargeback, Client: client, Tx: tx}
}

func mustProcess(t *testing.T, eng *engine.Engine, txs ...engine.Transaction) {
	t.Helper()
	for _, tx := range txs {
		if err := eng.Process(tx); err != nil {
			t.Fatalf("process %s client=%d tx=%d: %v", tx.Kind, tx.Client, tx.Tx, err)
		}
	}
}

func wantReject(t *testing.T, eng *engine.Engine, tx engine.Transaction, want error) {
	t.Helper()
	err := eng.Process(tx)
	if err == nil {
		t.Fatalf("process %s client=%d tx=%d: expected %v, got nil", tx.Kind, tx.Client, tx.Tx, want)
	}
	if !errors.Is(err, want) {
		t.Fatalf("process %s client=%d tx=%d: got %v, want %v", tx.Kind, tx.Client, tx.Tx, err, want)
	}
}

func checkSnapshot(t *testing.T, eng *engine.Engine, client ledger.ClientID, available, held int64, locked bool) {
	t.Helper()
	for _, snap := range eng.Summary() {
		if snap.Client != client {
			continue
		}
		if snap.AvailableUnits != available {
			t.Errorf("client %d available: got %d, want %d", client, snap.AvailableUnits, available)
		}
		if snap.HeldUnits != held {
			t.Errorf("client %d held: got %d, want %d", client, snap.HeldUnits, held)
		}
		if want := available + held; snap.TotalUnits != want {
			t.Errorf("client %d total: got %d, want %d", client, snap.TotalUnits, want)
		}
		if snap.Locked != locked {
			t.Errorf("client %d locked: got %v, want %v", client, snap.Locked, locked)
		}
		return
	}
	t.Fatalf("client %d not in summary", client)
}

// --- summary ---

func TestSummary_EmptyEngine(t *testing.T) {
	eng := engine.New(nil)
	if snaps := eng.Summary(); len(snaps) != 0 {
		t.Errorf("expected empty summary, got %d snapshots", len(snaps))
	}
}

func TestSummary_OrderedByClientID(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(9, 1, 1.0),
		deposit(3, 2, 1.0),
		deposit(6, 3, 1.0),
	)

	snaps := eng.Summary()
	if len(snaps) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snaps))
	}
	for i, want := range []ledger.ClientID{3, 6, 9} {
		if snaps[i].Client != want {
			t.Errorf("snapshot %d: got client %d, want %d", i, snaps[i].Client, want)
		}
	}
}

func TestSummary_ClientCreatedEvenWhenFirstTransactionFails(t *testing.T) {
	eng := engine.New(nil)
	wantReject(t, eng, dispute(1, 2), engine.ErrTransactionNotFound)

	checkSnapshot(t, eng, 1, 0, 0, false)
}

// --- deposit ---

func TestDeposit_IncreasesAvailableAndTotal(t *testing.T) {
	eng := engine.New(nil)

	mustProcess(t, eng, deposit(1, 1, 10.0))
	checkSnapshot(t, eng, 1, 100_000, 0, false)

	mustProcess(t, eng, deposit(1, 2, 123.123))
	checkSnapshot(t, eng, 1, 1_331_230, 0, false)
}

func TestDeposit_NonPositiveAmountFails(t *testing.T) {
	eng := engine.New(nil)

	wantReject(t, eng, deposit(1, 1, -10.0), engine.ErrNonPositiveAmount)
	wantReject(t, eng, deposit(1, 2, 0), engine.ErrNonPositiveAmount)
	checkSnapshot(t, eng, 1, 0, 0, false)
}

func TestDeposit_MissingAmountFails(t *testing.T) {
	eng := engine.New(nil)

	tx := engine.Transaction{Kind: engine.KindDeposit, Client: 1, Tx: 1}
	wantReject(t, eng, tx, engine.ErrMissingAmountValue)
	checkSnapshot(t, eng, 1, 0, 0, false)
}

func TestDeposit_DuplicateTransactionIDFails(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng, deposit(1, 1, 10.0))

	wantReject(t, eng, deposit(1, 1, 10.0), engine.ErrTransactionAlreadyProcessed)
	checkSnapshot(t, eng, 1, 100_000, 0, false)
}

func TestDeposit_TransactionIDsScopedPerClient(t *testing.T) {
	// Two clients may reuse the same transaction id without conflict.
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 10.0),
		deposit(2, 1, 20.0),
	)

	checkSnapshot(t, eng, 1, 100_000, 0, false)
	checkSnapshot(t, eng, 2, 200_000, 0, false)
}

// --- withdrawal ---

func TestWithdrawal_DecreasesAvailableAndTotal(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng, deposit(1, 1, 100.0))

	mustProcess(t, eng, withdrawal(1, 2, 25.0))
	checkSnapshot(t, eng, 1, 750_000, 0, false)

	mustProcess(t, eng, withdrawal(1, 3, 75.0))
	checkSnapshot(t, eng, 1, 0, 0, false)
}

func TestWithdrawal_InsufficientFundsFails(t *testing.T) {
	eng := engine.New(nil)

	wantReject(t, eng, withdrawal(1, 2, 25.0), engine.ErrNotEnoughFundsAvailable)
	checkSnapshot(t, eng, 1, 0, 0, false)

	mustProcess(t, eng, deposit(1, 2, 20.0))
	wantReject(t, eng, withdrawal(1, 3, 20.0001), engine.ErrNotEnoughFundsAvailable)
	checkSnapshot(t, eng, 1, 200_000, 0, false)
}

func TestWithdrawal_NonPositiveAmountFails(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng, deposit(1, 1, 100.0))

	wantReject(t, eng, withdrawal(1, 1, -10.0), engine.ErrNonPositiveAmount)
	checkSnapshot(t, eng, 1, 1_000_000, 0, false)
}

func TestWithdrawal_MissingAmountFails(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng, deposit(1, 1, 100.0))

	tx := engine.Transaction{Kind: engine.KindWithdrawal, Client: 1, Tx: 1}
	wantReject(t, eng, tx, engine.ErrMissingAmountValue)
	checkSnapshot(t, eng, 1, 1_000_000, 0, false)
}

func TestWithdrawal_DuplicateTransactionIDFails(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 10.0),
		withdrawal(1, 2, 5.0),
	)

	wantReject(t, eng, withdrawal(1, 2, 5.0), engine.ErrTransactionAlreadyProcessed)
	checkSnapshot(t, eng, 1, 50_000, 0, false)
}

func TestWithdrawal_CannotDrawAgainstHeldFunds(t *testing.T) {
	// A dispute moves funds to held; withdrawals see the reduced available.
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 100.0),
		deposit(1, 2, 50.0),
		dispute(1, 1),
	)

	wantReject(t, eng, withdrawal(1, 3, 60.0), engine.ErrNotEnoughFundsAvailable)
	mustProcess(t, eng, withdrawal(1, 4, 50.0))
	checkSnapshot(t, eng, 1, 0, 1_000_000, false)
}

// --- dispute ---

func TestDispute_MovesFundsFromAvailableToHeld(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 100.0),
		deposit(1, 2, 30.0),
		dispute(1, 2),
	)

	checkSnapshot(t, eng, 1, 1_000_000, 300_000, false)
}

func TestDispute_UnknownTransactionFails(t *testing.T) {
	eng := engine.New(nil)

	wantReject(t, eng, dispute(1, 2), engine.ErrTransactionNotFound)
	checkSnapshot(t, eng, 1, 0, 0, false)
}

func TestDispute_WithdrawalFails(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 100.0),
		withdrawal(1, 2, 20.0),
	)

	wantReject(t, eng, dispute(1, 2), engine.ErrCannotDisputeWithdrawal)
	checkSnapshot(t, eng, 1, 800_000, 0, false)
}

func TestDispute_AlreadyDisputedFails(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 100.0),
		dispute(1, 1),
	)

	wantReject(t, eng, dispute(1, 1), engine.ErrTransactionAlreadyUnderDispute)
	checkSnapshot(t, eng, 1, 0, 1_000_000, false)
}

// --- resolve ---

func TestResolve_RevertsTheDispute(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 100.0),
		deposit(1, 2, 30.0),
		dispute(1, 1),
		dispute(1, 2),
		resolve(1, 2),
	)

	checkSnapshot(t, eng, 1, 300_000, 1_000_000, false)
}

func TestResolve_UnknownTransactionFails(t *testing.T) {
	eng := engine.New(nil)

	wantReject(t, eng, resolve(1, 2), engine.ErrTransactionNotFound)
	checkSnapshot(t, eng, 1, 0, 0, false)
}

func TestResolve_NotUnderDisputeFails(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng, deposit(1, 1, 100.0))

	wantReject(t, eng, resolve(1, 1), engine.ErrTransactionNotUnderDispute)
	checkSnapshot(t, eng, 1, 1_000_000, 0, false)
}

func TestResolve_ThenDisputeAgainSucceeds(t *testing.T) {
	// Resolve returns the record to processed, so it can be disputed again.
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 100.0),
		dispute(1, 1),
		resolve(1, 1),
		dispute(1, 1),
	)

	checkSnapshot(t, eng, 1, 0, 1_000_000, false)
}

// --- chargeback ---

func TestChargeback_RemovesFundsAndLocks(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 100.0),
		deposit(1, 2, 30.0),
		dispute(1, 1),
		dispute(1, 2),
		chargeback(1, 2),
	)

	checkSnapshot(t, eng, 1, 0, 1_000_000, true)
}

func TestChargeback_UnknownTransactionFails(t *testing.T) {
	eng := engine.New(nil)

	wantReject(t, eng, chargeback(1, 2), engine.ErrTransactionNotFound)
	checkSnapshot(t, eng, 1, 0, 0, false)
}

func TestChargeback_NotUnderDisputeFails(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng, deposit(1, 1, 100.0))

	wantReject(t, eng, chargeback(1, 1), engine.ErrTransactionNotUnderDispute)
	checkSnapshot(t, eng, 1, 1_000_000, 0, false)
}

// --- locked accounts ---

func TestLockedAccount_RejectsEverything(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 100.0),
		dispute(1, 1),
		chargeback(1, 1),
	)

	wantReject(t, eng, deposit(1, 5, 100.0), engine.ErrAccountLocked)
	wantReject(t, eng, withdrawal(1, 3, 100.0), engine.ErrAccountLocked)
	wantReject(t, eng, dispute(1, 1), engine.ErrAccountLocked)
	wantReject(t, eng, resolve(1, 1), engine.ErrAccountLocked)
	wantReject(t, eng, chargeback(1, 1), engine.ErrAccountLocked)

	checkSnapshot(t, eng, 1, 0, 0, true)
}

// --- client independence ---

func TestClientsAreIndependent(t *testing.T) {
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 23.0),
		deposit(6, 2, 123.123),
	)

	checkSnapshot(t, eng, 1, 230_000, 0, false)
	checkSnapshot(t, eng, 6, 1_231_230, 0, false)

	// Locking client 6 leaves client 1 untouched.
	mustProcess(t, eng,
		dispute(6, 2),
		chargeback(6, 2),
	)
	mustProcess(t, eng, deposit(1, 3, 1.0))

	checkSnapshot(t, eng, 1, 240_000, 0, false)
	checkSnapshot(t, eng, 6, 0, 0, true)
}

func TestDispute_ScopedToNamedClientLedger(t *testing.T) {
	// Both clients hold tx id 1; disputing on client 2 must not touch
	// client 1's record.
	eng := engine.New(nil)
	mustProcess(t, eng,
		deposit(1, 1, 100.0),
		deposit(2, 1, 40.0),
		dispute(2, 1),
	)

	checkSnapshot(t, eng, 1, 1_000_000, 0, false)
	checkSnapshot(t, eng, 2, 0, 400_000, false)
}

// --- fixed-point exactness ---

func TestRepeatedOperations_NoDrift(t *testing.T) {
	// 0.1 is not exactly representable in binary floating point; a thousand
	// deposits and withdrawals of it must still balance to zero exactly.
	eng := engine.New(nil)

	var id ledger.TxID
	for i := 0; i < 1000; i++ {
		id++
		mustProcess(t, eng, deposit(1, id, 0.1))
	}
	for i := 0; i < 1000; i++ {
		id++
		mustProcess(t, eng, withdrawal(1, id, 0.1))
	}

	checkSnapshot(t, eng, 1, 0, 0, false)
}
