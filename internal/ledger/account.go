package ledger

import "txreplay/internal/amount"

// Account holds the complete accepted-transaction history of one client.
// Balances are not maintained incrementally: available, held, and locked are
// derived by scanning the records, which keeps status changes from ever
// desynchronizing a running counter.
type Account struct {
	records map[TxID]Record
}

func NewAccount() *Account {
	return &Account{
		records: make(map[TxID]Record),
	}
}

// Has reports whether a transaction id already exists in this ledger.
func (a *Account) Has(id TxID) bool {
	_, ok := a.records[id]
	return ok
}

// Get returns the record for a transaction id, if present.
func (a *Account) Get(id TxID) (Record, bool) {
	rec, ok := a.records[id]
	return rec, ok
}

// Put inserts a new record. Records are never deleted.
func (a *Account) Put(id TxID, rec Record) {
	a.records[id] = rec
}

// SetStatus mutates the status of an existing record in place.
func (a *Account) SetStatus(id TxID, s Status) {
	rec := a.records[id]
	rec.Status = s
	a.records[id] = rec
}

// AvailableUnits is the sum of all processed records.
func (a *Account) AvailableUnits() int64 {
	var sum int64
	for _, rec := range a.records {
		if rec.Status == StatusProcessed {
			sum += rec.Units
		}
	}
	return sum
}

// HeldUnits is the sum of all records under dispute.
func (a *Account) HeldUnits() int64 {
	var sum int64
	for _, rec := range a.records {
		if rec.Status == StatusUnderDispute {
			sum += rec.Units
		}
	}
	return sum
}

// Locked reports whether any record has been charged back. A locked account
// permanently rejects all further transactions.
func (a *Account) Locked() bool {
	for _, rec := range a.records {
		if rec.Status == StatusChargedBack {
			return true
		}
	}
	return false
}

// Snapshot derives the current account summary. Charged-back funds are
// excluded from both available and held, so total permanently drops after a
// successful chargeback.
func (a *Account) Snapshot(client ClientID) Snapshot {
	available := a.AvailableUnits()
	held := a.HeldUnits()
	return Snapshot{
		Client:         client,
		AvailableUnits: available,
		HeldUnits:      held,
		TotalUnits:     available + held,
		Locked:         a.Locked(),
	}
}

// Snapshot is the derived per-client account summary. Amounts are carried in
// fixed-point units; conversion to decimal happens only at the output
// boundary.
type Snapshot struct {
	Client         ClientID
	AvailableUnits int64
	HeldUnits      int64
	TotalUnits     int64
	Locked         bool
}

// Available returns the available funds as a decimal amount.
func (s Snapshot) Available() float64 { return amount.ToDecimal(s.AvailableUnits) }

// Held returns the held funds as a decimal amount.
func (s Snapshot) Held() float64 { return amount.ToDecimal(s.HeldUnits) }

// Total returns the total funds as a decimal amount.
func (s Snapshot) Total() float64 { return amount.ToDecimal(s.TotalUnits) }
