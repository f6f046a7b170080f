// Package memory implements the ledger repository in process memory. It is
// used by tests and for running the API without a database. Per-customer
// mutexes stand in for the row locks the Postgres store takes, so the
// engine's concurrency behavior is the same against either backend.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/b2bportal/ledger/internal/ledger"
)

type Store struct {
	mu       sync.Mutex // protects the maps below and the lock map itself
	locks    map[string]*sync.Mutex
	balances map[string]decimal.Decimal
	lastTxn  map[string]time.Time
	txns     map[uuid.UUID]ledger.Transaction
	audits   []ledger.AuditEntry
}

func New() *Store {
	return &Store{
		locks:    make(map[string]*sync.Mutex),
		balances: make(map[string]decimal.Decimal),
		lastTxn:  make(map[string]time.Time),
		txns:     make(map[uuid.UUID]ledger.Transaction),
	}
}

// Seed creates a customer with an initial balance.
func (s *Store) Seed(customerID string, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[customerID] = balance
}

func (s *Store) customerLock(customerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.locks[customerID]; !exists {
		s.locks[customerID] = &sync.Mutex{}
	}

	return s.locks[customerID]
}

// Balance returns the current balance for a customer.
func (s *Store) Balance(customerID string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[customerID]

	return balance, ok
}

// Transaction returns a stored transaction by id.
func (s *Store) Transaction(txnID uuid.UUID) (ledger.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txns[txnID]

	return tx, ok
}

// AuditsForTxn returns every audit entry referencing the transaction id.
func (s *Store) AuditsForTxn(txnID uuid.UUID) []ledger.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []ledger.AuditEntry

	for _, e := range s.audits {
		if e.TxnID == txnID {
			entries = append(entries, e)
		}
	}

	return entries
}

func (s *Store) Begin(context.Context) (ledger.UnitOfWork, error) {
	return &unitOfWork{store: s, held: make(map[string]*sync.Mutex)}, nil
}

type balanceChange struct {
	customerID string
	delta      decimal.Decimal
	at         time.Time
}

// unitOfWork stages writes and applies them only at Commit, under the store
// lock, so a rolled-back unit leaves no trace. Customer locks taken by
// BalanceForUpdate are held until Commit or Rollback.
type unitOfWork struct {
	store     *Store
	held      map[string]*sync.Mutex
	txns      []ledger.Transaction
	changes   []balanceChange
	audits    []ledger.AuditEntry
	completed []uuid.UUID
	done      bool
}

func (u *unitOfWork) InsertTransaction(_ context.Context, tx *ledger.Transaction) error {
	u.txns = append(u.txns, *tx)
	return nil
}

func (u *unitOfWork) BalanceForUpdate(_ context.Context, customerID string) (decimal.Decimal, error) {
	lock, alreadyHeld := u.held[customerID]
	if !alreadyHeld {
		lock = u.store.customerLock(customerID)
		lock.Lock()
	}

	balance, ok := u.store.Balance(customerID)
	if !ok {
		if !alreadyHeld {
			lock.Unlock()
		}

		return decimal.Zero, fmt.Errorf("customer %s: %w", customerID, ledger.ErrCustomerNotFound)
	}

	u.held[customerID] = lock

	return balance, nil
}

func (u *unitOfWork) ApplyBalance(_ context.Context, customerID string, delta decimal.Decimal, at time.Time) error {
	u.changes = append(u.changes, balanceChange{customerID: customerID, delta: delta, at: at})
	return nil
}

func (u *unitOfWork) InsertAudit(_ context.Context, entry *ledger.AuditEntry) error {
	u.audits = append(u.audits, *entry)
	return nil
}

func (u *unitOfWork) MarkCompleted(_ context.Context, txnID uuid.UUID) error {
	u.completed = append(u.completed, txnID)
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.done {
		return nil
	}

	u.store.mu.Lock()

	for _, tx := range u.txns {
		u.store.txns[tx.ID] = tx
	}

	for _, c := range u.changes {
		u.store.balances[c.customerID] = u.store.balances[c.customerID].Add(c.delta)
		u.store.lastTxn[c.customerID] = c.at
	}

	u.store.audits = append(u.store.audits, u.audits...)

	for _, id := range u.completed {
		tx := u.store.txns[id]
		tx.Status = ledger.StatusCompleted
		u.store.txns[id] = tx
	}

	u.store.mu.Unlock()

	u.release()

	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.done {
		return nil
	}

	u.release()

	return nil
}

func (u *unitOfWork) release() {
	u.done = true

	for _, lock := range u.held {
		lock.Unlock()
	}
}

var _ ledger.Repository = (*Store)(nil)
