package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bportal/ledger/internal/ledger"
	"github.com/b2bportal/ledger/internal/ledger/memory"
)

func TestStore_DebitCreditRoundTrip(t *testing.T) {
	store := memory.New()
	store.Seed("C1", decimal.RequireFromString("100.00"))
	svc := ledger.NewService(store)
	ctx := context.Background()

	creditID := uuid.New()
	tx, err := svc.Execute(ctx, creditID, ledger.Request{
		CustomerID: "C1",
		Amount:     decimal.RequireFromString("50.00"),
		Kind:       ledger.KindCredit,
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusCompleted, tx.Status)

	balance, ok := store.Balance("C1")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("150.00").Equal(balance), "balance %s", balance)

	audits := store.AuditsForTxn(creditID)
	require.Len(t, audits, 1)
	assert.True(t, decimal.RequireFromString("100.00").Equal(audits[0].OldBalance))
	assert.True(t, decimal.RequireFromString("150.00").Equal(audits[0].NewBalance))

	debitID := uuid.New()
	_, err = svc.Execute(ctx, debitID, ledger.Request{
		CustomerID: "C1",
		Amount:     decimal.RequireFromString("30.00"),
		Kind:       ledger.KindDebit,
	})
	require.NoError(t, err)

	balance, _ = store.Balance("C1")
	assert.True(t, decimal.RequireFromString("120.00").Equal(balance), "balance %s", balance)
	assert.Len(t, store.AuditsForTxn(debitID), 1)
}

func TestStore_InsufficientFundsLeavesNoTrace(t *testing.T) {
	store := memory.New()
	store.Seed("C1", decimal.RequireFromString("100.00"))
	svc := ledger.NewService(store)

	txnID := uuid.New()
	_, err := svc.Execute(context.Background(), txnID, ledger.Request{
		CustomerID: "C1",
		Amount:     decimal.RequireFromString("500.00"),
		Kind:       ledger.KindDebit,
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	balance, _ := store.Balance("C1")
	assert.True(t, decimal.RequireFromString("100.00").Equal(balance), "balance %s", balance)

	_, exists := store.Transaction(txnID)
	assert.False(t, exists, "rolled-back transaction must not be stored")
	assert.Empty(t, store.AuditsForTxn(txnID))
}

func TestStore_UnknownCustomerLeavesNoTrace(t *testing.T) {
	store := memory.New()
	svc := ledger.NewService(store)

	txnID := uuid.New()
	_, err := svc.Execute(context.Background(), txnID, ledger.Request{
		CustomerID: "ghost",
		Amount:     decimal.RequireFromString("10.00"),
		Kind:       ledger.KindCredit,
	})
	require.ErrorIs(t, err, ledger.ErrCustomerNotFound)

	_, exists := store.Transaction(txnID)
	assert.False(t, exists)
}

// Concurrent debits against one customer must serialize on the balance:
// exactly the subset that keeps the balance non-negative may succeed.
func TestStore_ConcurrentDebits(t *testing.T) {
	const (
		workers     = 20
		debitAmount = "10.00"
	)

	store := memory.New()
	store.Seed("C1", decimal.RequireFromString("100.00"))
	svc := ledger.NewService(store)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := svc.Execute(context.Background(), uuid.New(), ledger.Request{
				CustomerID: "C1",
				Amount:     decimal.RequireFromString(debitAmount),
				Kind:       ledger.KindDebit,
			})

			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
				rejected++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 10, succeeded, "only 10 debits of 10.00 fit in 100.00")
	assert.Equal(t, workers-10, rejected)

	balance, _ := store.Balance("C1")
	assert.True(t, balance.IsZero(), "final balance %s", balance)
}

func TestStore_ConcurrentCustomersAreIndependent(t *testing.T) {
	store := memory.New()
	store.Seed("A", decimal.RequireFromString("50.00"))
	store.Seed("B", decimal.RequireFromString("50.00"))
	svc := ledger.NewService(store)

	var wg sync.WaitGroup

	for _, customer := range []string{"A", "B"} {
		for i := 0; i < 5; i++ {
			wg.Add(1)

			go func(id string) {
				defer wg.Done()

				_, err := svc.Execute(context.Background(), uuid.New(), ledger.Request{
					CustomerID: id,
					Amount:     decimal.RequireFromString("10.00"),
					Kind:       ledger.KindDebit,
				})
				assert.NoError(t, err)
			}(customer)
		}
	}

	wg.Wait()

	for _, customer := range []string{"A", "B"} {
		balance, _ := store.Balance(customer)
		assert.True(t, balance.IsZero(), "customer %s balance %s", customer, balance)
	}
}
