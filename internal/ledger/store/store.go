package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/b2bportal/ledger/internal/database"
	"github.com/b2bportal/ledger/internal/ledger"
)

type Store struct {
	pool *database.Pool
}

func New(pool *database.Pool) *Store {
	return &Store{pool: pool}
}

// Begin acquires a pooled connection and opens a database transaction for
// one unit of work. The connection is released on Commit or Rollback,
// whichever comes first, on every exit path.
func (s *Store) Begin(ctx context.Context) (ledger.UnitOfWork, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return &unitOfWork{conn: conn, tx: tx}, nil
}

type unitOfWork struct {
	conn *pgxpool.Conn
	tx   pgx.Tx
	done bool
}

func (u *unitOfWork) InsertTransaction(ctx context.Context, tx *ledger.Transaction) error {
	query := `
		INSERT INTO transactions (txn_id, customer_id, amount, transaction_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := u.tx.Exec(ctx, query,
		tx.ID,
		tx.CustomerID,
		tx.Amount,
		tx.Kind,
		tx.Status,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}

	return nil
}

// BalanceForUpdate reads the customer balance under a row lock, so
// concurrent units of work against the same customer serialize here and
// never both observe a stale balance.
func (u *unitOfWork) BalanceForUpdate(ctx context.Context, customerID string) (decimal.Decimal, error) {
	query := `SELECT balance FROM customers WHERE customer_id = $1 FOR UPDATE`

	var balance decimal.Decimal

	err := u.tx.QueryRow(ctx, query, customerID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("customer %s: %w", customerID, ledger.ErrCustomerNotFound)
		}

		return decimal.Zero, fmt.Errorf("reading balance: %w", err)
	}

	return balance, nil
}

func (u *unitOfWork) ApplyBalance(ctx context.Context, customerID string, delta decimal.Decimal, at time.Time) error {
	query := `
		UPDATE customers
		SET balance = balance + $1, last_transaction_date = $2
		WHERE customer_id = $3
	`

	_, err := u.tx.Exec(ctx, query, delta, at, customerID)
	if err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}

	return nil
}

func (u *unitOfWork) InsertAudit(ctx context.Context, entry *ledger.AuditEntry) error {
	query := `
		INSERT INTO transaction_audit (audit_id, txn_id, customer_id, old_balance, new_balance, audit_timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := u.tx.Exec(ctx, query,
		entry.ID,
		entry.TxnID,
		entry.CustomerID,
		entry.OldBalance,
		entry.NewBalance,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	return nil
}

func (u *unitOfWork) MarkCompleted(ctx context.Context, txnID uuid.UUID) error {
	query := `UPDATE transactions SET status = $1 WHERE txn_id = $2`

	_, err := u.tx.Exec(ctx, query, ledger.StatusCompleted, txnID)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return nil
}

func (u *unitOfWork) Commit() error {
	if u.done {
		return nil
	}

	u.done = true
	defer u.conn.Release()

	if err := u.tx.Commit(context.Background()); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.done {
		return nil
	}

	u.done = true
	defer u.conn.Release()

	if err := u.tx.Rollback(context.Background()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rolling back transaction: %w", err)
	}

	return nil
}

var _ ledger.Repository = (*Store)(nil)
