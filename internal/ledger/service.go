package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork is a single atomic balance mutation. Every method either
// succeeds or the whole unit is rolled back; partial states are never
// observable after it ends. Implementations must hold whatever lock
// BalanceForUpdate takes until Commit or Rollback.
type UnitOfWork interface {
	InsertTransaction(ctx context.Context, tx *Transaction) error
	BalanceForUpdate(ctx context.Context, customerID string) (decimal.Decimal, error)
	ApplyBalance(ctx context.Context, customerID string, delta decimal.Decimal, at time.Time) error
	InsertAudit(ctx context.Context, entry *AuditEntry) error
	MarkCompleted(ctx context.Context, txnID uuid.UUID) error
	Commit() error
	Rollback() error
}

// Publisher emits an event after a transaction commits. Optional.
type Publisher interface {
	TransactionCompleted(ctx context.Context, tx *Transaction, entry *AuditEntry) error
}

type Service struct {
	repo Repository
	pub  Publisher
}

type Option func(*Service)

func WithPublisher(pub Publisher) Option {
	return func(s *Service) { s.pub = pub }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Execute applies a validated request against the customer balance as one
// atomic unit of work: insert the transaction row, read the balance under
// lock, apply the signed delta, write the paired audit entry, mark the row
// COMPLETED and commit. Any failure before commit rolls everything back.
//
// The returned transaction carries the minted id even when err != nil;
// nothing was persisted in that case.
func (s *Service) Execute(ctx context.Context, txnID uuid.UUID, req Request) (*Transaction, error) {
	start := time.Now()

	tx := &Transaction{
		ID:         txnID,
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Kind:       req.Kind,
		Status:     StatusProcessing,
		CreatedAt:  start,
	}

	slog.Info("transaction initiated",
		"txn_id", tx.ID,
		"customer_id", tx.CustomerID,
		"amount", tx.Amount,
		"transaction_type", tx.Kind,
	)

	entry, err := s.run(ctx, tx)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		slog.Error("transaction failed",
			"txn_id", tx.ID,
			"error", err,
			"processing_time_ms", elapsed,
		)

		return tx, err
	}

	slog.Info("transaction completed",
		"txn_id", tx.ID,
		"status", tx.Status,
		"processing_time_ms", elapsed,
	)

	if s.pub != nil {
		if err := s.pub.TransactionCompleted(ctx, tx, entry); err != nil {
			slog.Error("publishing transaction event", "txn_id", tx.ID, "error", err)
		}
	}

	return tx, nil
}

func (s *Service) run(ctx context.Context, tx *Transaction) (*AuditEntry, error) {
	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning unit of work: %w", err)
	}
	defer uow.Rollback()

	if err := uow.InsertTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("inserting transaction: %w", err)
	}

	oldBalance, err := uow.BalanceForUpdate(ctx, tx.CustomerID)
	if err != nil {
		return nil, err
	}

	if tx.Kind == KindDebit && oldBalance.LessThan(tx.Amount) {
		return nil, fmt.Errorf("%w: current %s, debit %s", ErrInsufficientFunds, oldBalance, tx.Amount)
	}

	delta := tx.Kind.Delta(tx.Amount)
	now := time.Now()

	if err := uow.ApplyBalance(ctx, tx.CustomerID, delta, now); err != nil {
		return nil, fmt.Errorf("applying balance: %w", err)
	}

	entry := &AuditEntry{
		ID:         uuid.New(),
		TxnID:      tx.ID,
		CustomerID: tx.CustomerID,
		OldBalance: oldBalance,
		NewBalance: oldBalance.Add(delta),
		Timestamp:  now,
	}

	if err := uow.InsertAudit(ctx, entry); err != nil {
		return nil, fmt.Errorf("inserting audit entry: %w", err)
	}

	if err := uow.MarkCompleted(ctx, tx.ID); err != nil {
		return nil, fmt.Errorf("marking transaction completed: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("committing unit of work: %w", err)
	}

	tx.Status = StatusCompleted

	return entry, nil
}
