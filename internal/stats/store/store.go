package store

import (
	"context"
	"fmt"
	"time"

	"github.com/b2bportal/ledger/internal/database"
	"github.com/b2bportal/ledger/internal/stats"
)

type Store struct {
	pool *database.Pool
}

func New(pool *database.Pool) *Store {
	return &Store{pool: pool}
}

// Aggregate computes count, sum and average of transaction amounts created
// since the cutoff in a single query.
func (s *Store) Aggregate(ctx context.Context, since time.Time) (*stats.Snapshot, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	query := `
		SELECT
			COUNT(*) AS total_transactions,
			COALESCE(SUM(amount), 0) AS total_amount,
			COALESCE(AVG(amount), 0) AS avg_amount
		FROM transactions
		WHERE created_at >= $1
	`

	var snap stats.Snapshot

	err = conn.QueryRow(ctx, query, since).Scan(
		&snap.TotalTransactions,
		&snap.TotalAmount,
		&snap.AvgAmount,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating transactions: %w", err)
	}

	return &snap, nil
}

var _ stats.Repository = (*Store)(nil)
