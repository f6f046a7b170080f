package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/b2bportal/ledger/internal/cache"
)

const (
	cacheKey = "stats_24h"
	window   = 24 * time.Hour
)

// Snapshot is a windowed aggregate over the transaction ledger. It is
// derived data: computed on cache miss, held in the cache for a bounded
// TTL, never written back to the durable store.
type Snapshot struct {
	TotalTransactions int64           `json:"total_transactions"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	AvgAmount         decimal.Decimal `json:"avg_amount"`
	Timestamp         time.Time       `json:"timestamp"`
	FromCache         bool            `json:"from_cache"`
}

// MarshalJSON emits the amounts as JSON numbers rather than the quoted
// strings decimal produces by default. Unmarshaling accepts both, so
// cached snapshots round-trip unchanged.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type wireSnapshot struct {
		TotalTransactions int64       `json:"total_transactions"`
		TotalAmount       json.Number `json:"total_amount"`
		AvgAmount         json.Number `json:"avg_amount"`
		Timestamp         time.Time   `json:"timestamp"`
		FromCache         bool        `json:"from_cache"`
	}

	return json.Marshal(wireSnapshot{
		TotalTransactions: s.TotalTransactions,
		TotalAmount:       json.Number(s.TotalAmount.String()),
		AvgAmount:         json.Number(s.AvgAmount.String()),
		Timestamp:         s.Timestamp,
		FromCache:         s.FromCache,
	})
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=stats
type Repository interface {
	Aggregate(ctx context.Context, since time.Time) (*Snapshot, error)
}

type Service struct {
	repo  Repository
	cache cache.Cache
	ttl   time.Duration
}

func NewService(repo Repository, c cache.Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: c, ttl: ttl}
}

// Snapshot returns the trailing-window aggregate, cache-aside: a cached
// value is returned as-is, a miss recomputes from the store and writes
// back. Concurrent misses may each recompute and overwrite the cache; with
// a short TTL that redundancy is accepted over cross-request locking.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if raw, ok := s.cache.Get(ctx, cacheKey); ok {
		var snap Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err == nil {
			snap.FromCache = true
			return &snap, nil
		}

		slog.Warn("discarding unreadable cached stats", "key", cacheKey)
	}

	snap, err := s.repo.Aggregate(ctx, time.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("aggregating stats: %w", err)
	}

	snap.Timestamp = time.Now()

	if raw, err := json.Marshal(snap); err == nil {
		s.cache.Set(ctx, cacheKey, string(raw), s.ttl)
	}

	return snap, nil
}
