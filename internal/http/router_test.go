package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2bportal/ledger/internal/cache"
	ledgerHttp "github.com/b2bportal/ledger/internal/http"
	txHandler "github.com/b2bportal/ledger/internal/http/ledger"
	statsHandler "github.com/b2bportal/ledger/internal/http/stats"
	"github.com/b2bportal/ledger/internal/ledger"
	"github.com/b2bportal/ledger/internal/ledger/memory"
	"github.com/b2bportal/ledger/internal/stats"
)

type staticStatsRepo struct {
	snap stats.Snapshot
}

func (r *staticStatsRepo) Aggregate(context.Context, time.Time) (*stats.Snapshot, error) {
	snap := r.snap
	return &snap, nil
}

func newRouter(store *memory.Store) http.Handler {
	statsRepo := &staticStatsRepo{snap: stats.Snapshot{
		TotalTransactions: 2,
		TotalAmount:       decimal.RequireFromString("75.00"),
		AvgAmount:         decimal.RequireFromString("37.50"),
	}}

	return ledgerHttp.New(
		txHandler.NewHandler(ledger.NewService(store)),
		statsHandler.NewHandler(stats.NewService(statsRepo, cache.NewMemory(), time.Minute)),
	)
}

func TestRouter_Health(t *testing.T) {
	router := newRouter(memory.New())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRouter_Transaction(t *testing.T) {
	store := memory.New()
	store.Seed("C1", decimal.RequireFromString("20.00"))
	router := newRouter(store)

	body := `{"customer_id":"C1","amount":5,"transaction_type":"debit"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transaction", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	balance, _ := store.Balance("C1")
	assert.True(t, decimal.RequireFromString("15.00").Equal(balance), "balance %s", balance)
}

func TestRouter_TransactionRejectsNonJSONContentType(t *testing.T) {
	router := newRouter(memory.New())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transaction", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_Stats(t *testing.T) {
	router := newRouter(memory.New())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snap stats.Snapshot
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.Equal(t, int64(2), snap.TotalTransactions)
	assert.False(t, snap.FromCache)

	// Second read is served from the cache.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
	assert.True(t, snap.FromCache)
}
