package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/b2bportal/ledger/internal/cache"
	"github.com/b2bportal/ledger/internal/config"
	"github.com/b2bportal/ledger/internal/database"
	"github.com/b2bportal/ledger/internal/events/kafka"
	ledgerHttp "github.com/b2bportal/ledger/internal/http"
	txHandler "github.com/b2bportal/ledger/internal/http/ledger"
	statsHandler "github.com/b2bportal/ledger/internal/http/stats"
	"github.com/b2bportal/ledger/internal/ledger"
	ledgerStore "github.com/b2bportal/ledger/internal/ledger/store"
	"github.com/b2bportal/ledger/internal/stats"
	statsStore "github.com/b2bportal/ledger/internal/stats/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool := database.New(database.Config{
		ConnString:       cfg.ConnectionString(),
		MinConns:         cfg.Pool.MinConns,
		MaxConns:         cfg.Pool.MaxConns,
		AcquireTimeout:   cfg.Pool.AcquireTimeout,
		StatementTimeout: cfg.Pool.StatementTimeout,
	})
	defer pool.Close()

	// No pool, no requests: an unreachable database is fatal at startup.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to initialize connection pool", "error", err)
		os.Exit(1)
	}

	var statsCache cache.Cache = cache.NewNoop()

	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedis(ctx, cfg.Cache.Addr, cfg.Cache.DB)
		if err != nil {
			slog.Warn("redis not available, running without cache", "error", err)
		} else {
			defer redisCache.Close()

			statsCache = redisCache

			slog.Info("redis cache connected", "addr", cfg.Cache.Addr)
		}
	} else {
		slog.Info("cache disabled")
	}

	var ledgerOpts []ledger.Option

	if cfg.Kafka.Enabled {
		publisher := kafka.NewPublisher(cfg.Kafka.Brokers)
		defer publisher.Close()

		ledgerOpts = append(ledgerOpts, ledger.WithPublisher(publisher))

		slog.Info("event publishing enabled", "brokers", cfg.Kafka.Brokers)
	}

	var (
		ledgerService = ledger.NewService(ledgerStore.New(pool), ledgerOpts...)
		statsService  = stats.NewService(statsStore.New(pool), statsCache, cfg.Cache.TTL)
	)

	var (
		transactionH = txHandler.NewHandler(ledgerService)
		statsH       = statsHandler.NewHandler(statsService)
	)

	router := ledgerHttp.New(transactionH, statsH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
