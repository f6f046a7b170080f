// Package database owns the bounded Postgres connection pool shared by all
// request workers. The pool is created lazily on first acquisition and is
// safe for concurrent use.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	ConnString       string
	MinConns         int32
	MaxConns         int32
	AcquireTimeout   time.Duration
	StatementTimeout time.Duration
}

// Pool wraps pgxpool with lazy, once-guarded initialization: concurrent
// first callers create exactly one underlying pool, and an initialization
// failure is sticky and surfaced to every subsequent caller.
type Pool struct {
	cfg Config

	once sync.Once
	pool *pgxpool.Pool
	err  error
}

func New(cfg Config) *Pool {
	return &Pool{cfg: cfg}
}

func (p *Pool) init(ctx context.Context) {
	p.once.Do(func() {
		poolCfg, err := pgxpool.ParseConfig(p.cfg.ConnString)
		if err != nil {
			p.err = fmt.Errorf("parsing pool config: %w", err)
			return
		}

		poolCfg.MinConns = p.cfg.MinConns
		poolCfg.MaxConns = p.cfg.MaxConns

		if p.cfg.StatementTimeout > 0 {
			poolCfg.ConnConfig.RuntimeParams["statement_timeout"] =
				strconv.FormatInt(p.cfg.StatementTimeout.Milliseconds(), 10)
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			p.err = fmt.Errorf("creating connection pool: %w", err)
			return
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			p.err = fmt.Errorf("pinging database: %w", err)

			return
		}

		p.pool = pool

		slog.Info("database connection pool initialized",
			"min_conns", p.cfg.MinConns, "max_conns", p.cfg.MaxConns)
	})
}

// Acquire borrows a connection, waiting at most the configured acquire
// timeout. The caller must Release the connection on every exit path.
func (p *Pool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	p.init(ctx)

	if p.err != nil {
		return nil, p.err
	}

	if p.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}

	return conn, nil
}

// Ping initializes the pool if needed and verifies connectivity.
func (p *Pool) Ping(ctx context.Context) error {
	p.init(ctx)

	if p.err != nil {
		return p.err
	}

	return p.pool.Ping(ctx)
}

func (p *Pool) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}
