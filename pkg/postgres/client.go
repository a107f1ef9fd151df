// Package postgres opens the database/sql pool behind the hit ledger.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/config"
)

// Execer runs a statement. *sql.DB, *sql.Tx and Client satisfy it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Client struct {
	DB *sql.DB
}

func New(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	return newClient(ctx, db, cfg)
}

// newClient applies the pool settings and pings db, closing it when the
// ping fails.
func newClient(ctx context.Context, db *sql.DB, cfg config.PostgresConfig) (*Client, error) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.DB.ExecContext(ctx, query, args...)
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// InTx runs fn in a transaction, committing on success and rolling back on
// error.
func (c *Client) InTx(ctx context.Context, fn func(tx Execer) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
