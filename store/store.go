// Package store owns all Postgres access of the gateway. Balance mutations
// go through Wallets only, and the one unit of work spanning two entities
// (session finalize + wallet debit) lives in Sessions.FinalizeAndBill.
package store

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alagaddonjuan/q4icoms/billing"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrInsufficientBalance  = errors.New("insufficient token balance")
	ErrDuplicateServiceCode = errors.New("service code already assigned to another client")
	ErrDuplicateEmail       = errors.New("a client with this email already exists")
)

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so lookup helpers can run inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Stores struct {
	Clients      *Clients
	Wallets      *Wallets
	Sessions     *Sessions
	Pricing      *Pricing
	Transactions *Transactions
	Messages     *Messages
}

func New(pool *pgxpool.Pool, cache *redis.Client, cfg billing.Config) *Stores {
	wallets := &Wallets{pool: pool}
	pricing := &Pricing{pool: pool, cache: cache, defaultRate: cfg.DefaultTokensPerInterval}
	return &Stores{
		Clients:      &Clients{pool: pool, cache: cache},
		Wallets:      wallets,
		Sessions:     &Sessions{pool: pool, wallets: wallets, pricing: pricing, cfg: cfg},
		Pricing:      pricing,
		Transactions: &Transactions{pool: pool, wallets: wallets},
		Messages:     &Messages{pool: pool},
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
