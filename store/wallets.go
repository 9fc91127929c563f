package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Wallets is the single owner of token balance mutations. Every spending and
// crediting path adjusts the balance with one relative SQL update; nothing
// in the gateway reads a balance and writes it back.
type Wallets struct {
	pool *pgxpool.Pool
}

// Adjust applies a signed delta and rejects a result below zero.
func (w *Wallets) Adjust(ctx context.Context, clientId int64, delta int64) error {
	return w.AdjustQ(ctx, w.pool, clientId, delta, false)
}

// AdjustQ is Adjust running on an arbitrary querier, so callers can fold the
// balance change into a larger transaction. With allowOverdraft the balance
// may go negative; USSD finalization uses this because the session cost is
// only known after the fact.
func (w *Wallets) AdjustQ(ctx context.Context, q Querier, clientId int64, delta int64, allowOverdraft bool) error {
	if allowOverdraft {
		if _, err := q.Exec(ctx, `update clients set token_balance = token_balance + $1, updated_at = current_timestamp where id = $2`, delta, clientId); err != nil {
			return fmt.Errorf("wallet adjust failed: %w", err)
		}
		return nil
	}
	result, err := q.Exec(ctx, `update clients set token_balance = token_balance + $1, updated_at = current_timestamp where id = $2 and token_balance + $1 >= 0`, delta, clientId)
	if err != nil {
		return fmt.Errorf("wallet adjust failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		var one int
		if err := q.QueryRow(ctx, `select 1 from clients where id = $1`, clientId).Scan(&one); err != nil {
			return ErrNotFound
		}
		return ErrInsufficientBalance
	}
	return nil
}

// Balance reads the current balance; callers must not use the value to
// derive a write.
func (w *Wallets) Balance(ctx context.Context, clientId int64) (int64, error) {
	var balance int64
	err := w.pool.QueryRow(ctx, `select token_balance from clients where id = $1`, clientId).Scan(&balance)
	if err != nil {
		return 0, ErrNotFound
	}
	return balance, nil
}
