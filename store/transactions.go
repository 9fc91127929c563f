package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alagaddonjuan/q4icoms/model"
)

// Transactions records token purchases. A purchase is credited when the
// payment provider confirms its reference, and the Pending -> Success guard
// makes a replayed confirmation a no-op.
type Transactions struct {
	pool    *pgxpool.Pool
	wallets *Wallets
}

func (r *Transactions) CreatePending(ctx context.Context, clientId int64, reference string, amount float64, tokensPurchased int64) error {
	_, err := r.pool.Exec(ctx, `insert into transactions (client_id, reference, amount, tokens_purchased, status)
		values ($1, $2, $3, $4, $5)`, clientId, reference, amount, tokensPurchased, model.TransactionPending)
	if err != nil {
		return fmt.Errorf("create pending transaction failed: %w", err)
	}
	return nil
}

// ConfirmAndCredit flips the referenced transaction to Success and credits
// the wallet in one unit. Returns false when no Pending row matches the
// reference (unknown or already credited).
func (r *Transactions) ConfirmAndCredit(ctx context.Context, reference string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin credit tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var clientId, tokens int64
	err = tx.QueryRow(ctx, `update transactions set status = $2 where reference = $1 and status = $3
			returning client_id, tokens_purchased`,
		reference, model.TransactionSuccess, model.TransactionPending).Scan(&clientId, &tokens)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("confirm transaction failed: %w", err)
	}
	if err := r.wallets.AdjustQ(ctx, tx, clientId, tokens, true); err != nil {
		return false, fmt.Errorf("credit wallet failed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit credit tx failed: %w", err)
	}
	return true, nil
}

const transactionColumns = `id, client_id, reference, amount, tokens_purchased, status, created_at`

func scanTransactions(rows pgx.Rows) ([]model.Transaction, error) {
	defer rows.Close()
	transactions := []model.Transaction{}
	for rows.Next() {
		entry := model.Transaction{}
		if err := rows.Scan(&entry.Id, &entry.ClientId, &entry.Reference, &entry.Amount,
			&entry.TokensPurchased, &entry.Status, &entry.CreatedAt); err != nil {
			return nil, err
		}
		transactions = append(transactions, entry)
	}
	return transactions, rows.Err()
}

func (r *Transactions) Recent(ctx context.Context, clientId int64, limit int) ([]model.Transaction, error) {
	rows, err := r.pool.Query(ctx, `select `+transactionColumns+` from transactions where client_id = $1 order by created_at desc limit $2`, clientId, limit)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

type TransactionWithClient struct {
	model.Transaction
	ClientName string `json:"client_name"`
}

func (r *Transactions) ListAll(ctx context.Context) ([]TransactionWithClient, error) {
	rows, err := r.pool.Query(ctx, `select t.id, t.client_id, t.reference, t.amount, t.tokens_purchased, t.status, t.created_at, c.name
		from transactions t join clients c on t.client_id = c.id order by t.created_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	transactions := []TransactionWithClient{}
	for rows.Next() {
		entry := TransactionWithClient{}
		if err := rows.Scan(&entry.Id, &entry.ClientId, &entry.Reference, &entry.Amount,
			&entry.TokensPurchased, &entry.Status, &entry.CreatedAt, &entry.ClientName); err != nil {
			return nil, err
		}
		transactions = append(transactions, entry)
	}
	return transactions, rows.Err()
}
