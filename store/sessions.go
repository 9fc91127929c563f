package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alagaddonjuan/q4icoms/billing"
	"github.com/alagaddonjuan/q4icoms/model"
)

type Sessions struct {
	pool    *pgxpool.Pool
	wallets *Wallets
	pricing *Pricing
	cfg     billing.Config
}

// Begin creates the Pending log row on the first menu turn. The provider may
// replay the first turn; on conflict the existing row wins.
func (r *Sessions) Begin(ctx context.Context, clientId int64, sessionId string, phoneNumber string, networkCode string) error {
	_, err := r.pool.Exec(ctx, `insert into ussd_logs (client_id, session_id, phone_number, network_code, final_user_string, status)
		values ($1, $2, $3, $4, '', $5) on conflict (session_id) do nothing`,
		clientId, sessionId, phoneNumber, networkCode, model.SessionPending)
	if err != nil {
		return fmt.Errorf("create session log failed: %w", err)
	}
	return nil
}

// RecordInput rewrites the accumulated input path on every later turn. The
// path carries the full replay history, so the latest write is always the
// most complete one.
func (r *Sessions) RecordInput(ctx context.Context, sessionId string, text string) error {
	_, err := r.pool.Exec(ctx, `update ussd_logs set final_user_string = $2 where session_id = $1`, sessionId, text)
	if err != nil {
		return fmt.Errorf("update session input failed: %w", err)
	}
	return nil
}

// FinalizeAndBill is the one unit of work spanning two entities. In a single
// transaction it locks the log row, resolves the per-network rate, flips the
// row Pending -> Completed writing the billing fields, and debits the owning
// wallet. The conditional status update plus the row lock make a duplicate
// terminal event observe AlreadyBilled instead of debiting twice.
func (r *Sessions) FinalizeAndBill(ctx context.Context, sessionId string, durationSeconds int64, providerCost float64) (billing.Outcome, int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("begin finalize tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var clientId int64
	var networkCode, status string
	err = tx.QueryRow(ctx, `select client_id, network_code, status from ussd_logs where session_id = $1 for update`, sessionId).
		Scan(&clientId, &networkCode, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return billing.SessionNotFound, 0, nil
		}
		return "", 0, fmt.Errorf("load session log failed: %w", err)
	}
	if status == model.SessionCompleted {
		return billing.AlreadyBilled, 0, nil
	}

	rate := r.pricing.TokensPerInterval(ctx, tx, networkCode)
	tokens := billing.TokenCost(durationSeconds, r.cfg.IntervalSeconds, rate)

	result, err := tx.Exec(ctx, `update ussd_logs
			set duration_seconds = $2, session_cost = $3, client_price = $4, status = $5
			where session_id = $1 and status = $6`,
		sessionId, durationSeconds, providerCost, tokens, model.SessionCompleted, model.SessionPending)
	if err != nil {
		return "", 0, fmt.Errorf("finalize session log failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return billing.AlreadyBilled, 0, nil
	}
	if err := r.wallets.AdjustQ(ctx, tx, clientId, -tokens, r.cfg.AllowOverdraft); err != nil {
		return "", 0, fmt.Errorf("debit wallet failed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", 0, fmt.Errorf("commit finalize tx failed: %w", err)
	}
	return billing.Billed, tokens, nil
}

func scanSessionLogs(rows pgx.Rows) ([]model.SessionLog, error) {
	defer rows.Close()
	logs := []model.SessionLog{}
	for rows.Next() {
		entry := model.SessionLog{}
		if err := rows.Scan(&entry.Id, &entry.ClientId, &entry.SessionId, &entry.PhoneNumber, &entry.NetworkCode,
			&entry.FinalUserString, &entry.Status, &entry.DurationSeconds, &entry.SessionCost, &entry.ClientPrice, &entry.LoggedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

const sessionColumns = `id, client_id, session_id, phone_number, network_code, final_user_string, status, duration_seconds, session_cost, client_price, logged_at`

func (r *Sessions) Find(ctx context.Context, sessionId string) (*model.SessionLog, error) {
	entry := model.SessionLog{}
	err := r.pool.QueryRow(ctx, `select `+sessionColumns+` from ussd_logs where session_id = $1`, sessionId).
		Scan(&entry.Id, &entry.ClientId, &entry.SessionId, &entry.PhoneNumber, &entry.NetworkCode,
			&entry.FinalUserString, &entry.Status, &entry.DurationSeconds, &entry.SessionCost, &entry.ClientPrice, &entry.LoggedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *Sessions) Recent(ctx context.Context, clientId int64, limit int) ([]model.SessionLog, error) {
	rows, err := r.pool.Query(ctx, `select `+sessionColumns+` from ussd_logs where client_id = $1 order by logged_at desc limit $2`, clientId, limit)
	if err != nil {
		return nil, err
	}
	return scanSessionLogs(rows)
}

// TokensSpent sums the billed token cost of a client's completed sessions.
func (r *Sessions) TokensSpent(ctx context.Context, clientId int64) (int64, error) {
	var total *int64
	err := r.pool.QueryRow(ctx, `select sum(client_price) from ussd_logs where client_id = $1`, clientId).Scan(&total)
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// SessionLogWithClient is the admin listing row.
type SessionLogWithClient struct {
	model.SessionLog
	ClientName string `json:"client_name"`
}

func (r *Sessions) ListAll(ctx context.Context) ([]SessionLogWithClient, error) {
	rows, err := r.pool.Query(ctx, `select l.id, l.client_id, l.session_id, l.phone_number, l.network_code,
			l.final_user_string, l.status, l.duration_seconds, l.session_cost, l.client_price, l.logged_at, c.name
		from ussd_logs l join clients c on l.client_id = c.id order by l.logged_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	logs := []SessionLogWithClient{}
	for rows.Next() {
		entry := SessionLogWithClient{}
		if err := rows.Scan(&entry.Id, &entry.ClientId, &entry.SessionId, &entry.PhoneNumber, &entry.NetworkCode,
			&entry.FinalUserString, &entry.Status, &entry.DurationSeconds, &entry.SessionCost, &entry.ClientPrice,
			&entry.LoggedAt, &entry.ClientName); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
