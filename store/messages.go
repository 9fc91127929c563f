package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alagaddonjuan/q4icoms/model"
)

// Messages records the synchronously billed sends: SMS and airtime.
type Messages struct {
	pool *pgxpool.Pool
}

func (r *Messages) LogSms(ctx context.Context, entry model.SmsLog) error {
	_, err := r.pool.Exec(ctx, `insert into sms_logs (client_id, recipient, message, message_id, status, cost)
		values ($1, $2, $3, $4, $5, $6)`,
		entry.ClientId, entry.Recipient, entry.Message, entry.MessageId, entry.Status, entry.Cost)
	if err != nil {
		return fmt.Errorf("log sms failed: %w", err)
	}
	return nil
}

func (r *Messages) LogAirtime(ctx context.Context, entry model.AirtimeLog) error {
	_, err := r.pool.Exec(ctx, `insert into airtime_logs (client_id, phone_number, amount, request_id, status)
		values ($1, $2, $3, $4, $5)`,
		entry.ClientId, entry.PhoneNumber, entry.Amount, entry.RequestId, entry.Status)
	if err != nil {
		return fmt.Errorf("log airtime failed: %w", err)
	}
	return nil
}

func (r *Messages) CountSms(ctx context.Context, clientId int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `select count(id) from sms_logs where client_id = $1`, clientId).Scan(&count)
	return count, err
}

func (r *Messages) CountAirtime(ctx context.Context, clientId int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `select count(id) from airtime_logs where client_id = $1`, clientId).Scan(&count)
	return count, err
}

func scanSmsLogs(rows pgx.Rows) ([]model.SmsLog, error) {
	defer rows.Close()
	logs := []model.SmsLog{}
	for rows.Next() {
		entry := model.SmsLog{}
		if err := rows.Scan(&entry.Id, &entry.ClientId, &entry.Recipient, &entry.Message,
			&entry.MessageId, &entry.Status, &entry.Cost, &entry.LoggedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (r *Messages) RecentSms(ctx context.Context, clientId int64, limit int) ([]model.SmsLog, error) {
	rows, err := r.pool.Query(ctx, `select id, client_id, recipient, message, message_id, status, cost, logged_at
		from sms_logs where client_id = $1 order by logged_at desc limit $2`, clientId, limit)
	if err != nil {
		return nil, err
	}
	return scanSmsLogs(rows)
}

func (r *Messages) RecentAirtime(ctx context.Context, clientId int64, limit int) ([]model.AirtimeLog, error) {
	rows, err := r.pool.Query(ctx, `select id, client_id, phone_number, amount, request_id, status, logged_at
		from airtime_logs where client_id = $1 order by logged_at desc limit $2`, clientId, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	logs := []model.AirtimeLog{}
	for rows.Next() {
		entry := model.AirtimeLog{}
		if err := rows.Scan(&entry.Id, &entry.ClientId, &entry.PhoneNumber, &entry.Amount,
			&entry.RequestId, &entry.Status, &entry.LoggedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

type SmsLogWithClient struct {
	model.SmsLog
	ClientName string `json:"client_name"`
}

type AirtimeLogWithClient struct {
	model.AirtimeLog
	ClientName string `json:"client_name"`
}

func (r *Messages) ListAllSms(ctx context.Context) ([]SmsLogWithClient, error) {
	rows, err := r.pool.Query(ctx, `select s.id, s.client_id, s.recipient, s.message, s.message_id, s.status, s.cost, s.logged_at, c.name
		from sms_logs s join clients c on s.client_id = c.id order by s.logged_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	logs := []SmsLogWithClient{}
	for rows.Next() {
		entry := SmsLogWithClient{}
		if err := rows.Scan(&entry.Id, &entry.ClientId, &entry.Recipient, &entry.Message,
			&entry.MessageId, &entry.Status, &entry.Cost, &entry.LoggedAt, &entry.ClientName); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (r *Messages) ListAllAirtime(ctx context.Context) ([]AirtimeLogWithClient, error) {
	rows, err := r.pool.Query(ctx, `select a.id, a.client_id, a.phone_number, a.amount, a.request_id, a.status, a.logged_at, c.name
		from airtime_logs a join clients c on a.client_id = c.id order by a.logged_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	logs := []AirtimeLogWithClient{}
	for rows.Next() {
		entry := AirtimeLogWithClient{}
		if err := rows.Scan(&entry.Id, &entry.ClientId, &entry.PhoneNumber, &entry.Amount,
			&entry.RequestId, &entry.Status, &entry.LoggedAt, &entry.ClientName); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
