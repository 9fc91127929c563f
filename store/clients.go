package store

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alagaddonjuan/q4icoms/model"
	"github.com/alagaddonjuan/q4icoms/utils"
)

const apiKeyCachePrefix = "client-key:"
const apiKeyCacheTTL = 5 * time.Minute

type Clients struct {
	pool  *pgxpool.Pool
	cache *redis.Client
}

const clientColumns = `id, name, email, api_key, sender_id, ussd_code, token_balance, is_admin, created_at, updated_at`

func scanClient(row pgx.Row) (*model.Client, error) {
	client := model.Client{}
	err := row.Scan(&client.Id, &client.Name, &client.Email, &client.ApiKey, &client.SenderId,
		&client.ServiceCode, &client.TokenBalance, &client.IsAdmin, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// FindByServiceCode resolves the tenant owning a dialed USSD code.
func (r *Clients) FindByServiceCode(ctx context.Context, serviceCode string) (*model.Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `select `+clientColumns+` from clients where ussd_code = $1`, serviceCode))
}

func (r *Clients) FindById(ctx context.Context, id int64) (*model.Client, error) {
	return scanClient(r.pool.QueryRow(ctx, `select `+clientColumns+` from clients where id = $1`, id))
}

// FindByApiKey authenticates API requests. Hits go through a short Redis
// cache; balances read from the cache can be stale and are display-only.
func (r *Clients) FindByApiKey(ctx context.Context, apiKey string) (*model.Client, error) {
	if cached, err := r.cache.Get(ctx, apiKeyCachePrefix+apiKey).Result(); err == nil {
		client := model.Client{}
		if err := json.Unmarshal([]byte(cached), &client); err == nil && client.Id != 0 {
			client.ApiKey = apiKey
			return &client, nil
		}
	}
	client, err := scanClient(r.pool.QueryRow(ctx, `select `+clientColumns+` from clients where api_key = $1`, apiKey))
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(client); err == nil {
		r.cache.Set(ctx, apiKeyCachePrefix+apiKey, data, apiKeyCacheTTL)
	}
	return client, nil
}

// Create registers a tenant with a generated API key. The first client ever
// created becomes the admin.
func (r *Clients) Create(ctx context.Context, name string, email string) (*model.Client, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `select count(id) from clients`).Scan(&count); err != nil {
		return nil, err
	}
	apiKey := utils.RandString(32)
	client, err := scanClient(r.pool.QueryRow(ctx,
		`insert into clients (name, email, api_key, is_admin) values ($1, $2, $3, $4) returning `+clientColumns,
		name, email, apiKey, count == 0))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return client, nil
}

// Update applies the admin-editable fields. A taken service code surfaces as
// ErrDuplicateServiceCode so the handler can answer 409.
func (r *Clients) Update(ctx context.Context, id int64, name *string, serviceCode *string, senderId *string) error {
	result, err := r.pool.Exec(ctx, `update clients set
			name = coalesce($2, name),
			ussd_code = coalesce($3, ussd_code),
			sender_id = coalesce($4, sender_id),
			updated_at = current_timestamp
		where id = $1`, id, name, serviceCode, senderId)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateServiceCode
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.invalidateApiKey(ctx, id)
	return nil
}

func (r *Clients) invalidateApiKey(ctx context.Context, id int64) {
	var apiKey string
	if err := r.pool.QueryRow(ctx, `select api_key from clients where id = $1`, id).Scan(&apiKey); err == nil {
		r.cache.Del(ctx, apiKeyCachePrefix+apiKey)
	}
}

func (r *Clients) List(ctx context.Context) ([]model.Client, error) {
	rows, err := r.pool.Query(ctx, `select `+clientColumns+` from clients order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	clients := []model.Client{}
	for rows.Next() {
		client := model.Client{}
		if err := rows.Scan(&client.Id, &client.Name, &client.Email, &client.ApiKey, &client.SenderId,
			&client.ServiceCode, &client.TokenBalance, &client.IsAdmin, &client.CreatedAt, &client.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}
