package store

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alagaddonjuan/q4icoms/model"
	"github.com/alagaddonjuan/q4icoms/utils"
)

const pricingCachePrefix = "ussd-price:"
const pricingCacheTTL = 10 * time.Minute

// Pricing reads the per-network token rate. Networks without a row bill at
// the configured default; the reconciler never writes here.
type Pricing struct {
	pool        *pgxpool.Pool
	cache       *redis.Client
	defaultRate int64
}

// TokensPerInterval resolves the rate for a network code on the given
// querier (pool or open transaction). Lookups are cached; a cache miss never
// fails the caller, it just falls through to the table and then the default.
func (r *Pricing) TokensPerInterval(ctx context.Context, q Querier, networkCode string) int64 {
	if cached, err := r.cache.Get(ctx, pricingCachePrefix+networkCode).Result(); err == nil {
		if rate, err := strconv.ParseInt(cached, 10, 64); err == nil && rate > 0 {
			return rate
		}
	}
	var rate int64
	err := q.QueryRow(ctx, `select tokens_per_interval from ussd_pricing where network_code = $1`, networkCode).Scan(&rate)
	if err != nil || rate <= 0 {
		return r.defaultRate
	}
	if err := r.cache.Set(ctx, pricingCachePrefix+networkCode, strconv.FormatInt(rate, 10), pricingCacheTTL).Err(); err != nil {
		utils.LogMessage("warn", "pricing cache set failed: "+err.Error(), "q4icoms-gateway")
	}
	return rate
}

// Upsert sets a network rate and drops the cached value.
func (r *Pricing) Upsert(ctx context.Context, entry model.PricingEntry) error {
	_, err := r.pool.Exec(ctx, `insert into ussd_pricing (network_code, tokens_per_interval) values ($1, $2)
		on conflict (network_code) do update set tokens_per_interval = excluded.tokens_per_interval`,
		entry.NetworkCode, entry.TokensPerInterval)
	if err != nil {
		return err
	}
	r.cache.Del(ctx, pricingCachePrefix+entry.NetworkCode)
	return nil
}
