package config

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"

	"github.com/alagaddonjuan/q4icoms/billing"
)

var Redis *redis.Client
var Billing billing.Config
var ServiceName string = "q4icoms-gateway"

func InitializeConfig() {
	Redis = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", viper.GetString("redis.host"), viper.GetString("redis.port")),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.database"),
	})
	Billing = loadBillingConfig()
}

// loadBillingConfig overlays the billing.* config keys on the historical
// defaults, so a missing key never silently zeroes a price.
func loadBillingConfig() billing.Config {
	cfg := billing.DefaultConfig()
	if v := viper.GetInt64("billing.interval_seconds"); v > 0 {
		cfg.IntervalSeconds = v
	}
	if v := viper.GetInt64("billing.default_tokens_per_interval"); v > 0 {
		cfg.DefaultTokensPerInterval = v
	}
	if viper.IsSet("billing.allow_ussd_overdraft") {
		cfg.AllowOverdraft = viper.GetBool("billing.allow_ussd_overdraft")
	}
	if v := viper.GetInt64("billing.sms_token_cost"); v > 0 {
		cfg.SmsTokenCost = v
	}
	if v := viper.GetInt64("billing.ngn_to_token_rate"); v > 0 {
		cfg.NgnToTokenRate = v
	}
	return cfg
}
