package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/alagaddonjuan/q4icoms/billing"
	"github.com/alagaddonjuan/q4icoms/config"
	"github.com/alagaddonjuan/q4icoms/model"
	"github.com/alagaddonjuan/q4icoms/utils"
)

var ctx = context.Background()

func setupIntegration(t *testing.T) (*Stores, func()) {
	t.Helper()
	utils.IsTestMode = true
	utils.InitializeViper("config", "yml")

	viper.Set("postgres_db.user", viper.GetString("postgres_db_test.user"))
	viper.Set("postgres_db.password", viper.GetString("postgres_db_test.password"))
	viper.Set("postgres_db.host", viper.GetString("postgres_db_test.host"))
	viper.Set("postgres_db.port", viper.GetInt("postgres_db_test.port"))
	viper.Set("postgres_db.database", viper.GetString("postgres_db_test.database"))

	viper.Set("redis.host", viper.GetString("redis_test.host"))
	viper.Set("redis.port", viper.GetString("redis_test.port"))
	viper.Set("redis.password", viper.GetString("redis_test.password"))
	viper.Set("redis.database", viper.GetInt("redis_test.database"))

	config.InitializeConfig()
	if err := config.Redis.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	config.ConnectDb()
	if err := config.DB.Ping(ctx); err != nil {
		t.Skipf("postgres not available: %v", err)
	}

	ensureSchema(t)
	config.Redis.FlushDB(ctx)

	stores := New(config.DB, config.Redis, billing.DefaultConfig())
	return stores, func() {
		config.Redis.FlushDB(ctx)
		config.DB.Close()
	}
}

func ensureSchema(t *testing.T) {
	t.Helper()
	statements := []string{
		`create table if not exists clients (
			id bigserial primary key,
			name varchar(255) not null,
			email varchar(255) not null unique,
			api_key varchar(64) not null unique,
			sender_id varchar(50),
			ussd_code varchar(50) unique,
			token_balance bigint not null default 0,
			is_admin boolean not null default false,
			created_at timestamp not null default current_timestamp,
			updated_at timestamp
		);`,
		`create table if not exists ussd_logs (
			id bigserial primary key,
			client_id bigint not null references clients (id),
			session_id varchar(255) not null unique,
			phone_number varchar(20) not null,
			network_code varchar(20) not null default '',
			final_user_string varchar(255) not null default '',
			status varchar(20) not null default 'Pending',
			duration_seconds bigint,
			session_cost numeric(10,4),
			client_price bigint,
			logged_at timestamp not null default current_timestamp
		);`,
		`create table if not exists ussd_pricing (
			network_code varchar(20) primary key,
			tokens_per_interval bigint not null
		);`,
		`create table if not exists transactions (
			id bigserial primary key,
			client_id bigint not null references clients (id),
			reference varchar(64) not null unique,
			amount numeric(19,2) not null,
			tokens_purchased bigint not null,
			status varchar(20) not null default 'Pending',
			created_at timestamp not null default current_timestamp
		);`,
		`create table if not exists sms_logs (
			id bigserial primary key,
			client_id bigint not null references clients (id),
			recipient varchar(20) not null,
			message varchar(1000) not null,
			message_id varchar(100),
			status varchar(20) not null,
			cost bigint not null default 0,
			logged_at timestamp not null default current_timestamp
		);`,
		`create table if not exists airtime_logs (
			id bigserial primary key,
			client_id bigint not null references clients (id),
			phone_number varchar(20) not null,
			amount varchar(50) not null,
			request_id varchar(100),
			status varchar(20) not null,
			logged_at timestamp not null default current_timestamp
		);`,
	}
	for _, statement := range statements {
		if _, err := config.DB.Exec(ctx, statement); err != nil {
			t.Fatalf("schema setup failed: %v", err)
		}
	}
}

func createTestClient(t *testing.T, stores *Stores, balance int64) *model.Client {
	t.Helper()
	email := fmt.Sprintf("client-%d@test.local", time.Now().UnixNano())
	client, err := stores.Clients.Create(ctx, "Test Client", email)
	if err != nil {
		t.Fatalf("create client failed: %v", err)
	}
	if balance != 0 {
		if err := stores.Wallets.AdjustQ(ctx, config.DB, client.Id, balance, true); err != nil {
			t.Fatalf("seed balance failed: %v", err)
		}
	}
	return client
}

func newSessionId() string {
	return fmt.Sprintf("sess-%d", time.Now().UnixNano())
}

func TestFinalizeAndBillDebitsOnce(t *testing.T) {
	stores, cleanup := setupIntegration(t)
	defer cleanup()

	client := createTestClient(t, stores, 100)
	sessionId := newSessionId()
	if err := stores.Sessions.Begin(ctx, client.Id, sessionId, "2348012345678", "99999"); err != nil {
		t.Fatalf("begin session failed: %v", err)
	}

	// 45s at the default 20 tokens per 20s interval = 3 intervals, 60 tokens.
	outcome, tokens, err := stores.Sessions.FinalizeAndBill(ctx, sessionId, 45, 2.5)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if outcome != billing.Billed {
		t.Fatalf("outcome = %s, want Billed", outcome)
	}
	if tokens != 60 {
		t.Fatalf("tokens = %d, want 60", tokens)
	}

	balance, err := stores.Wallets.Balance(ctx, client.Id)
	if err != nil {
		t.Fatalf("balance read failed: %v", err)
	}
	if balance != 40 {
		t.Fatalf("balance = %d, want 40", balance)
	}

	// Duplicate delivery of the same event must not debit again.
	outcome, _, err = stores.Sessions.FinalizeAndBill(ctx, sessionId, 45, 2.5)
	if err != nil {
		t.Fatalf("duplicate finalize failed: %v", err)
	}
	if outcome != billing.AlreadyBilled {
		t.Fatalf("duplicate outcome = %s, want AlreadyBilled", outcome)
	}
	balance, _ = stores.Wallets.Balance(ctx, client.Id)
	if balance != 40 {
		t.Fatalf("balance after duplicate = %d, want 40", balance)
	}

	log, err := stores.Sessions.Find(ctx, sessionId)
	if err != nil {
		t.Fatalf("find session failed: %v", err)
	}
	if log.Status != model.SessionCompleted {
		t.Fatalf("status = %s, want Completed", log.Status)
	}
	if log.ClientPrice == nil || *log.ClientPrice != 60 {
		t.Fatalf("client_price = %v, want 60", log.ClientPrice)
	}
}

func TestFinalizeAndBillOverdraft(t *testing.T) {
	stores, cleanup := setupIntegration(t)
	defer cleanup()

	client := createTestClient(t, stores, 5)
	sessionId := newSessionId()
	if err := stores.Sessions.Begin(ctx, client.Id, sessionId, "2348012345678", "99999"); err != nil {
		t.Fatalf("begin session failed: %v", err)
	}

	outcome, _, err := stores.Sessions.FinalizeAndBill(ctx, sessionId, 10, 1)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if outcome != billing.Billed {
		t.Fatalf("outcome = %s, want Billed", outcome)
	}

	balance, _ := stores.Wallets.Balance(ctx, client.Id)
	if balance != -15 {
		t.Fatalf("balance = %d, want -15 after overdraft debit", balance)
	}
}

func TestFinalizeAndBillUnknownSession(t *testing.T) {
	stores, cleanup := setupIntegration(t)
	defer cleanup()

	outcome, _, err := stores.Sessions.FinalizeAndBill(ctx, newSessionId(), 30, 1)
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if outcome != billing.SessionNotFound {
		t.Fatalf("outcome = %s, want SessionNotFound", outcome)
	}
}

func TestPricingUsesNetworkRateAndFallback(t *testing.T) {
	stores, cleanup := setupIntegration(t)
	defer cleanup()

	networkCode := fmt.Sprintf("%d", time.Now().UnixNano()%100000)
	if err := stores.Pricing.Upsert(ctx, model.PricingEntry{NetworkCode: networkCode, TokensPerInterval: 7}); err != nil {
		t.Fatalf("upsert pricing failed: %v", err)
	}

	if rate := stores.Pricing.TokensPerInterval(ctx, config.DB, networkCode); rate != 7 {
		t.Fatalf("rate = %d, want 7", rate)
	}
	if rate := stores.Pricing.TokensPerInterval(ctx, config.DB, "no-such-network"); rate != 20 {
		t.Fatalf("fallback rate = %d, want 20", rate)
	}
}

func TestWalletRejectsInsufficientBalance(t *testing.T) {
	stores, cleanup := setupIntegration(t)
	defer cleanup()

	client := createTestClient(t, stores, 5)
	if err := stores.Wallets.Adjust(ctx, client.Id, -10); err != ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	balance, _ := stores.Wallets.Balance(ctx, client.Id)
	if balance != 5 {
		t.Fatalf("balance = %d, want 5 untouched", balance)
	}

	if err := stores.Wallets.Adjust(ctx, client.Id, -5); err != nil {
		t.Fatalf("exact spend failed: %v", err)
	}
	if err := stores.Wallets.Adjust(ctx, 99999999, -1); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing client, got %v", err)
	}
}

func TestConfirmAndCreditIsIdempotent(t *testing.T) {
	stores, cleanup := setupIntegration(t)
	defer cleanup()

	client := createTestClient(t, stores, 0)
	reference := fmt.Sprintf("ref-%d", time.Now().UnixNano())
	if err := stores.Transactions.CreatePending(ctx, client.Id, reference, 500, 500); err != nil {
		t.Fatalf("create pending failed: %v", err)
	}

	credited, err := stores.Transactions.ConfirmAndCredit(ctx, reference)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if !credited {
		t.Fatalf("first confirm should credit")
	}
	balance, _ := stores.Wallets.Balance(ctx, client.Id)
	if balance != 500 {
		t.Fatalf("balance = %d, want 500", balance)
	}

	credited, err = stores.Transactions.ConfirmAndCredit(ctx, reference)
	if err != nil {
		t.Fatalf("duplicate confirm failed: %v", err)
	}
	if credited {
		t.Fatalf("duplicate confirm must not credit again")
	}
	balance, _ = stores.Wallets.Balance(ctx, client.Id)
	if balance != 500 {
		t.Fatalf("balance after duplicate = %d, want 500", balance)
	}

	if credited, _ := stores.Transactions.ConfirmAndCredit(ctx, "ref-missing"); credited {
		t.Fatalf("unknown reference must not credit")
	}
}

func TestSessionBeginIsIdempotent(t *testing.T) {
	stores, cleanup := setupIntegration(t)
	defer cleanup()

	client := createTestClient(t, stores, 0)
	sessionId := newSessionId()
	if err := stores.Sessions.Begin(ctx, client.Id, sessionId, "2348012345678", "62120"); err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	if err := stores.Sessions.Begin(ctx, client.Id, sessionId, "2348012345678", "62120"); err != nil {
		t.Fatalf("second begin should be a no-op, got: %v", err)
	}
	if err := stores.Sessions.RecordInput(ctx, sessionId, "1*2"); err != nil {
		t.Fatalf("record input failed: %v", err)
	}

	log, err := stores.Sessions.Find(ctx, sessionId)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if log.FinalUserString != "1*2" {
		t.Fatalf("final_user_string = %q, want 1*2", log.FinalUserString)
	}
	if log.Status != model.SessionPending {
		t.Fatalf("status = %s, want Pending", log.Status)
	}
}

func TestClientUniqueConstraints(t *testing.T) {
	stores, cleanup := setupIntegration(t)
	defer cleanup()

	first := createTestClient(t, stores, 0)
	second := createTestClient(t, stores, 0)

	if _, err := stores.Clients.Create(ctx, "Duplicate", first.Email); err != ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	code := fmt.Sprintf("*384*%d#", time.Now().UnixNano()%100000)
	if err := stores.Clients.Update(ctx, first.Id, nil, &code, nil); err != nil {
		t.Fatalf("assign service code failed: %v", err)
	}
	if err := stores.Clients.Update(ctx, second.Id, nil, &code, nil); err != ErrDuplicateServiceCode {
		t.Fatalf("expected ErrDuplicateServiceCode, got %v", err)
	}

	found, err := stores.Clients.FindByServiceCode(ctx, code)
	if err != nil {
		t.Fatalf("find by service code failed: %v", err)
	}
	if found.Id != first.Id {
		t.Fatalf("found client %d, want %d", found.Id, first.Id)
	}
}

func TestFindByApiKeyCaches(t *testing.T) {
	stores, cleanup := setupIntegration(t)
	defer cleanup()

	client := createTestClient(t, stores, 0)

	found, err := stores.Clients.FindByApiKey(ctx, client.ApiKey)
	if err != nil {
		t.Fatalf("find by api key failed: %v", err)
	}
	if found.Id != client.Id {
		t.Fatalf("found client %d, want %d", found.Id, client.Id)
	}

	// Second lookup should be served from the cache.
	cached, err := stores.Clients.FindByApiKey(ctx, client.ApiKey)
	if err != nil {
		t.Fatalf("cached lookup failed: %v", err)
	}
	if cached.Id != client.Id {
		t.Fatalf("cached client %d, want %d", cached.Id, client.Id)
	}

	if _, err := stores.Clients.FindByApiKey(ctx, "no-such-key"); err == nil {
		t.Fatalf("unknown api key should fail")
	}
}
