// Package billing holds the pure arithmetic and policy of USSD session
// billing. The transactional side lives in store.Sessions.
package billing

// Outcome classifies one delivery of a session-ended event.
type Outcome string

const (
	// Billed: the session moved Pending -> Completed and the wallet was
	// debited in the same transaction.
	Billed Outcome = "Billed"
	// AlreadyBilled: the row was already Completed; duplicate delivery,
	// nothing mutated.
	AlreadyBilled Outcome = "AlreadyBilled"
	// SessionNotFound: no log row matches the session id. Logged only; the
	// provider does not guarantee a prior Pending row exists.
	SessionNotFound Outcome = "SessionNotFound"
	// Ignored: the event status is not terminal, acknowledged without any
	// billing action.
	Ignored Outcome = "Ignored"
)

// Config is the named billing policy, loaded from the billing.* keys of
// config.yml.
type Config struct {
	// IntervalSeconds is the billing interval the provider charges in.
	IntervalSeconds int64
	// DefaultTokensPerInterval applies when ussd_pricing has no row for the
	// session's network code.
	DefaultTokensPerInterval int64
	// AllowOverdraft lets the finalization debit take a wallet negative.
	// USSD cost is only known after the session ends, so there is nothing
	// to pre-authorize against; SMS and airtime sends never overdraft.
	AllowOverdraft bool
	// SmsTokenCost is the token price of one SMS recipient.
	SmsTokenCost int64
	// NgnToTokenRate converts a paid NGN amount into purchased tokens.
	NgnToTokenRate int64
}

// DefaultConfig mirrors the historical constants of the gateway.
func DefaultConfig() Config {
	return Config{
		IntervalSeconds:          20,
		DefaultTokensPerInterval: 20,
		AllowOverdraft:           true,
		SmsTokenCost:             10,
		NgnToTokenRate:           1,
	}
}

// IsTerminalStatus reports whether an event status ends a session. Anything
// else is acknowledged but never billed.
func IsTerminalStatus(status string) bool {
	return status == "Done" || status == "Success"
}

// Intervals converts a session duration into whole billing intervals,
// rounding up. A zero or negative duration still counts as one interval,
// the minimum billable unit.
func Intervals(durationSeconds int64, intervalSeconds int64) int64 {
	if intervalSeconds <= 0 {
		intervalSeconds = 20
	}
	intervals := (durationSeconds + intervalSeconds - 1) / intervalSeconds
	if intervals < 1 {
		return 1
	}
	return intervals
}

// TokenCost is the client-facing price of a session.
func TokenCost(durationSeconds int64, intervalSeconds int64, tokensPerInterval int64) int64 {
	return Intervals(durationSeconds, intervalSeconds) * tokensPerInterval
}
