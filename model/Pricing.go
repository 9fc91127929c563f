package model

// PricingEntry maps a network code to the token cost of one billing
// interval. Sessions on networks without an entry bill at the configured
// default rate.
type PricingEntry struct {
	NetworkCode       string `json:"network_code"`
	TokensPerInterval int64  `json:"tokens_per_interval"`
}
