package model

import "time"

const (
	TransactionPending = "Pending"
	TransactionSuccess = "Success"
)

// Transaction is one token purchase through the payment provider. Reference
// is the provider-facing idempotency key; tokens are credited when the
// charge.success event confirms the reference, once.
type Transaction struct {
	Id              int64     `json:"id"`
	ClientId        int64     `json:"client_id"`
	Reference       string    `json:"reference"`
	Amount          float64   `json:"amount"`
	TokensPurchased int64     `json:"tokens_purchased"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
