package model

import "time"

// Client is one tenant of the gateway. ServiceCode routes inbound USSD
// sessions to the client's menu program; TokenBalance is the prepaid wallet.
type Client struct {
	Id           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	ApiKey       string     `json:"-"`
	SenderId     *string    `json:"sender_id"`
	ServiceCode  *string    `json:"ussd_code"`
	TokenBalance int64      `json:"token_balance"`
	IsAdmin      bool       `json:"is_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}
