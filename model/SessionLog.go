package model

import "time"

const (
	SessionPending   = "Pending"
	SessionCompleted = "Completed"
)

// SessionLog is one row per USSD session. A row is created on the first
// menu turn, its FinalUserString is rewritten on every later turn, and the
// billing fields are written exactly once when the terminal event arrives.
type SessionLog struct {
	Id              int64     `json:"id"`
	ClientId        int64     `json:"client_id"`
	SessionId       string    `json:"session_id"`
	PhoneNumber     string    `json:"phone_number"`
	NetworkCode     string    `json:"network_code"`
	FinalUserString string    `json:"final_user_string"`
	Status          string    `json:"status"`
	DurationSeconds *int64    `json:"duration_seconds"`
	SessionCost     *float64  `json:"session_cost"`
	ClientPrice     *int64    `json:"client_price"`
	LoggedAt        time.Time `json:"logged_at"`
}
