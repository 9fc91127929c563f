package model

import "time"

// SmsLog is one recipient of one bulk SMS send.
type SmsLog struct {
	Id        int64     `json:"id"`
	ClientId  int64     `json:"client_id"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	MessageId string    `json:"message_id"`
	Status    string    `json:"status"`
	Cost      int64     `json:"cost"`
	LoggedAt  time.Time `json:"logged_at"`
}

// AirtimeLog is one airtime disbursement attempt.
type AirtimeLog struct {
	Id          int64     `json:"id"`
	ClientId    int64     `json:"client_id"`
	PhoneNumber string    `json:"phone_number"`
	Amount      string    `json:"amount"`
	RequestId   string    `json:"request_id"`
	Status      string    `json:"status"`
	LoggedAt    time.Time `json:"logged_at"`
}
